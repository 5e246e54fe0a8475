package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

// PostgresRepo implementa o snapshot store: snapshots de odds, movimentos
// notáveis e watchlist.
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres.
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// EnsureSchema cria as tabelas quando não existem. Idempotente.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS odds_snapshots (
			provider    TEXT        NOT NULL,
			league_key  TEXT        NOT NULL,
			market      TEXT        NOT NULL,
			fetched_at  TIMESTAMPTZ NOT NULL,
			payload_json JSONB      NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_odds_snapshots_key
			ON odds_snapshots (provider, league_key, market, fetched_at DESC);

		CREATE TABLE IF NOT EXISTS movement_events (
			league_key  TEXT        NOT NULL,
			event_id    TEXT        NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			details_json JSONB      NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_movement_events_league
			ON movement_events (league_key, created_at DESC);

		CREATE TABLE IF NOT EXISTS watchlist (
			event_id   TEXT        PRIMARY KEY,
			league_key TEXT        NOT NULL,
			added_at   TIMESTAMPTZ NOT NULL,
			notes      TEXT
		);
	`
	if _, err := r.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// AddSnapshot insere um snapshot. Append-only: snapshots nunca são
// alterados, apenas superados por um mais novo com a mesma chave.
func (r *PostgresRepo) AddSnapshot(ctx context.Context, s odds.OddsSnapshot) error {
	const q = `
		INSERT INTO odds_snapshots (provider, league_key, market, fetched_at, payload_json)
		VALUES ($1,$2,$3,$4,$5)
	`
	_, err := r.DB.ExecContext(ctx, q, s.Provider, s.LeagueKey, s.Market, s.FetchedAt, s.Payload)
	return err
}

// LatestPayload retorna o payload do snapshot mais recente para a chave
// (provider, league, market). O segundo retorno indica existência.
func (r *PostgresRepo) LatestPayload(ctx context.Context, provider, leagueKey, market string) ([]byte, bool, error) {
	const q = `
		SELECT payload_json
		FROM odds_snapshots
		WHERE provider = $1 AND league_key = $2 AND market = $3
		ORDER BY fetched_at DESC
		LIMIT 1
	`
	var payload []byte
	err := r.DB.QueryRowContext(ctx, q, provider, leagueKey, market).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// RecordMovements insere movimentos notáveis em uma transação.
func (r *PostgresRepo) RecordMovements(ctx context.Context, moves []odds.MovementEvent) error {
	if len(moves) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO movement_events (league_key, event_id, created_at, details_json)
		VALUES ($1,$2,$3,$4)
	`
	for _, move := range moves {
		details, err := json.Marshal(move.Details)
		if err != nil {
			return fmt.Errorf("marshal movement details: %w", err)
		}
		if _, err := tx.ExecContext(ctx, q, move.LeagueKey, move.EventID, move.CreatedAt, details); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListMovements retorna os movimentos de uma liga, mais recentes primeiro,
// limitado aos últimos 100.
func (r *PostgresRepo) ListMovements(ctx context.Context, leagueKey string) ([]odds.MovementEvent, error) {
	const q = `
		SELECT league_key, event_id, created_at, details_json
		FROM movement_events
		WHERE league_key = $1
		ORDER BY created_at DESC
		LIMIT 100
	`
	rows, err := r.DB.QueryContext(ctx, q, leagueKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []odds.MovementEvent
	for rows.Next() {
		var move odds.MovementEvent
		var details []byte
		if err := rows.Scan(&move.LeagueKey, &move.EventID, &move.CreatedAt, &details); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(details, &move.Details); err != nil {
			return nil, fmt.Errorf("unmarshal movement details: %w", err)
		}
		out = append(out, move)
	}
	return out, rows.Err()
}

// UpsertWatchlist insere ou atualiza um item da watchlist por event_id.
func (r *PostgresRepo) UpsertWatchlist(ctx context.Context, item odds.WatchlistItem) error {
	const q = `
		INSERT INTO watchlist (event_id, league_key, added_at, notes)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (event_id) DO UPDATE SET
			league_key = EXCLUDED.league_key,
			added_at   = EXCLUDED.added_at,
			notes      = EXCLUDED.notes
	`
	notes := sql.NullString{String: item.Notes, Valid: item.Notes != ""}
	_, err := r.DB.ExecContext(ctx, q, item.EventID, item.LeagueKey, item.AddedAt, notes)
	return err
}

// RemoveWatchlist remove um item da watchlist.
func (r *PostgresRepo) RemoveWatchlist(ctx context.Context, eventID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM watchlist WHERE event_id = $1`, eventID)
	return err
}

// ListWatchlist retorna todos os itens da watchlist.
func (r *PostgresRepo) ListWatchlist(ctx context.Context) ([]odds.WatchlistItem, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT event_id, league_key, added_at, notes FROM watchlist`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []odds.WatchlistItem
	for rows.Next() {
		var item odds.WatchlistItem
		var notes sql.NullString
		if err := rows.Scan(&item.EventID, &item.LeagueKey, &item.AddedAt, &notes); err != nil {
			return nil, err
		}
		item.Notes = notes.String
		out = append(out, item)
	}
	return out, rows.Err()
}
