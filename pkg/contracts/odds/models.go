package odds

import "time"

// Chaves de liga no formato do The Odds API
const (
	LeagueNFL = "americanfootball_nfl"
	LeagueCFB = "americanfootball_ncaaf"
)

// Tipos de mercado suportados
const (
	MarketH2H     = "h2h"     // moneyline
	MarketSpreads = "spreads" // handicap de pontos
	MarketTotals  = "totals"  // over/under
)

// Event representa um evento esportivo (jogo ou luta) de uma liga.
// Imutável depois do fetch: identidade é (event_id, league_key).
type Event struct {
	EventID    string    `json:"event_id"`
	LeagueKey  string    `json:"league_key"`
	SportTitle string    `json:"sport_title"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	StartTime  time.Time `json:"start_time"`
}

// OddsPrice é o preço (odd americana, inteiro com sinal) de um outcome.
type OddsPrice struct {
	Outcome string `json:"outcome"`
	Price   int    `json:"price"`
}

// MarketOdds é a cotação de UMA casa para UM mercado de um evento.
// Point é a linha de spread/total; nil para h2h. Todos os preços de um
// MarketOdds compartilham o mesmo point.
type MarketOdds struct {
	Market     string      `json:"market"`
	Book       string      `json:"book"`
	LastUpdate time.Time   `json:"last_update"`
	Prices     []OddsPrice `json:"prices"`
	Point      *float64    `json:"point"`
}

// EventOdds é a visão de um fetch: um evento com todas as cotações
// coletadas em todas as casas.
type EventOdds struct {
	Event   Event        `json:"event"`
	Markets []MarketOdds `json:"markets"`
}

// MarketsByType filtra as cotações de um tipo de mercado.
func (e EventOdds) MarketsByType(market string) []MarketOdds {
	var out []MarketOdds
	for _, m := range e.Markets {
		if m.Market == market {
			out = append(out, m)
		}
	}
	return out
}

// BestLines é a melhor cotação encontrada para (market, outcome) entre
// todas as casas. Efêmero: produzido pelo normalizer, nunca persistido.
type BestLines struct {
	Market  string   `json:"market"`
	Outcome string   `json:"outcome"`
	Price   int      `json:"price"`
	Book    string   `json:"book"`
	Point   *float64 `json:"point"`
}

// OddsBoard é o quadro reduzido de um evento: no máximo uma BestLines
// por (market, outcome). LastUpdate zero indica ausência de mercados.
type OddsBoard struct {
	Event      Event       `json:"event"`
	BestLines  []BestLines `json:"best_lines"`
	LastUpdate time.Time   `json:"last_update,omitzero"`
}

// Headline é uma manchete de notícia associada a uma liga.
type Headline struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	Source      string    `json:"source"`
}

// OddsSnapshot é a unidade persistida de um fetch: payload serializado
// dos EventOdds de um mercado. Append-only, nunca alterado.
type OddsSnapshot struct {
	Provider  string    `json:"provider"`
	LeagueKey string    `json:"league_key"`
	Market    string    `json:"market"`
	FetchedAt time.Time `json:"fetched_at"`
	Payload   []byte    `json:"payload"`
}

// PricePoint é o par preço/linha de um lado do diff de movimento.
type PricePoint struct {
	Price int      `json:"price"`
	Point *float64 `json:"point"`
}

// MovementDetails descreve um movimento notável de linha: a chave
// (market, book, outcome), os dois lados e o delta de preço.
type MovementDetails struct {
	Market   string     `json:"market"`
	Book     string     `json:"book"`
	Outcome  string     `json:"outcome"`
	Previous PricePoint `json:"previous"`
	Current  PricePoint `json:"current"`
	Delta    int        `json:"delta"`
}

// MovementEvent é um fato persistido: movimento notável detectado entre
// dois snapshots do mesmo evento. Append-only.
type MovementEvent struct {
	LeagueKey string          `json:"league_key"`
	EventID   string          `json:"event_id"`
	CreatedAt time.Time       `json:"created_at"`
	Details   MovementDetails `json:"details"`
}

// WatchlistItem é um evento marcado pelo usuário.
type WatchlistItem struct {
	EventID   string    `json:"event_id"`
	LeagueKey string    `json:"league_key"`
	AddedAt   time.Time `json:"added_at"`
	Notes     string    `json:"notes,omitempty"`
}

// ExportBundle é o documento exportado por liga.
type ExportBundle struct {
	LeagueKey string          `json:"league_key"`
	Events    []Event         `json:"events"`
	Odds      []OddsBoard     `json:"odds"`
	Movements []MovementEvent `json:"movements"`
	Headlines []Headline      `json:"headlines"`
	Watchlist []WatchlistItem `json:"watchlist"`
}

// Float64Ptr é um helper para montar points literais.
func Float64Ptr(v float64) *float64 { return &v }
