package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/radieske/betboard/internal/core/normalizer"
	"github.com/radieske/betboard/internal/provider"
	"github.com/radieske/betboard/pkg/contracts/odds"
)

// Store é o subconjunto do snapshot store que o export consome.
type Store interface {
	ListMovements(ctx context.Context, leagueKey string) ([]odds.MovementEvent, error)
	ListWatchlist(ctx context.Context) ([]odds.WatchlistItem, error)
}

// Service monta o documento de export de uma liga: eventos, quadros de
// melhores linhas, movimentos recentes, manchetes e watchlist.
type Service struct {
	Provider provider.OddsProvider
	News     provider.NewsProvider
	Store    Store

	Markets []string
	Regions string
	Books   []string

	HeadlineLimit int
}

// BuildBundle busca e reduz os dados correntes de uma liga.
func (s *Service) BuildBundle(ctx context.Context, leagueKey string) (odds.ExportBundle, error) {
	eventOdds, err := s.Provider.GetOdds(ctx, leagueKey, s.Markets, s.Regions, s.Books)
	if err != nil {
		return odds.ExportBundle{}, fmt.Errorf("export %s: %w", leagueKey, err)
	}

	bundle := odds.ExportBundle{LeagueKey: leagueKey}
	for _, item := range eventOdds {
		bundle.Events = append(bundle.Events, item.Event)
		bundle.Odds = append(bundle.Odds, normalizer.BuildOddsBoard(item))
	}

	limit := s.HeadlineLimit
	if limit == 0 {
		limit = 5
	}
	headlines, err := s.News.FetchHeadlines(ctx, leagueKey, limit)
	if err != nil {
		return odds.ExportBundle{}, fmt.Errorf("export %s headlines: %w", leagueKey, err)
	}
	bundle.Headlines = headlines

	movements, err := s.Store.ListMovements(ctx, leagueKey)
	if err != nil {
		return odds.ExportBundle{}, fmt.Errorf("export %s movements: %w", leagueKey, err)
	}
	bundle.Movements = movements

	watchlist, err := s.Store.ListWatchlist(ctx)
	if err != nil {
		return odds.ExportBundle{}, fmt.Errorf("export %s watchlist: %w", leagueKey, err)
	}
	for _, item := range watchlist {
		if item.LeagueKey == leagueKey {
			bundle.Watchlist = append(bundle.Watchlist, item)
		}
	}

	return bundle, nil
}

// MarshalBundle serializa o bundle em JSON indentado, com os nomes de
// campo do modelo e timestamps ISO-8601.
func MarshalBundle(bundle odds.ExportBundle) ([]byte, error) {
	return json.MarshalIndent(bundle, "", "  ")
}

// WriteBundle grava o bundle em <dir>/<sufixo da liga>.json.
func WriteBundle(bundle odds.ExportBundle, dir string) (string, error) {
	data, err := MarshalBundle(bundle)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, LeagueSuffix(bundle.LeagueKey)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write bundle: %w", err)
	}
	return path, nil
}

// LeagueSuffix reduz a chave de liga ao sufixo de arquivo (nfl/cfb/ufc).
func LeagueSuffix(leagueKey string) string {
	switch {
	case strings.Contains(leagueKey, "nfl"):
		return "nfl"
	case strings.Contains(leagueKey, "ncaaf"):
		return "cfb"
	case strings.Contains(leagueKey, "ufc"), strings.Contains(leagueKey, "mma"):
		return "ufc"
	}
	return strings.ReplaceAll(leagueKey, "/", "_")
}
