package provider

import (
	"context"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

// OddsProvider é a capacidade consumida pelo refresh, dashboard e export:
// dado uma liga e mercados, devolve os EventOdds dos eventos listados.
// Como o dado chega (HTTP, simulação) é detalhe da implementação.
type OddsProvider interface {
	Name() string
	GetOdds(ctx context.Context, leagueKey string, markets []string, regions string, booksFilter []string) ([]odds.EventOdds, error)
}

// NewsProvider entrega manchetes por liga.
type NewsProvider interface {
	FetchHeadlines(ctx context.Context, leagueKey string, limit int) ([]odds.Headline, error)
}
