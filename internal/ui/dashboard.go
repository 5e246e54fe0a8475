package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betboard/internal/provider"
	storagecache "github.com/radieske/betboard/internal/storage/cache"
	"github.com/radieske/betboard/pkg/contracts/odds"
)

// Store é o subconjunto do snapshot store que o dashboard consome.
type Store interface {
	ListMovements(ctx context.Context, leagueKey string) ([]odds.MovementEvent, error)
	ListWatchlist(ctx context.Context) ([]odds.WatchlistItem, error)
}

// LeagueData agrega tudo que uma seção do dashboard mostra.
type LeagueData struct {
	LeagueKey string
	EventOdds []odds.EventOdds
	Headlines []odds.Headline
	Movements []odds.MovementEvent
}

// TTLPolicy controla a validade do cache de odds/news. Eventos da
// watchlist perto do início encurtam o TTL de odds.
type TTLPolicy struct {
	Odds        time.Duration
	News        time.Duration
	OddsWithin1 time.Duration // watchlist com início em até 24h
	OddsWithin2 time.Duration // watchlist com início em até 3h
}

// Dashboard renderiza o quadro de todas as ligas em texto, em loop de
// polling. Sem push: cada ciclo refaz fetch (ou usa cache) e reescreve.
type Dashboard struct {
	Log      *zap.Logger
	Provider provider.OddsProvider
	News     provider.NewsProvider
	Store    Store
	Cache    *storagecache.RedisCache // nil desliga o cache

	Leagues  []League
	Regions  string
	Markets  []string
	Books    []string
	TTL      TTLPolicy
	Interval time.Duration

	Out io.Writer
	Now func() time.Time
}

// League associa o rótulo da aba à chave de liga.
type League struct {
	Label string
	Key   string
}

// Run renderiza todas as ligas e repete a cada Interval até o contexto
// ser cancelado.
func (d *Dashboard) Run(ctx context.Context) error {
	d.renderAll(ctx, false)

	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.renderAll(ctx, false)
		}
	}
}

// RenderOnce desenha um ciclo único (usado pelo refresh manual com 'r').
func (d *Dashboard) RenderOnce(ctx context.Context, force bool) {
	d.renderAll(ctx, force)
}

func (d *Dashboard) renderAll(ctx context.Context, force bool) {
	var sections []string
	for _, league := range d.Leagues {
		data, err := d.fetchLeague(ctx, league.Key, force)
		if err != nil {
			d.Log.Warn("league fetch failed", zap.String("league", league.Key), zap.Error(err))
			sections = append(sections, renderError(league, err))
			continue
		}
		sections = append(sections, renderLeague(league, data))
	}
	fmt.Fprintln(d.Out, strings.Join(sections, "\n\n"))
}

// fetchLeague monta os dados de uma seção, preferindo o cache; force
// ignora o cache e refaz o fetch.
func (d *Dashboard) fetchLeague(ctx context.Context, leagueKey string, force bool) (LeagueData, error) {
	data := LeagueData{LeagueKey: leagueKey}

	var cached bool
	if d.Cache != nil && !force {
		var err error
		data.EventOdds, cached, err = d.Cache.GetOdds(ctx, leagueKey)
		if err != nil {
			d.Log.Warn("odds cache read failed", zap.Error(err))
		}
	}
	if !cached {
		eventOdds, err := d.Provider.GetOdds(ctx, leagueKey, d.Markets, d.Regions, d.Books)
		if err != nil {
			return LeagueData{}, err
		}
		data.EventOdds = eventOdds
		if d.Cache != nil {
			ttl, terr := d.oddsTTL(ctx, eventOdds)
			if terr != nil {
				ttl = d.TTL.Odds
			}
			if err := d.Cache.SetOdds(ctx, leagueKey, eventOdds, ttl); err != nil {
				d.Log.Warn("odds cache write failed", zap.Error(err))
			}
		}
	}

	cached = false
	if d.Cache != nil && !force {
		var err error
		data.Headlines, cached, err = d.Cache.GetHeadlines(ctx, leagueKey)
		if err != nil {
			d.Log.Warn("news cache read failed", zap.Error(err))
		}
	}
	if !cached {
		headlines, err := d.News.FetchHeadlines(ctx, leagueKey, 5)
		if err != nil {
			// manchetes são acessório; painel segue sem elas
			d.Log.Warn("headlines fetch failed", zap.Error(err))
		} else {
			data.Headlines = headlines
			if d.Cache != nil {
				if err := d.Cache.SetHeadlines(ctx, leagueKey, headlines, d.TTL.News); err != nil {
					d.Log.Warn("news cache write failed", zap.Error(err))
				}
			}
		}
	}

	movements, err := d.Store.ListMovements(ctx, leagueKey)
	if err != nil {
		return LeagueData{}, err
	}
	data.Movements = movements

	return data, nil
}

// oddsTTL encurta o TTL quando algum evento da watchlist está perto de
// começar: 3h vale mais que 24h.
func (d *Dashboard) oddsTTL(ctx context.Context, eventOdds []odds.EventOdds) (time.Duration, error) {
	watchlist, err := d.Store.ListWatchlist(ctx)
	if err != nil {
		return 0, err
	}
	watched := make(map[string]bool, len(watchlist))
	for _, item := range watchlist {
		watched[item.EventID] = true
	}

	now := d.now()
	ttl := d.TTL.Odds
	for _, item := range eventOdds {
		if !watched[item.Event.EventID] {
			continue
		}
		until := item.Event.StartTime.Sub(now)
		if until < 0 {
			continue
		}
		if until <= 3*time.Hour {
			return d.TTL.OddsWithin2, nil
		}
		if until <= 24*time.Hour && d.TTL.OddsWithin1 < ttl {
			ttl = d.TTL.OddsWithin1
		}
	}
	return ttl, nil
}

func (d *Dashboard) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func renderLeague(league League, data LeagueData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s (%s) ===\n", league.Label, data.LeagueKey)

	if len(data.EventOdds) == 0 {
		b.WriteString("No events returned.\n")
	} else {
		for _, item := range data.EventOdds {
			b.WriteString(FormatEvent(item.Event))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
		b.WriteString(FormatOdds(data.EventOdds[0]))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(FormatSidePanel(data.Headlines, data.Movements))
	return b.String()
}

func renderError(league League, err error) string {
	return fmt.Sprintf("=== %s ===\nFetch error: %v", league.Label, err)
}
