package mockfeed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

// Name identifica o provider simulado.
const Name = "mockfeed"

// Catálogo fixo de confrontos por liga para geração de odds simuladas.
var catalog = map[string][]matchup{
	odds.LeagueNFL: {
		{"NFL_001", "Chiefs", "Bills"},
		{"NFL_002", "Eagles", "Cowboys"},
		{"NFL_003", "49ers", "Seahawks"},
	},
	odds.LeagueCFB: {
		{"CFB_001", "Georgia", "Alabama"},
		{"CFB_002", "Michigan", "Ohio State"},
	},
	"ufc": {
		{"UFC_001", "Jones", "Aspinall"},
		{"UFC_002", "Makhachev", "Tsarukyan"},
	},
}

var books = []string{"draftkings", "fanduel", "betmgm"}

type matchup struct {
	id   string
	home string
	away string
}

// Provider gera odds pseudo-aleatórias determinísticas por seed. Serve
// para rodar o dashboard sem chave de API e para testes de pipeline.
type Provider struct {
	rng *rand.Rand
	now func() time.Time
}

// New cria o provider com a seed dada.
func New(seed int64) *Provider {
	return &Provider{
		rng: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Name retorna o identificador do provider.
func (p *Provider) Name() string { return Name }

// GetOdds gera cotações para os confrontos do catálogo da liga, uma por
// casa para cada mercado pedido. Regions e booksFilter são ignorados.
func (p *Provider) GetOdds(_ context.Context, leagueKey string, markets []string, _ string, _ []string) ([]odds.EventOdds, error) {
	matchups, ok := catalog[leagueKey]
	if !ok {
		return nil, fmt.Errorf("mockfeed: unknown league %q", leagueKey)
	}

	now := p.now()
	out := make([]odds.EventOdds, 0, len(matchups))
	for i, m := range matchups {
		eventOdds := odds.EventOdds{
			Event: odds.Event{
				EventID:    m.id,
				LeagueKey:  leagueKey,
				SportTitle: leagueKey,
				HomeTeam:   m.home,
				AwayTeam:   m.away,
				StartTime:  now.Add(time.Duration(12+6*i) * time.Hour),
			},
		}
		for _, market := range markets {
			for _, book := range books {
				eventOdds.Markets = append(eventOdds.Markets, p.quote(market, book, m, now))
			}
		}
		out = append(out, eventOdds)
	}
	return out, nil
}

// quote gera uma cotação com jitter em torno de -110 e linhas em meios
// pontos, no formato do provider real.
func (p *Provider) quote(market, book string, m matchup, now time.Time) odds.MarketOdds {
	quote := odds.MarketOdds{
		Market:     market,
		Book:       book,
		LastUpdate: now,
	}

	jitter := func() int { return p.rng.Intn(41) - 20 }

	switch market {
	case odds.MarketSpreads:
		line := float64(p.rng.Intn(13)-6) + 0.5
		quote.Point = &line
		quote.Prices = []odds.OddsPrice{
			{Outcome: m.home, Price: -110 + jitter()},
			{Outcome: m.away, Price: -110 + jitter()},
		}
	case odds.MarketTotals:
		line := 40.5 + float64(p.rng.Intn(20))
		quote.Point = &line
		quote.Prices = []odds.OddsPrice{
			{Outcome: "Over", Price: -110 + jitter()},
			{Outcome: "Under", Price: -110 + jitter()},
		}
	default: // h2h e qualquer outro mercado
		favorite := -150 - p.rng.Intn(100)
		underdog := 120 + p.rng.Intn(100)
		quote.Prices = []odds.OddsPrice{
			{Outcome: m.home, Price: favorite},
			{Outcome: m.away, Price: underdog},
		}
	}
	return quote
}
