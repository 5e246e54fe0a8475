package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

// Erros de decode para payloads sem identidade de evento.
var (
	ErrMissingEventID   = errors.New("payload missing event.event_id")
	ErrMissingLeagueKey = errors.New("payload missing event.league_key")
)

// Payload persistido de um EventOdds. Nomes de campo espelham o modelo;
// timestamps em RFC 3339 com timezone.
type eventPayload struct {
	EventID    string `json:"event_id"`
	LeagueKey  string `json:"league_key"`
	SportTitle string `json:"sport_title"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	StartTime  string `json:"start_time"`
}

type pricePayload struct {
	Outcome string      `json:"outcome"`
	Price   json.Number `json:"price"`
}

type marketPayload struct {
	Market     string         `json:"market"`
	Book       string         `json:"book"`
	LastUpdate string         `json:"last_update"`
	Point      *float64       `json:"point"`
	Prices     []pricePayload `json:"prices"`
}

type eventOddsPayload struct {
	Event   eventPayload    `json:"event"`
	Markets []marketPayload `json:"markets"`
}

// snapshotPayload embrulha os EventOdds de um mercado em um snapshot.
type snapshotPayload struct {
	Items []json.RawMessage `json:"items"`
}

// EventOddsToPayload serializa um EventOdds para o formato persistido.
func EventOddsToPayload(eventOdds odds.EventOdds) ([]byte, error) {
	p := eventOddsPayload{
		Event: eventPayload{
			EventID:    eventOdds.Event.EventID,
			LeagueKey:  eventOdds.Event.LeagueKey,
			SportTitle: eventOdds.Event.SportTitle,
			HomeTeam:   eventOdds.Event.HomeTeam,
			AwayTeam:   eventOdds.Event.AwayTeam,
			StartTime:  eventOdds.Event.StartTime.Format(time.RFC3339Nano),
		},
		Markets: make([]marketPayload, 0, len(eventOdds.Markets)),
	}
	for _, market := range eventOdds.Markets {
		mp := marketPayload{
			Market:     market.Market,
			Book:       market.Book,
			LastUpdate: market.LastUpdate.Format(time.RFC3339Nano),
			Point:      market.Point,
			Prices:     make([]pricePayload, 0, len(market.Prices)),
		}
		for _, price := range market.Prices {
			mp.Prices = append(mp.Prices, pricePayload{
				Outcome: price.Outcome,
				Price:   json.Number(fmt.Sprintf("%d", price.Price)),
			})
		}
		p.Markets = append(p.Markets, mp)
	}
	return json.Marshal(p)
}

// PayloadToEventOdds reconstrói um EventOdds a partir do payload persistido.
// Decode leniente: sport_title/home_team/away_team ausentes viram string
// vazia e timestamps ausentes viram zero. Falha apenas quando a identidade
// (event_id, league_key) está ausente ou um campo presente é inválido.
// Preços são forçados para inteiro independente da representação numérica.
func PayloadToEventOdds(raw []byte) (odds.EventOdds, error) {
	var p eventOddsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return odds.EventOdds{}, fmt.Errorf("decode odds payload: %w", err)
	}
	if p.Event.EventID == "" {
		return odds.EventOdds{}, ErrMissingEventID
	}
	if p.Event.LeagueKey == "" {
		return odds.EventOdds{}, ErrMissingLeagueKey
	}

	startTime, err := parseTime(p.Event.StartTime)
	if err != nil {
		return odds.EventOdds{}, fmt.Errorf("decode start_time: %w", err)
	}

	out := odds.EventOdds{
		Event: odds.Event{
			EventID:    p.Event.EventID,
			LeagueKey:  p.Event.LeagueKey,
			SportTitle: p.Event.SportTitle,
			HomeTeam:   p.Event.HomeTeam,
			AwayTeam:   p.Event.AwayTeam,
			StartTime:  startTime,
		},
	}
	for _, mp := range p.Markets {
		lastUpdate, err := parseTime(mp.LastUpdate)
		if err != nil {
			return odds.EventOdds{}, fmt.Errorf("decode last_update: %w", err)
		}
		market := odds.MarketOdds{
			Market:     mp.Market,
			Book:       mp.Book,
			LastUpdate: lastUpdate,
			Point:      mp.Point,
		}
		for _, pp := range mp.Prices {
			price, err := coerceInt(pp.Price)
			if err != nil {
				return odds.EventOdds{}, fmt.Errorf("decode price: %w", err)
			}
			market.Prices = append(market.Prices, odds.OddsPrice{Outcome: pp.Outcome, Price: price})
		}
		out.Markets = append(out.Markets, market)
	}
	return out, nil
}

// EncodeSnapshot serializa a lista de EventOdds de um mercado no formato
// {"items": [...]} usado pelo snapshot store.
func EncodeSnapshot(items []odds.EventOdds) ([]byte, error) {
	payload := snapshotPayload{Items: make([]json.RawMessage, 0, len(items))}
	for _, item := range items {
		raw, err := EventOddsToPayload(item)
		if err != nil {
			return nil, err
		}
		payload.Items = append(payload.Items, raw)
	}
	return json.Marshal(payload)
}

// DecodeSnapshot reconstrói todos os EventOdds de um snapshot.
func DecodeSnapshot(raw []byte) ([]odds.EventOdds, error) {
	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	out := make([]odds.EventOdds, 0, len(payload.Items))
	for _, item := range payload.Items {
		eventOdds, err := PayloadToEventOdds(item)
		if err != nil {
			return nil, err
		}
		out = append(out, eventOdds)
	}
	return out, nil
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// coerceInt aceita qualquer número JSON e devolve um inteiro (trunca a fração).
func coerceInt(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := n.Int64(); err == nil {
		return int(v), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
