package oddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

// Name identifica o provider nos snapshots persistidos.
const Name = "oddsapi"

const defaultBaseURL = "https://api.the-odds-api.com/v4"

// Client consome o The Odds API v4. Somente odds americanas.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New cria o cliente; a chave de API é obrigatória.
func New(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing odds api key")
	}
	return &Client{
		BaseURL: defaultBaseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 20 * time.Second},
	}, nil
}

// Name retorna o identificador do provider.
func (c *Client) Name() string { return Name }

// Sport é uma entrada do catálogo /sports do provider.
type Sport struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Group  string `json:"group"`
	Active bool   `json:"active"`
}

// DTOs espelham o JSON do provider.
type oddsEventDTO struct {
	ID           string         `json:"id"`
	SportTitle   string         `json:"sport_title"`
	CommenceTime time.Time      `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []bookmakerDTO `json:"bookmakers"`
}

type bookmakerDTO struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Markets []marketDTO `json:"markets"`
}

type marketDTO struct {
	Key        string       `json:"key"`
	LastUpdate time.Time    `json:"last_update"`
	Outcomes   []outcomeDTO `json:"outcomes"`
}

type outcomeDTO struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Point *float64 `json:"point"`
}

// GetOdds busca as odds correntes de uma liga para os mercados pedidos.
// booksFilter não vazio restringe às casas listadas.
func (c *Client) GetOdds(ctx context.Context, leagueKey string, markets []string, regions string, booksFilter []string) ([]odds.EventOdds, error) {
	params := url.Values{}
	params.Set("apiKey", c.APIKey)
	params.Set("regions", regions)
	params.Set("markets", strings.Join(markets, ","))
	params.Set("oddsFormat", "american")

	var data []oddsEventDTO
	if err := c.getJSON(ctx, "/sports/"+leagueKey+"/odds", params, &data); err != nil {
		return nil, err
	}

	out := make([]odds.EventOdds, 0, len(data))
	for _, raw := range data {
		out = append(out, parseEventOdds(leagueKey, raw, booksFilter))
	}
	return out, nil
}

// ListEvents busca os eventos listados de uma liga, limitados aos que
// começam dentro de `hours` horas.
func (c *Client) ListEvents(ctx context.Context, leagueKey string, hours int) ([]odds.Event, error) {
	params := url.Values{}
	params.Set("apiKey", c.APIKey)

	var data []oddsEventDTO
	if err := c.getJSON(ctx, "/sports/"+leagueKey+"/events", params, &data); err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC()
	var events []odds.Event
	for _, raw := range data {
		if !raw.CommenceTime.IsZero() && raw.CommenceTime.Sub(cutoff) > time.Duration(hours)*time.Hour {
			continue
		}
		start := raw.CommenceTime
		if start.IsZero() {
			start = cutoff
		}
		events = append(events, odds.Event{
			EventID:    raw.ID,
			LeagueKey:  leagueKey,
			SportTitle: raw.SportTitle,
			HomeTeam:   raw.HomeTeam,
			AwayTeam:   raw.AwayTeam,
			StartTime:  start,
		})
	}
	return events, nil
}

// ListSports retorna o catálogo de esportes do provider (usado na
// descoberta da chave de UFC).
func (c *Client) ListSports(ctx context.Context) ([]Sport, error) {
	params := url.Values{}
	params.Set("apiKey", c.APIKey)

	var data []Sport
	if err := c.getJSON(ctx, "/sports", params, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("oddsapi get %s: %w", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("oddsapi get %s: http %d", path, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("oddsapi decode %s: %w", path, err)
	}
	return nil
}

// parseEventOdds converte o DTO do provider para o modelo canônico.
// O point do mercado vem do último outcome que o carrega; outcomes sem
// preço são ignorados.
func parseEventOdds(leagueKey string, raw oddsEventDTO, booksFilter []string) odds.EventOdds {
	start := raw.CommenceTime
	if start.IsZero() {
		start = time.Now().UTC()
	}
	out := odds.EventOdds{
		Event: odds.Event{
			EventID:    raw.ID,
			LeagueKey:  leagueKey,
			SportTitle: raw.SportTitle,
			HomeTeam:   raw.HomeTeam,
			AwayTeam:   raw.AwayTeam,
			StartTime:  start,
		},
	}

	for _, bookmaker := range raw.Bookmakers {
		if len(booksFilter) > 0 && !contains(booksFilter, bookmaker.Key) {
			continue
		}
		book := bookmaker.Key
		if book == "" {
			book = "unknown"
		}
		for _, market := range bookmaker.Markets {
			lastUpdate := market.LastUpdate
			if lastUpdate.IsZero() {
				lastUpdate = time.Now().UTC()
			}
			var point *float64
			var prices []odds.OddsPrice
			for _, outcome := range market.Outcomes {
				if outcome.Price == nil {
					continue
				}
				if outcome.Point != nil {
					point = outcome.Point
				}
				prices = append(prices, odds.OddsPrice{
					Outcome: outcome.Name,
					Price:   int(*outcome.Price),
				})
			}
			out.Markets = append(out.Markets, odds.MarketOdds{
				Market:     market.Key,
				Book:       book,
				LastUpdate: lastUpdate,
				Prices:     prices,
				Point:      point,
			})
		}
	}
	return out
}

// DiscoverUFCKey escolhe a chave de liga de UFC/MMA no catálogo do
// provider: título/chave/grupo contendo "ufc" ou "mma", esportes ativos
// primeiro, desempate lexicográfico.
func DiscoverUFCKey(sports []Sport) string {
	type candidate struct {
		active bool
		key    string
	}
	var candidates []candidate
	for _, sport := range sports {
		key := strings.ToLower(sport.Key)
		title := strings.ToLower(sport.Title)
		group := strings.ToLower(sport.Group)
		if strings.Contains(title, "ufc") || strings.Contains(key, "ufc") {
			candidates = append(candidates, candidate{sport.Active, sport.Key})
		} else if strings.Contains(key, "mma") || strings.Contains(group, "mma") || strings.Contains(title, "mma") {
			candidates = append(candidates, candidate{sport.Active, sport.Key})
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.active != best.active {
			if c.active {
				best = c
			}
			continue
		}
		if c.key < best.key {
			best = c
		}
	}
	return best.key
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
