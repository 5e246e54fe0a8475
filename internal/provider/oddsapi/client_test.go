package oddsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

const oddsFixture = `[
  {
    "id": "evt-abc",
    "sport_title": "NFL",
    "commence_time": "2026-01-11T18:00:00Z",
    "home_team": "Kansas City Chiefs",
    "away_team": "Buffalo Bills",
    "bookmakers": [
      {
        "key": "draftkings",
        "title": "DraftKings",
        "markets": [
          {
            "key": "h2h",
            "last_update": "2026-01-10T12:00:00Z",
            "outcomes": [
              {"name": "Kansas City Chiefs", "price": -135},
              {"name": "Buffalo Bills", "price": 115}
            ]
          },
          {
            "key": "spreads",
            "last_update": "2026-01-10T12:00:00Z",
            "outcomes": [
              {"name": "Kansas City Chiefs", "price": -110, "point": -2.5},
              {"name": "Buffalo Bills", "price": -110, "point": 2.5}
            ]
          }
        ]
      },
      {
        "key": "fanduel",
        "title": "FanDuel",
        "markets": [
          {
            "key": "h2h",
            "last_update": "2026-01-10T12:05:00Z",
            "outcomes": [
              {"name": "Kansas City Chiefs", "price": -130},
              {"name": "Buffalo Bills", "price": null}
            ]
          }
        ]
      }
    ]
  }
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Client{BaseURL: server.URL, APIKey: "test-key", HTTP: server.Client()}
}

func TestGetOddsParsesFixture(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(oddsFixture))
	})

	result, err := client.GetOdds(context.Background(), "americanfootball_nfl", []string{"h2h", "spreads"}, "us", nil)
	if err != nil {
		t.Fatalf("GetOdds: %v", err)
	}

	if gotPath != "/sports/americanfootball_nfl/odds" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if got := gotQuery["oddsFormat"]; len(got) != 1 || got[0] != "american" {
		t.Errorf("expected oddsFormat=american, got %v", got)
	}
	if got := gotQuery["markets"]; len(got) != 1 || got[0] != "h2h,spreads" {
		t.Errorf("expected markets=h2h,spreads, got %v", got)
	}

	if len(result) != 1 {
		t.Fatalf("expected 1 event, got %d", len(result))
	}
	item := result[0]
	if item.Event.EventID != "evt-abc" || item.Event.HomeTeam != "Kansas City Chiefs" {
		t.Errorf("unexpected event: %+v", item.Event)
	}
	if item.Event.LeagueKey != "americanfootball_nfl" {
		t.Errorf("expected league key from request, got %q", item.Event.LeagueKey)
	}

	// draftkings h2h + spreads, fanduel h2h
	if len(item.Markets) != 3 {
		t.Fatalf("expected 3 markets, got %d", len(item.Markets))
	}

	h2h := item.Markets[0]
	if h2h.Market != odds.MarketH2H || h2h.Book != "draftkings" {
		t.Errorf("unexpected first market: %+v", h2h)
	}
	if len(h2h.Prices) != 2 || h2h.Prices[0].Price != -135 || h2h.Prices[1].Price != 115 {
		t.Errorf("unexpected h2h prices: %+v", h2h.Prices)
	}
	if h2h.Point != nil {
		t.Errorf("h2h should not carry a point, got %v", *h2h.Point)
	}

	spreads := item.Markets[1]
	if spreads.Market != odds.MarketSpreads {
		t.Fatalf("expected spreads market, got %q", spreads.Market)
	}
	// o point do mercado vem do último outcome que o carrega
	if spreads.Point == nil || *spreads.Point != 2.5 {
		t.Errorf("expected market point 2.5, got %v", spreads.Point)
	}

	// outcome de preço nulo é descartado
	fanduel := item.Markets[2]
	if fanduel.Book != "fanduel" || len(fanduel.Prices) != 1 {
		t.Errorf("expected fanduel with 1 price, got %+v", fanduel)
	}
}

func TestGetOddsBooksFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(oddsFixture))
	})

	result, err := client.GetOdds(context.Background(), "americanfootball_nfl", []string{"h2h"}, "us", []string{"fanduel"})
	if err != nil {
		t.Fatalf("GetOdds: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 event, got %d", len(result))
	}
	for _, market := range result[0].Markets {
		if market.Book != "fanduel" {
			t.Errorf("book filter leaked %q", market.Book)
		}
	}
	if len(result[0].Markets) != 1 {
		t.Errorf("expected only fanduel markets, got %d", len(result[0].Markets))
	}
}

func TestGetOddsHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusUnauthorized)
	})

	if _, err := client.GetOdds(context.Background(), "americanfootball_nfl", []string{"h2h"}, "us", nil); err == nil {
		t.Fatal("expected error on http 401")
	}
}

func TestListEventsFiltersByWindow(t *testing.T) {
	soon := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	far := time.Now().UTC().Add(90 * time.Hour).Format(time.RFC3339)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "soon", "home_team": "A", "away_team": "B", "commence_time": "` + soon + `"},
			{"id": "far", "home_team": "C", "away_team": "D", "commence_time": "` + far + `"}
		]`))
	})

	events, err := client.ListEvents(context.Background(), "mma_mixed_martial_arts", 48)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].EventID != "soon" {
		t.Fatalf("expected only the near event, got %+v", events)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty api key")
	}
	client, err := New("abc")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Name() != "oddsapi" {
		t.Errorf("unexpected provider name %q", client.Name())
	}
}

func TestDiscoverUFCKey(t *testing.T) {
	tests := []struct {
		name   string
		sports []Sport
		want   string
	}{
		{
			name: "prefers active over inactive",
			sports: []Sport{
				{Key: "mma_mixed_martial_arts", Title: "MMA", Group: "Mixed Martial Arts", Active: false},
				{Key: "mma_ufc", Title: "UFC", Group: "Mixed Martial Arts", Active: true},
			},
			want: "mma_ufc",
		},
		{
			name: "lexicographic tie break",
			sports: []Sport{
				{Key: "mma_zeta", Title: "MMA Zeta", Active: true},
				{Key: "mma_alpha", Title: "MMA Alpha", Active: true},
			},
			want: "mma_alpha",
		},
		{
			name: "matches group when key and title are opaque",
			sports: []Sport{
				{Key: "fight_league", Title: "Fight League", Group: "MMA", Active: true},
			},
			want: "fight_league",
		},
		{
			name: "ignores unrelated sports",
			sports: []Sport{
				{Key: "americanfootball_nfl", Title: "NFL", Group: "American Football", Active: true},
			},
			want: "",
		},
		{
			name:   "empty catalog",
			sports: nil,
			want:   "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DiscoverUFCKey(tc.sports); got != tc.want {
				t.Errorf("DiscoverUFCKey() = %q, want %q", got, tc.want)
			}
		})
	}
}
