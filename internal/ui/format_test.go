package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

func TestFormatEvent(t *testing.T) {
	event := odds.Event{
		HomeTeam:  "Chiefs",
		AwayTeam:  "Bills",
		StartTime: time.Date(2026, 1, 11, 18, 0, 0, 0, time.UTC),
	}
	got := FormatEvent(event)
	if !strings.HasPrefix(got, "Bills @ Chiefs") {
		t.Errorf("unexpected format %q", got)
	}
	if !strings.Contains(got, "Jan") {
		t.Errorf("missing date in %q", got)
	}
}

func TestFormatOddsBoard(t *testing.T) {
	board := odds.OddsBoard{
		BestLines: []odds.BestLines{
			{Market: odds.MarketH2H, Outcome: "Chiefs", Price: -135, Book: "draftkings"},
			{Market: odds.MarketSpreads, Outcome: "Bills", Price: -108, Point: odds.Float64Ptr(2.5), Book: "fanduel"},
		},
		LastUpdate: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}

	got := FormatOddsBoard(board)
	lines := strings.Split(got, "\n")
	if !strings.Contains(lines[0], "market") || !strings.Contains(lines[0], "book") {
		t.Errorf("missing header in %q", lines[0])
	}
	if !strings.Contains(got, "h2h") || !strings.Contains(got, "-135") || !strings.Contains(got, "draftkings") {
		t.Errorf("h2h row missing fields:\n%s", got)
	}
	if !strings.Contains(got, "+2.5") {
		t.Errorf("spread point not rendered:\n%s", got)
	}
	if !strings.Contains(got, "Updated:") {
		t.Errorf("missing update footer:\n%s", got)
	}
}

func TestFormatOddsBoardEmpty(t *testing.T) {
	if got := FormatOddsBoard(odds.OddsBoard{}); got != "No odds available" {
		t.Errorf("unexpected empty board output %q", got)
	}
}

func TestFormatOddsReducesToBestLines(t *testing.T) {
	eventOdds := odds.EventOdds{
		Event: odds.Event{HomeTeam: "Chiefs", AwayTeam: "Bills"},
		Markets: []odds.MarketOdds{
			{
				Market: odds.MarketH2H,
				Book:   "draftkings",
				Prices: []odds.OddsPrice{{Outcome: "Chiefs", Price: -140}},
			},
			{
				Market: odds.MarketH2H,
				Book:   "fanduel",
				Prices: []odds.OddsPrice{{Outcome: "Chiefs", Price: -130}},
			},
		},
	}
	got := FormatOdds(eventOdds)
	if !strings.Contains(got, "-130") || !strings.Contains(got, "fanduel") {
		t.Errorf("best price not selected:\n%s", got)
	}
	if strings.Contains(got, "-140") {
		t.Errorf("dominated price should not appear:\n%s", got)
	}
}

func TestFormatMovementsCapsAtFive(t *testing.T) {
	var movements []odds.MovementEvent
	for i := 0; i < 8; i++ {
		movements = append(movements, odds.MovementEvent{
			Details: odds.MovementDetails{
				Market:  odds.MarketH2H,
				Book:    "draftkings",
				Outcome: "Chiefs",
				Delta:   20 + i,
			},
		})
	}
	got := FormatMovements(movements)
	rows := 0
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "- ") {
			rows++
		}
	}
	if rows != 5 {
		t.Errorf("expected 5 movement rows, got %d:\n%s", rows, got)
	}
	if !strings.Contains(got, "+20") {
		t.Errorf("delta should render with sign:\n%s", got)
	}
}

func TestFormatSidePanel(t *testing.T) {
	got := FormatSidePanel(
		[]odds.Headline{{Title: "headline one"}},
		[]odds.MovementEvent{{Details: odds.MovementDetails{Market: odds.MarketH2H, Outcome: "Chiefs", Delta: 30, Book: "betmgm"}}},
	)
	if !strings.Contains(got, "Notable Moves") || !strings.Contains(got, "Headlines") {
		t.Errorf("panel sections missing:\n%s", got)
	}
	if !strings.Contains(got, "headline one") {
		t.Errorf("headline text missing:\n%s", got)
	}
}
