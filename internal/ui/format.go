package ui

import (
	"fmt"
	"strings"

	"github.com/radieske/betboard/internal/core/normalizer"
	"github.com/radieske/betboard/pkg/contracts/odds"
)

// FormatEvent resume um evento em uma linha: "Away @ Home  Sep 01 18:30".
func FormatEvent(event odds.Event) string {
	when := event.StartTime.Local().Format("Jan 02 15:04")
	return fmt.Sprintf("%s @ %s  %s", event.AwayTeam, event.HomeTeam, when)
}

// FormatOdds reduz as cotações de um evento ao quadro e o formata.
func FormatOdds(eventOdds odds.EventOdds) string {
	return FormatOddsBoard(normalizer.BuildOddsBoard(eventOdds))
}

// FormatOddsBoard renderiza o quadro de melhores linhas em tabela de texto.
func FormatOddsBoard(board odds.OddsBoard) string {
	if len(board.BestLines) == 0 {
		return "No odds available"
	}
	lines := []string{
		"market  | outcome  | price | point | book",
		strings.Repeat("-", 48),
	}
	for _, line := range board.BestLines {
		point := ""
		if line.Point != nil {
			point = fmt.Sprintf("%+.1f", *line.Point)
		}
		lines = append(lines, fmt.Sprintf("%-7s | %-8s | %5d | %5s | %s",
			line.Market, line.Outcome, line.Price, point, line.Book))
	}
	if !board.LastUpdate.IsZero() {
		lines = append(lines, "", "Updated: "+board.LastUpdate.Local().Format("Jan 02 15:04"))
	}
	return strings.Join(lines, "\n")
}

// FormatHeadlines lista as manchetes.
func FormatHeadlines(headlines []odds.Headline) string {
	lines := []string{"Headlines", strings.Repeat("-", 24)}
	for _, headline := range headlines {
		lines = append(lines, "- "+headline.Title)
	}
	return strings.Join(lines, "\n")
}

// FormatMovements lista os últimos movimentos notáveis (máximo 5).
func FormatMovements(movements []odds.MovementEvent) string {
	lines := []string{"Notable Moves", strings.Repeat("-", 24)}
	for i, move := range movements {
		if i >= 5 {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s %s %+d (%s)",
			move.Details.Market, move.Details.Outcome, move.Details.Delta, move.Details.Book))
	}
	return strings.Join(lines, "\n")
}

// FormatSidePanel junta movimentos e manchetes no painel lateral.
func FormatSidePanel(headlines []odds.Headline, movements []odds.MovementEvent) string {
	return FormatMovements(movements) + "\n\n" + FormatHeadlines(headlines)
}
