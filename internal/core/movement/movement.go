package movement

import (
	"math"
	"time"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

const (
	// Variação mínima de preço (odd americana) para um movimento de moneyline
	h2hPriceThreshold = 15
	// Variação mínima de linha para spreads/totals
	pointThreshold = 1.0
)

// moveKey identifica uma cotação dentro de um snapshot.
type moveKey struct {
	market  string
	book    string
	outcome string
}

// Detector compara dois snapshots do mesmo evento e classifica movimentos
// notáveis. Now é injetável para testes; o default usa UTC.
type Detector struct {
	Now func() time.Time
}

// New retorna um detector com relógio UTC.
func New() *Detector {
	return &Detector{Now: func() time.Time { return time.Now().UTC() }}
}

// DetectNotableMoves compara dois snapshots do MESMO evento (responsabilidade
// do chamador, previous sempre o mais antigo) e emite um MovementEvent por
// chave (market, book, outcome) cuja variação cruza o limiar de relevância.
//
// Chaves presentes só em um dos lados não geram movimento: ausência não é
// movimento. A ordem da saída segue a ordem de inserção do snapshot atual.
func (d *Detector) DetectNotableMoves(previous, current odds.EventOdds) []odds.MovementEvent {
	prevIdx, _ := indexPrices(previous)
	currIdx, order := indexPrices(current)

	var moves []odds.MovementEvent
	for _, key := range order {
		curr := currIdx[key]
		prev, ok := prevIdx[key]
		if !ok {
			continue
		}
		if !isNotable(key.market, prev, curr) {
			continue
		}
		moves = append(moves, odds.MovementEvent{
			LeagueKey: current.Event.LeagueKey,
			EventID:   current.Event.EventID,
			CreatedAt: d.Now(),
			Details: odds.MovementDetails{
				Market:   key.market,
				Book:     key.book,
				Outcome:  key.outcome,
				Previous: prev,
				Current:  curr,
				Delta:    curr.Price - prev.Price,
			},
		})
	}
	return moves
}

// DetectNotableMoves com o detector default do pacote.
func DetectNotableMoves(previous, current odds.EventOdds) []odds.MovementEvent {
	return New().DetectNotableMoves(previous, current)
}

// indexPrices monta o índice (market, book, outcome) -> {price, point} de um
// snapshot. Chave duplicada sobrescreve em silêncio (a última vence),
// mantendo a posição original na ordem de inserção.
func indexPrices(eventOdds odds.EventOdds) (map[moveKey]odds.PricePoint, []moveKey) {
	idx := make(map[moveKey]odds.PricePoint)
	var order []moveKey
	for _, market := range eventOdds.Markets {
		for _, price := range market.Prices {
			key := moveKey{market: market.Market, book: market.Book, outcome: price.Outcome}
			if _, seen := idx[key]; !seen {
				order = append(order, key)
			}
			idx[key] = odds.PricePoint{Price: price.Price, Point: market.Point}
		}
	}
	return idx, order
}

// isNotable aplica a política de relevância por tipo de mercado.
// h2h: |delta| >= 15 ou troca de sinal em torno de zero (vira de favorito
// para azarão, ou o inverso). spreads/totals: ambos os points presentes e
// |delta da linha| >= 1.0; variação de preço sozinha não conta. Qualquer
// outro mercado nunca é notável.
func isNotable(market string, prev, curr odds.PricePoint) bool {
	switch market {
	case odds.MarketH2H:
		if abs(curr.Price-prev.Price) >= h2hPriceThreshold {
			return true
		}
		return (prev.Price < 0 && curr.Price >= 0) || (prev.Price > 0 && curr.Price <= 0)
	case odds.MarketSpreads, odds.MarketTotals:
		if prev.Point == nil || curr.Point == nil {
			return false
		}
		return math.Abs(*curr.Point-*prev.Point) >= pointThreshold
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
