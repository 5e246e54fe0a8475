package normalizer

import (
	"github.com/radieske/betboard/pkg/contracts/odds"
)

// lineKey identifica uma linha do quadro: um outcome dentro de um mercado.
type lineKey struct {
	market  string
	outcome string
}

// BuildOddsBoard reduz todas as cotações de um evento ao quadro de melhores
// linhas: uma BestLines por (market, outcome), escolhida entre todas as casas.
// Função pura; o resultado não depende da ordem dos mercados de entrada.
//
// Critério de vitória: preço numericamente maior ganha (vale para odds
// americanas positivas e negativas); empate de preço é decidido pelo point
// maior, quando ambos existem.
func BuildOddsBoard(eventOdds odds.EventOdds) odds.OddsBoard {
	best := make(map[lineKey]odds.BestLines)
	var order []lineKey

	board := odds.OddsBoard{Event: eventOdds.Event}

	for _, market := range eventOdds.Markets {
		if market.LastUpdate.After(board.LastUpdate) {
			board.LastUpdate = market.LastUpdate
		}
		for _, price := range market.Prices {
			key := lineKey{market: market.Market, outcome: price.Outcome}
			candidate := odds.BestLines{
				Market:  market.Market,
				Outcome: price.Outcome,
				Price:   price.Price,
				Book:    market.Book,
				Point:   market.Point,
			}
			holder, ok := best[key]
			if !ok {
				best[key] = candidate
				order = append(order, key)
				continue
			}
			if beats(candidate, holder) {
				best[key] = candidate
			}
		}
	}

	if len(order) > 0 {
		board.BestLines = make([]odds.BestLines, 0, len(order))
		for _, key := range order {
			board.BestLines = append(board.BestLines, best[key])
		}
	}
	return board
}

// beats decide se o candidato substitui o dono atual da chave.
func beats(candidate, holder odds.BestLines) bool {
	if candidate.Price != holder.Price {
		return candidate.Price > holder.Price
	}
	if candidate.Point == nil || holder.Point == nil {
		return false
	}
	return *candidate.Point > *holder.Point
}
