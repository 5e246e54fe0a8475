package refresh

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betboard/internal/core/codec"
	"github.com/radieske/betboard/internal/core/movement"
	"github.com/radieske/betboard/internal/provider"
	"github.com/radieske/betboard/pkg/contracts/odds"
)

// Store é o subconjunto do snapshot store que o refresh consome.
type Store interface {
	LatestPayload(ctx context.Context, provider, leagueKey, market string) ([]byte, bool, error)
	AddSnapshot(ctx context.Context, s odds.OddsSnapshot) error
	RecordMovements(ctx context.Context, moves []odds.MovementEvent) error
}

// MovementPublisher encaminha os movimentos para o streaming. Opcional.
type MovementPublisher interface {
	PublishMovements(ctx context.Context, moves []odds.MovementEvent) error
}

// Service executa o pipeline de refresh de uma liga: fetch no provider,
// snapshot por mercado, diff contra o snapshot anterior e persistência dos
// movimentos notáveis. Callbacks de métricas acompanham cada etapa.
type Service struct {
	Log      *zap.Logger
	Provider provider.OddsProvider
	Store    Store
	Detector *movement.Detector

	// Publisher de movimentos; nil desliga o streaming
	Publisher MovementPublisher

	Markets []string
	Regions string
	Books   []string

	Now func() time.Time

	OnFetched   func(int)    // métricas: eventos retornados pelo fetch
	OnSnapshot  func()       // métricas: snapshot persistido
	OnMovements func(int)    // métricas: movimentos detectados
	OnError     func(string) // métricas: erros por estágio
}

// RefreshLeague roda o pipeline completo para uma liga. Falha de fetch
// aborta; falha em um mercado é logada e não bloqueia os demais.
func (s *Service) RefreshLeague(ctx context.Context, leagueKey string) error {
	eventOdds, err := s.Provider.GetOdds(ctx, leagueKey, s.Markets, s.Regions, s.Books)
	if err != nil {
		s.fail("fetch")
		return fmt.Errorf("refresh %s: %w", leagueKey, err)
	}
	if s.OnFetched != nil {
		s.OnFetched(len(eventOdds))
	}

	for _, market := range s.Markets {
		if err := s.refreshMarket(ctx, leagueKey, market, eventOdds); err != nil {
			s.Log.Warn("market refresh failed",
				zap.String("league", leagueKey),
				zap.String("market", market),
				zap.Error(err),
			)
		}
	}
	return nil
}

// refreshMarket persiste o snapshot de um mercado e, havendo snapshot
// anterior, roda o detector de movimentos. Sem snapshot anterior não há
// baseline e a detecção é simplesmente pulada.
func (s *Service) refreshMarket(ctx context.Context, leagueKey, market string, eventOdds []odds.EventOdds) error {
	items := withMarket(eventOdds, market)

	payload, err := codec.EncodeSnapshot(items)
	if err != nil {
		s.fail("encode")
		return err
	}

	prevPayload, hasPrev, err := s.Store.LatestPayload(ctx, s.Provider.Name(), leagueKey, market)
	if err != nil {
		s.fail("read_previous")
		return err
	}

	snapshot := odds.OddsSnapshot{
		Provider:  s.Provider.Name(),
		LeagueKey: leagueKey,
		Market:    market,
		FetchedAt: s.now(),
		Payload:   payload,
	}
	if err := s.Store.AddSnapshot(ctx, snapshot); err != nil {
		s.fail("persist_snapshot")
		return err
	}
	if s.OnSnapshot != nil {
		s.OnSnapshot()
	}

	if !hasPrev {
		return nil
	}

	moves, err := s.detect(prevPayload, items)
	if err != nil {
		s.fail("detect")
		return err
	}
	if s.OnMovements != nil {
		s.OnMovements(len(moves))
	}
	if len(moves) == 0 {
		return nil
	}

	if err := s.Store.RecordMovements(ctx, moves); err != nil {
		s.fail("persist_movements")
		return err
	}

	if s.Publisher != nil {
		if err := s.Publisher.PublishMovements(ctx, moves); err != nil {
			// streaming é melhor esforço; o movimento já está persistido
			s.fail("publish")
			s.Log.Warn("movement publish failed", zap.Error(err))
		}
	}
	return nil
}

// detect decodifica o snapshot anterior, casa eventos por event_id e roda
// o detector nos pares. Eventos sem contraparte anterior não geram nada.
func (s *Service) detect(prevPayload []byte, current []odds.EventOdds) ([]odds.MovementEvent, error) {
	prevItems, err := codec.DecodeSnapshot(prevPayload)
	if err != nil {
		return nil, fmt.Errorf("decode previous snapshot: %w", err)
	}

	prevByEvent := make(map[string]odds.EventOdds, len(prevItems))
	for _, item := range prevItems {
		prevByEvent[item.Event.EventID] = item
	}

	detector := s.Detector
	if detector == nil {
		detector = movement.New()
	}

	var moves []odds.MovementEvent
	for _, curr := range current {
		prev, ok := prevByEvent[curr.Event.EventID]
		if !ok {
			continue
		}
		moves = append(moves, detector.DetectNotableMoves(prev, curr)...)
	}
	return moves, nil
}

// withMarket filtra os eventos que cotam o mercado dado.
func withMarket(eventOdds []odds.EventOdds, market string) []odds.EventOdds {
	var out []odds.EventOdds
	for _, item := range eventOdds {
		if len(item.MarketsByType(market)) > 0 {
			out = append(out, item)
		}
	}
	return out
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) fail(stage string) {
	if s.OnError != nil {
		s.OnError(stage)
	}
}
