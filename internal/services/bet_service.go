package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/metrics"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
)

type BetService struct {
	bets repo.Bets
	log  *zap.Logger
}

func NewBetService(r repo.Repositories, log *zap.Logger) *BetService {
	return &BetService{bets: r.Bets, log: log}
}

// Place hands the bet to place_bet, which checks the game, the selection,
// the stake limits and the balance in one transaction.
func (s *BetService) Place(ctx context.Context, in models.PlaceBet) (models.Bet, error) {
	b, err := s.bets.Place(ctx, in)
	if err != nil {
		return models.Bet{}, err
	}
	metrics.BetsPlacedTotal.Inc()
	s.log.Info("bet placed",
		zap.String("bet_id", b.ID),
		zap.String("user_id", in.UserID),
		zap.String("game_id", in.GameID),
		zap.String("amount", in.Amount.StringFixed(2)),
	)
	return b, nil
}

func (s *BetService) List(ctx context.Context, userID string, f models.BetFilter, p paging.Params) (paging.Page[models.Bet], error) {
	rows, total, err := s.bets.List(ctx, userID, f, p.PageSize, p.Offset())
	if err != nil {
		return paging.Page[models.Bet]{}, err
	}
	return paging.NewPage(rows, total, p), nil
}

// Get returns one of userID's bets; anyone else's is not found.
func (s *BetService) Get(ctx context.Context, userID, id string) (models.Bet, error) {
	return s.bets.Get(ctx, userID, id)
}

func (s *BetService) Stats(ctx context.Context, userID string) (models.BetStats, error) {
	return s.bets.Stats(ctx, userID)
}
