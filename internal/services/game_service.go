package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
)

type GameService struct {
	games  repo.Games
	notify Notifier
	audit  Auditor
	log    *zap.Logger
	now    func() time.Time
}

func NewGameService(r repo.Repositories, n Notifier, a Auditor, log *zap.Logger) *GameService {
	return &GameService{games: r.Games, notify: n, audit: a, log: log, now: time.Now}
}

func (s *GameService) List(ctx context.Context, f models.GameFilter, p paging.Params) (paging.Page[models.Game], error) {
	rows, total, err := s.games.List(ctx, f, p.PageSize, p.Offset())
	if err != nil {
		return paging.Page[models.Game]{}, err
	}
	return paging.NewPage(rows, total, p), nil
}

// Upcoming returns scheduled games starting after now, soonest first.
func (s *GameService) Upcoming(ctx context.Context, limit int) ([]models.Game, error) {
	rows, err := s.games.Upcoming(ctx, s.now().UTC(), limit)
	if rows == nil {
		rows = []models.Game{}
	}
	return rows, err
}

func (s *GameService) Get(ctx context.Context, id string) (models.Game, error) {
	return s.games.Get(ctx, id)
}

// ----------------- Admin -----------------

func (s *GameService) Create(ctx context.Context, actor Actor, g models.NewGame) (models.Game, error) {
	if g.EndTime != nil && !g.EndTime.After(g.StartTime) {
		return models.Game{}, apperr.Validation("End time must be after start time")
	}
	if g.MaxBet.LessThan(g.MinBet) {
		return models.Game{}, apperr.Validation("Maximum bet must not be below the minimum bet")
	}
	seen := map[string]bool{}
	for _, o := range g.Options {
		if seen[o.Key] {
			return models.Game{}, apperr.Validation("Option keys must be unique")
		}
		seen[o.Key] = true
	}
	if g.Status == "" {
		g.Status = models.GameScheduled
	}

	out, err := s.games.Create(ctx, g)
	if err != nil {
		return models.Game{}, err
	}
	actor.record(s.audit, "game.create", "game", out.ID, map[string]any{"title": out.Title})
	return out, nil
}

func (s *GameService) SetStatus(ctx context.Context, actor Actor, id string, status models.GameStatus) (models.Game, error) {
	if status == models.GameSettled {
		return models.Game{}, apperr.Validation("Use settle to close a game with a result")
	}
	out, err := s.games.SetStatus(ctx, id, status)
	if err != nil {
		return models.Game{}, err
	}
	actor.record(s.audit, "game.status", "game", id, map[string]any{"status": status})
	return out, nil
}

// Settle resolves every pending bet on the game and tells each bettor.
func (s *GameService) Settle(ctx context.Context, actor Actor, id, result string) ([]models.SettledBet, error) {
	g, err := s.games.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := g.Option(result); !ok {
		return nil, apperr.Validation("Result must be one of the game options")
	}

	settled, err := s.games.Settle(ctx, id, result)
	if err != nil {
		return nil, err
	}
	actor.record(s.audit, "game.settle", "game", id, map[string]any{"result": result, "bets": len(settled)})
	s.log.Info("game settled", zap.String("game_id", id), zap.String("result", result), zap.Int("bets", len(settled)))

	for _, b := range settled {
		n := models.NewNotification{UserID: b.UserID, Type: models.NotifyBet}
		if b.Status == models.BetWon {
			n.Title = "You won!"
			n.Message = fmt.Sprintf("Your bet on %s won %s %s.", g.Title, b.Payout.StringFixed(2), Currency)
		} else {
			n.Title = "Bet settled"
			n.Message = fmt.Sprintf("Your bet on %s did not win. Result: %s.", g.Title, result)
		}
		s.notify.Notify(n)
	}
	if settled == nil {
		settled = []models.SettledBet{}
	}
	return settled, nil
}

func (s *GameService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := s.games.Delete(ctx, id); err != nil {
		return err
	}
	actor.record(s.audit, "game.delete", "game", id, nil)
	return nil
}
