package remote

import (
	"context"

	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type betsRepo struct{ c *supabase.Client }

const betColumns = "*,game:games(title,game_type,status)"

func (r *betsRepo) Place(ctx context.Context, b models.PlaceBet) (models.Bet, error) {
	var out models.Bet
	err := r.c.RPC(ctx, "place_bet", b, &out)
	return out, err
}

func (r *betsRepo) Get(ctx context.Context, userID, id string) (models.Bet, error) {
	var out models.Bet
	_, err := r.c.From("bets").Select(betColumns).Eq("id", id).Eq("user_id", userID).Single().ExecuteInto(ctx, &out)
	return out, notFound(err, "Bet")
}

func (r *betsRepo) List(ctx context.Context, userID string, f models.BetFilter, limit, offset int) ([]models.Bet, int, error) {
	q := r.c.From("bets").Select(betColumns).Count("exact").
		Eq("user_id", userID).
		Order("created_at", false).
		Range(offset, offset+limit-1)
	if f.Status != "" {
		q = q.Eq("status", f.Status)
	}
	if f.GameID != "" {
		q = q.Eq("game_id", f.GameID)
	}
	if f.From != nil {
		q = q.Gte("created_at", *f.From)
	}
	if f.To != nil {
		q = q.Lte("created_at", *f.To)
	}
	var out []models.Bet
	n, err := q.ExecuteInto(ctx, &out)
	return out, n, err
}

func (r *betsRepo) Stats(ctx context.Context, userID string) (models.BetStats, error) {
	var out models.BetStats
	err := r.c.RPC(ctx, "get_user_bet_stats", map[string]any{"p_user_id": userID}, &out)
	return out, err
}
