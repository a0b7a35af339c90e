package remote

import (
	"context"
	"time"

	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type gamesRepo struct{ c *supabase.Client }

func (r *gamesRepo) Get(ctx context.Context, id string) (models.Game, error) {
	var g models.Game
	_, err := r.c.From("games").Select("*").Eq("id", id).Single().ExecuteInto(ctx, &g)
	return g, notFound(err, "Game")
}

func (r *gamesRepo) List(ctx context.Context, f models.GameFilter, limit, offset int) ([]models.Game, int, error) {
	q := r.c.From("games").Select("*").Count("exact").Order("start_time", false).Range(offset, offset+limit-1)
	if f.Status != "" {
		q = q.Eq("status", f.Status)
	}
	if f.Type != "" {
		q = q.Eq("game_type", f.Type)
	}
	if s := sanitizeSearch(f.Search); s != "" {
		q = q.ILike("title", "*"+s+"*")
	}
	var out []models.Game
	n, err := q.ExecuteInto(ctx, &out)
	return out, n, err
}

func (r *gamesRepo) Upcoming(ctx context.Context, after time.Time, limit int) ([]models.Game, error) {
	var out []models.Game
	_, err := r.c.From("games").Select("*").
		Eq("status", models.GameScheduled).
		Gt("start_time", after).
		Order("start_time", true).
		Limit(limit).
		ExecuteInto(ctx, &out)
	return out, err
}

func (r *gamesRepo) Create(ctx context.Context, g models.NewGame) (models.Game, error) {
	var out models.Game
	_, err := r.c.From("games").Insert(g).Single().ExecuteInto(ctx, &out)
	return out, err
}

func (r *gamesRepo) SetStatus(ctx context.Context, id string, status models.GameStatus) (models.Game, error) {
	var out models.Game
	_, err := r.c.From("games").Update(map[string]any{"status": status}).Eq("id", id).Single().ExecuteInto(ctx, &out)
	return out, notFound(err, "Game")
}

func (r *gamesRepo) Settle(ctx context.Context, id, result string) ([]models.SettledBet, error) {
	var out []models.SettledBet
	err := r.c.RPC(ctx, "settle_game", map[string]any{"p_game_id": id, "p_result": result}, &out)
	return out, err
}

func (r *gamesRepo) Delete(ctx context.Context, id string) error {
	_, err := r.c.From("games").Delete().Eq("id", id).Single().Execute(ctx)
	if supabase.IsCode(err, "23503") {
		return apperr.Conflict("Game has bets and cannot be deleted", err)
	}
	return notFound(err, "Game")
}
