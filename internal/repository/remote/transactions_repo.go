package remote

import (
	"context"

	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type transactionsRepo struct{ c *supabase.Client }

func (r *transactionsRepo) List(ctx context.Context, userID string, f models.TransactionFilter, limit, offset int) ([]models.Transaction, int, error) {
	q := r.c.From("transactions").Select("*").Count("exact").
		Eq("user_id", userID).
		Order("created_at", false).
		Range(offset, offset+limit-1)
	if f.Type != "" {
		q = q.Eq("type", f.Type)
	}
	if f.From != nil {
		q = q.Gte("created_at", *f.From)
	}
	if f.To != nil {
		q = q.Lte("created_at", *f.To)
	}
	var out []models.Transaction
	n, err := q.ExecuteInto(ctx, &out)
	return out, n, err
}
