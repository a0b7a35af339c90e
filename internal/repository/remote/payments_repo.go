package remote

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type paymentsRepo struct{ c *supabase.Client }

func (r *paymentsRepo) Create(ctx context.Context, p models.NewPaymentRequest) (models.PaymentRequest, error) {
	var out models.PaymentRequest
	_, err := r.c.From("payment_requests").Insert(p).Single().ExecuteInto(ctx, &out)
	return out, err
}

func (r *paymentsRepo) Get(ctx context.Context, id string) (models.PaymentRequest, error) {
	var out models.PaymentRequest
	_, err := r.c.From("payment_requests").Select("*").Eq("id", id).Single().ExecuteInto(ctx, &out)
	return out, notFound(err, "Payment request")
}

func (r *paymentsRepo) List(ctx context.Context, f models.PaymentFilter, limit, offset int) ([]models.PaymentRequest, int, error) {
	q := r.c.From("payment_requests").Select("*,profile:profiles(username,email)").Count("exact").
		Order("created_at", false).
		Range(offset, offset+limit-1)
	if f.UserID != "" {
		q = q.Eq("user_id", f.UserID)
	}
	if f.Kind != "" {
		q = q.Eq("kind", f.Kind)
	}
	if f.Status != "" {
		q = q.Eq("status", f.Status)
	}
	var out []models.PaymentRequest
	n, err := q.ExecuteInto(ctx, &out)
	return out, n, err
}

func (r *paymentsRepo) PendingTotal(ctx context.Context, userID string, kind models.PaymentKind) (decimal.Decimal, error) {
	var rows []struct {
		Amount decimal.Decimal `json:"amount"`
	}
	_, err := r.c.From("payment_requests").Select("amount").
		Eq("user_id", userID).Eq("kind", kind).Eq("status", models.PaymentPending).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total, nil
}

func (r *paymentsRepo) CountPending(ctx context.Context) (int, error) {
	return r.c.From("payment_requests").Select("id").Count("exact").
		Eq("status", models.PaymentPending).
		Limit(1).
		ExecuteInto(ctx, nil)
}

func (r *paymentsRepo) Process(ctx context.Context, id string, approve bool, adminID, note string) (models.PaymentRequest, error) {
	var out models.PaymentRequest
	err := r.c.RPC(ctx, "process_payment_request", map[string]any{
		"p_request_id": id,
		"p_approve":    approve,
		"p_admin_id":   adminID,
		"p_note":       note,
	}, &out)
	return out, notFound(err, "Payment request")
}
