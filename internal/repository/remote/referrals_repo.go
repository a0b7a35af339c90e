package remote

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type referralsRepo struct{ c *supabase.Client }

func (r *referralsRepo) List(ctx context.Context, referrerID string, limit, offset int) ([]models.Referral, int, error) {
	var out []models.Referral
	n, err := r.c.From("referrals").Select("*").Count("exact").
		Eq("referrer_id", referrerID).
		Order("created_at", false).
		Range(offset, offset+limit-1).
		ExecuteInto(ctx, &out)
	return out, n, err
}

func (r *referralsRepo) Stats(ctx context.Context, referrerID string) (models.ReferralStats, error) {
	var rows []struct {
		BonusAmount decimal.Decimal `json:"bonus_amount"`
	}
	n, err := r.c.From("referrals").Select("bonus_amount").Count("exact").
		Eq("referrer_id", referrerID).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return models.ReferralStats{}, err
	}
	st := models.ReferralStats{TotalReferrals: n, TotalBonus: decimal.Zero}
	for _, row := range rows {
		st.TotalBonus = st.TotalBonus.Add(row.BonusAmount)
	}
	return st, nil
}

func (r *referralsRepo) Apply(ctx context.Context, referredID, code string) error {
	return r.c.RPC(ctx, "apply_referral", map[string]any{"p_referred_id": referredID, "p_code": code}, nil)
}
