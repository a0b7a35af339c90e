package remote

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type profilesRepo struct{ c *supabase.Client }

func (r *profilesRepo) Get(ctx context.Context, id string) (models.Profile, error) {
	var p models.Profile
	_, err := r.c.From("profiles").Select("*").Eq("id", id).Single().ExecuteInto(ctx, &p)
	return p, notFound(err, "Profile")
}

func (r *profilesRepo) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	row := map[string]any{
		"id":        p.ID,
		"email":     p.Email,
		"username":  p.Username,
		"full_name": p.FullName,
		"phone":     p.Phone,
		"role":      models.RoleUser,
		"status":    models.StatusActive,
	}
	var out models.Profile
	_, err := r.c.From("profiles").Insert(row).Single().ExecuteInto(ctx, &out)
	if supabase.IsCode(err, "23505") {
		return models.Profile{}, apperr.Conflict("Username or email already taken", err)
	}
	return out, err
}

func (r *profilesRepo) Update(ctx context.Context, id string, u models.ProfileUpdate) (models.Profile, error) {
	patch := map[string]any{"updated_at": time.Now().UTC()}
	if u.Username != nil {
		patch["username"] = *u.Username
	}
	if u.FullName != nil {
		patch["full_name"] = *u.FullName
	}
	if u.Phone != nil {
		patch["phone"] = *u.Phone
	}
	var out models.Profile
	_, err := r.c.From("profiles").Update(patch).Eq("id", id).Single().ExecuteInto(ctx, &out)
	if supabase.IsCode(err, "23505") {
		return models.Profile{}, apperr.Conflict("Username already taken", err)
	}
	return out, notFound(err, "Profile")
}

func (r *profilesRepo) SetStatus(ctx context.Context, id, status string) (models.Profile, error) {
	var out models.Profile
	_, err := r.c.From("profiles").
		Update(map[string]any{"status": status, "updated_at": time.Now().UTC()}).
		Eq("id", id).Single().ExecuteInto(ctx, &out)
	return out, notFound(err, "User")
}

func (r *profilesRepo) SetReferralCode(ctx context.Context, id, code string) (models.Profile, error) {
	var out models.Profile
	_, err := r.c.From("profiles").
		Update(map[string]any{"referral_code": code, "updated_at": time.Now().UTC()}).
		Eq("id", id).Is("referral_code", nil).
		Single().ExecuteInto(ctx, &out)
	switch {
	case supabase.IsCode(err, "23505"):
		return models.Profile{}, apperr.Conflict("Referral code already in use", err)
	case supabase.IsNotFound(err):
		// Someone set a code concurrently; return what is stored.
		return r.Get(ctx, id)
	}
	return out, err
}

func (r *profilesRepo) SetTelegramChat(ctx context.Context, id string, chatID int64) error {
	_, err := r.c.From("profiles").
		Update(map[string]any{"telegram_chat_id": chatID, "updated_at": time.Now().UTC()}).
		Eq("id", id).Single().Execute(ctx)
	return notFound(err, "Profile")
}

func (r *profilesRepo) List(ctx context.Context, f models.ProfileFilter, limit, offset int) ([]models.Profile, int, error) {
	q := r.c.From("profiles").Select("*").Count("exact").Order("created_at", false).Range(offset, offset+limit-1)
	if s := sanitizeSearch(f.Search); s != "" {
		q = q.Or("username.ilike.*" + s + "*,email.ilike.*" + s + "*,full_name.ilike.*" + s + "*")
	}
	if f.Role != "" {
		q = q.Eq("role", f.Role)
	}
	if f.Status != "" {
		q = q.Eq("status", f.Status)
	}
	var out []models.Profile
	n, err := q.ExecuteInto(ctx, &out)
	return out, n, err
}

func (r *profilesRepo) AdjustBalance(ctx context.Context, id string, amount decimal.Decimal, reason, adminID string) (decimal.Decimal, error) {
	var res struct {
		NewBalance decimal.Decimal `json:"new_balance"`
	}
	err := r.c.RPC(ctx, "adjust_user_balance", map[string]any{
		"p_user_id":  id,
		"p_amount":   amount,
		"p_reason":   reason,
		"p_admin_id": adminID,
	}, &res)
	return res.NewBalance, err
}

// sanitizeSearch strips characters that carry meaning inside a PostgREST
// or-filter.
func sanitizeSearch(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '*', '%', '.', ':', '"', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
