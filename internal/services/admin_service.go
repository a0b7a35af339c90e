package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/async"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
)

const (
	adminRecent = 10
	// auditProfile is the entity type of user-level audit events.
	auditProfile = "profile"
)

type AdminService struct {
	repos   repo.Repositories
	notify  Notifier
	audit   Auditor
	history AuditHistory
	policy  async.Policy
	log     *zap.Logger
}

func NewAdminService(r repo.Repositories, n Notifier, a Auditor, policy async.Policy, log *zap.Logger) *AdminService {
	return &AdminService{repos: r, notify: n, audit: a, policy: policy, log: log}
}

// WithAuditHistory adds the admin actions taken on a user to the user
// detail view.
func (s *AdminService) WithAuditHistory(h AuditHistory) *AdminService {
	s.history = h
	return s
}

// Stats combines the aggregate RPC with the live pending-payment count.
func (s *AdminService) Stats(ctx context.Context) (models.AdminStats, error) {
	var (
		st      models.AdminStats
		pending int
	)
	err := async.FanOut(ctx, s.policy, s.log,
		async.Task{Name: "admin stats", Run: func(ctx context.Context) (err error) {
			st, err = s.repos.Admin.Stats(ctx)
			return err
		}},
		async.Task{
			Name: "pending payments",
			Run: func(ctx context.Context) (err error) {
				pending, err = s.repos.Payments.CountPending(ctx)
				return err
			},
			Fallback: func() { pending = 0 },
		},
	)
	if err != nil {
		return models.AdminStats{}, err
	}
	st.PendingPayments = pending
	return st, nil
}

func (s *AdminService) Users(ctx context.Context, f models.ProfileFilter, p paging.Params) (paging.Page[models.Profile], error) {
	rows, total, err := s.repos.Profiles.List(ctx, f, p.PageSize, p.Offset())
	if err != nil {
		return paging.Page[models.Profile]{}, err
	}
	return paging.NewPage(rows, total, p), nil
}

type UserDetail struct {
	Profile            models.Profile       `json:"profile"`
	RecentBets         []models.Bet         `json:"recentBets"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
	// AuditLog is nil, and omitted, when no audit store is configured.
	AuditLog           []models.AuditEvent  `json:"auditLog,omitempty"`
}

func (s *AdminService) User(ctx context.Context, id string) (UserDetail, error) {
	d := UserDetail{RecentBets: []models.Bet{}, RecentTransactions: []models.Transaction{}}
	tasks := []async.Task{
		{Name: "profile", Run: func(ctx context.Context) (err error) {
			d.Profile, err = s.repos.Profiles.Get(ctx, id)
			return err
		}},
		{
			Name: "recent bets",
			Run: func(ctx context.Context) error {
				rows, _, err := s.repos.Bets.List(ctx, id, models.BetFilter{}, adminRecent, 0)
				if rows != nil {
					d.RecentBets = rows
				}
				return err
			},
			Fallback: func() { d.RecentBets = []models.Bet{} },
		},
		{
			Name: "recent transactions",
			Run: func(ctx context.Context) error {
				rows, _, err := s.repos.Transactions.List(ctx, id, models.TransactionFilter{}, adminRecent, 0)
				if rows != nil {
					d.RecentTransactions = rows
				}
				return err
			},
			Fallback: func() { d.RecentTransactions = []models.Transaction{} },
		},
	}
	if s.history != nil {
		d.AuditLog = []models.AuditEvent{}
		tasks = append(tasks, async.Task{
			Name: "audit log",
			Run: func(ctx context.Context) error {
				rows, err := s.history.ForEntity(ctx, auditProfile, id, adminRecent)
				if rows != nil {
					d.AuditLog = rows
				}
				return err
			},
			Fallback: func() { d.AuditLog = []models.AuditEvent{} },
		})
	}
	if err := async.FanOut(ctx, s.policy, s.log, tasks...); err != nil {
		return UserDetail{}, err
	}
	return d, nil
}

func (s *AdminService) SetUserStatus(ctx context.Context, actor Actor, id, status string) (models.Profile, error) {
	if id == actor.ID && status != models.StatusActive {
		return models.Profile{}, apperr.Validation("You cannot suspend your own account")
	}
	p, err := s.repos.Profiles.SetStatus(ctx, id, status)
	if err != nil {
		return models.Profile{}, err
	}
	actor.record(s.audit, "user.status", auditProfile, id, map[string]any{"status": status})
	return p, nil
}

// AdjustBalance credits (positive) or debits (negative) a user's balance
// and returns the new balance.
func (s *AdminService) AdjustBalance(ctx context.Context, actor Actor, id string, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, apperr.Validation("Amount must not be zero")
	}
	bal, err := s.repos.Profiles.AdjustBalance(ctx, id, amount, reason, actor.ID)
	if err != nil {
		return decimal.Zero, err
	}
	actor.record(s.audit, "user.balance", auditProfile, id, map[string]any{
		"amount": amount.StringFixed(2), "reason": reason, "new_balance": bal.StringFixed(2),
	})
	s.log.Info("balance adjusted",
		zap.String("user_id", id),
		zap.String("admin_id", actor.ID),
		zap.String("amount", amount.StringFixed(2)),
	)

	verb := "credited to"
	if amount.IsNegative() {
		verb = "debited from"
	}
	s.notify.Notify(models.NewNotification{
		UserID:  id,
		Type:    models.NotifyInfo,
		Title:   "Balance adjusted",
		Message: fmt.Sprintf("%s %s was %s your balance. Reason: %s", amount.Abs().StringFixed(2), Currency, verb, reason),
	})
	return bal, nil
}

func (s *AdminService) Payments(ctx context.Context, f models.PaymentFilter, p paging.Params) (paging.Page[models.PaymentRequest], error) {
	rows, total, err := s.repos.Payments.List(ctx, f, p.PageSize, p.Offset())
	if err != nil {
		return paging.Page[models.PaymentRequest]{}, err
	}
	return paging.NewPage(rows, total, p), nil
}

// ProcessPayment approves or rejects a pending request through
// process_payment_request and tells the requester.
func (s *AdminService) ProcessPayment(ctx context.Context, actor Actor, id string, approve bool, note string) (models.PaymentRequest, error) {
	if !approve && note == "" {
		return models.PaymentRequest{}, apperr.Validation("A note is required when rejecting")
	}
	pr, err := s.repos.Payments.Process(ctx, id, approve, actor.ID, note)
	if err != nil {
		return models.PaymentRequest{}, err
	}

	action := "payment.reject"
	if approve {
		action = "payment.approve"
	}
	actor.record(s.audit, action, "payment_request", id, map[string]any{
		"kind": pr.Kind, "amount": pr.Amount.StringFixed(2), "note": note,
	})
	s.log.Info("payment processed",
		zap.String("id", id),
		zap.String("admin_id", actor.ID),
		zap.String("status", string(pr.Status)),
	)

	n := models.NewNotification{UserID: pr.UserID, Type: models.NotifyPayment}
	amount := pr.Amount.StringFixed(2) + " " + Currency
	if approve {
		n.Title = fmt.Sprintf("%s approved", kindTitle(pr.Kind))
		n.Message = fmt.Sprintf("Your %s of %s was approved.", pr.Kind, amount)
	} else {
		n.Title = fmt.Sprintf("%s rejected", kindTitle(pr.Kind))
		n.Message = fmt.Sprintf("Your %s of %s was rejected: %s", pr.Kind, amount, note)
	}
	s.notify.Notify(n)
	return pr, nil
}

func kindTitle(k models.PaymentKind) string {
	if k == models.PaymentWithdrawal {
		return "Withdrawal"
	}
	return "Deposit"
}

// SendNotification notifies one user, or every active user when userID is
// empty. It returns how many notifications were created.
func (s *AdminService) SendNotification(ctx context.Context, actor Actor, n models.NewNotification) (int, error) {
	if n.Type == "" {
		n.Type = models.NotifyInfo
	}
	if n.UserID == "" {
		count, err := s.repos.Notifications.Broadcast(ctx, n)
		if err != nil {
			return 0, err
		}
		actor.record(s.audit, "notification.broadcast", "notification", "", map[string]any{"title": n.Title, "count": count})
		return count, nil
	}

	if _, err := s.repos.Profiles.Get(ctx, n.UserID); err != nil {
		return 0, err
	}
	if _, err := s.repos.Notifications.Create(ctx, n); err != nil {
		return 0, err
	}
	actor.record(s.audit, "notification.send", auditProfile, n.UserID, map[string]any{"title": n.Title})
	return 1, nil
}
