package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

// List methods take limit/offset and return the page plus the exact total.

type Profiles interface {
	Get(ctx context.Context, id string) (models.Profile, error)
	Create(ctx context.Context, p models.Profile) (models.Profile, error)
	Update(ctx context.Context, id string, u models.ProfileUpdate) (models.Profile, error)
	SetStatus(ctx context.Context, id, status string) (models.Profile, error)
	// SetReferralCode only writes when the profile has no code yet; a
	// duplicate code is a conflict.
	SetReferralCode(ctx context.Context, id, code string) (models.Profile, error)
	SetTelegramChat(ctx context.Context, id string, chatID int64) error
	List(ctx context.Context, f models.ProfileFilter, limit, offset int) ([]models.Profile, int, error)
	// AdjustBalance applies a signed admin adjustment and returns the new balance.
	AdjustBalance(ctx context.Context, id string, amount decimal.Decimal, reason, adminID string) (decimal.Decimal, error)
}

type Games interface {
	Get(ctx context.Context, id string) (models.Game, error)
	List(ctx context.Context, f models.GameFilter, limit, offset int) ([]models.Game, int, error)
	Upcoming(ctx context.Context, after time.Time, limit int) ([]models.Game, error)
	Create(ctx context.Context, g models.NewGame) (models.Game, error)
	SetStatus(ctx context.Context, id string, status models.GameStatus) (models.Game, error)
	Settle(ctx context.Context, id, result string) ([]models.SettledBet, error)
	Delete(ctx context.Context, id string) error
}

type Bets interface {
	Place(ctx context.Context, b models.PlaceBet) (models.Bet, error)
	Get(ctx context.Context, userID, id string) (models.Bet, error)
	List(ctx context.Context, userID string, f models.BetFilter, limit, offset int) ([]models.Bet, int, error)
	Stats(ctx context.Context, userID string) (models.BetStats, error)
}

type Transactions interface {
	List(ctx context.Context, userID string, f models.TransactionFilter, limit, offset int) ([]models.Transaction, int, error)
}

type Payments interface {
	Create(ctx context.Context, p models.NewPaymentRequest) (models.PaymentRequest, error)
	Get(ctx context.Context, id string) (models.PaymentRequest, error)
	List(ctx context.Context, f models.PaymentFilter, limit, offset int) ([]models.PaymentRequest, int, error)
	PendingTotal(ctx context.Context, userID string, kind models.PaymentKind) (decimal.Decimal, error)
	CountPending(ctx context.Context) (int, error)
	// Process approves or rejects a pending request; approval moves money.
	Process(ctx context.Context, id string, approve bool, adminID, note string) (models.PaymentRequest, error)
}

type Notifications interface {
	Create(ctx context.Context, n models.NewNotification) (models.Notification, error)
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	// MarkRead and Delete are scoped to userID: someone else's row is not found.
	MarkRead(ctx context.Context, userID, id string) (models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID, id string) error
	Broadcast(ctx context.Context, n models.NewNotification) (int, error)
}

type Referrals interface {
	List(ctx context.Context, referrerID string, limit, offset int) ([]models.Referral, int, error)
	Stats(ctx context.Context, referrerID string) (models.ReferralStats, error)
	Apply(ctx context.Context, referredID, code string) error
}

type Admin interface {
	Stats(ctx context.Context) (models.AdminStats, error)
}

// Identity is the remote auth provider.
type Identity interface {
	SignUp(ctx context.Context, req supabase.SignUpRequest) (*supabase.Session, error)
	SignIn(ctx context.Context, email, password string) (*supabase.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*supabase.Session, error)
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
	SignOut(ctx context.Context, accessToken string) error
}

type Repositories struct {
	Profiles      Profiles
	Games         Games
	Bets          Bets
	Transactions  Transactions
	Payments      Payments
	Notifications Notifications
	Referrals     Referrals
	Admin         Admin
	Identity      Identity
	// Ping checks the data service is reachable.
	Ping func(ctx context.Context) error
}
