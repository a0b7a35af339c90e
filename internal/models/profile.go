package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type Profile struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	Username       string          `json:"username"`
	FullName       *string         `json:"full_name"`
	Phone          *string         `json:"phone"`
	Role           string          `json:"role"`
	Status         string          `json:"status"`
	Balance        decimal.Decimal `json:"balance"`
	ReferralCode   *string         `json:"referral_code"`
	ReferredBy     *string         `json:"referred_by"`
	TelegramChatID *int64          `json:"telegram_chat_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (p Profile) IsAdmin() bool  { return p.Role == RoleAdmin }
func (p Profile) IsActive() bool { return p.Status == StatusActive }

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type ProfileFilter struct {
	Search string
	Role   string
	Status string
}

type Session struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// WalletSummary is the balance view returned by the wallet endpoint.
type WalletSummary struct {
	Balance            decimal.Decimal `json:"balance"`
	Currency           string          `json:"currency"`
	PendingWithdrawals decimal.Decimal `json:"pendingWithdrawals"`
}
