package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentKind string

const (
	PaymentDeposit    PaymentKind = "deposit"
	PaymentWithdrawal PaymentKind = "withdrawal"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

type PaymentRequest struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Kind           PaymentKind     `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Reference      *string         `json:"reference"`
	AccountDetails *string         `json:"account_details"`
	Status         PaymentStatus   `json:"status"`
	AdminNote      *string         `json:"admin_note"`
	ProcessedBy    *string         `json:"processed_by"`
	ProcessedAt    *time.Time      `json:"processed_at"`
	CreatedAt      time.Time       `json:"created_at"`
	Profile        *ProfileRef     `json:"profile,omitempty"`
}

// ProfileRef is the embedded requester summary on admin payment lists.
type ProfileRef struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type NewPaymentRequest struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Kind           PaymentKind     `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Reference      *string         `json:"reference,omitempty"`
	AccountDetails *string         `json:"account_details,omitempty"`
	Status         PaymentStatus   `json:"status"`
}

type PaymentFilter struct {
	UserID string
	Kind   string
	Status string
}
