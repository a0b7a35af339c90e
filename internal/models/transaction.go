package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnDeposit       TransactionType = "deposit"
	TxnWithdrawal    TransactionType = "withdrawal"
	TxnBet           TransactionType = "bet"
	TxnPayout        TransactionType = "payout"
	TxnRefund        TransactionType = "refund"
	TxnReferralBonus TransactionType = "referral_bonus"
	TxnAdjustment    TransactionType = "adjustment"
)

// Transaction is an immutable ledger row written by the remote procedures.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	ReferenceID  *string         `json:"reference_id"`
	Description  *string         `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

type TransactionFilter struct {
	Type string
	From *time.Time
	To   *time.Time
}
