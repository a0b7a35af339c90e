package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Referral struct {
	ID               string          `json:"id"`
	ReferrerID       string          `json:"referrer_id"`
	ReferredID       string          `json:"referred_id"`
	ReferredUsername *string         `json:"referred_username"`
	BonusAmount      decimal.Decimal `json:"bonus_amount"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

type ReferralStats struct {
	TotalReferrals int             `json:"totalReferrals"`
	TotalBonus     decimal.Decimal `json:"totalBonus"`
}
