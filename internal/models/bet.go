package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BetStatus string

const (
	BetPending  BetStatus = "pending"
	BetWon      BetStatus = "won"
	BetLost     BetStatus = "lost"
	BetRefunded BetStatus = "refunded"
)

type Bet struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	GameID          string          `json:"game_id"`
	Selection       string          `json:"selection"`
	Amount          decimal.Decimal `json:"amount"`
	Odds            decimal.Decimal `json:"odds"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
	Status          BetStatus       `json:"status"`
	Payout          decimal.Decimal `json:"payout"`
	CreatedAt       time.Time       `json:"created_at"`
	SettledAt       *time.Time      `json:"settled_at"`
	Game            *GameRef        `json:"game,omitempty"`
}

// GameRef is the embedded game summary PostgREST returns for bets.
type GameRef struct {
	Title    string     `json:"title"`
	GameType string     `json:"game_type"`
	Status   GameStatus `json:"status"`
}

type BetFilter struct {
	Status string
	GameID string
	From   *time.Time
	To     *time.Time
}

type BetStats struct {
	TotalBets   int             `json:"total_bets"`
	Pending     int             `json:"pending"`
	Won         int             `json:"won"`
	Lost        int             `json:"lost"`
	TotalStaked decimal.Decimal `json:"total_staked"`
	TotalWon    decimal.Decimal `json:"total_won"`
	WinRate     decimal.Decimal `json:"win_rate"`
}

type PlaceBet struct {
	UserID    string          `json:"p_user_id"`
	GameID    string          `json:"p_game_id"`
	Selection string          `json:"p_selection"`
	Amount    decimal.Decimal `json:"p_amount"`
}

// SettledBet is one row of the settle_game result, used to notify bettors.
type SettledBet struct {
	BetID  string          `json:"bet_id"`
	UserID string          `json:"user_id"`
	Status BetStatus       `json:"status"`
	Payout decimal.Decimal `json:"payout"`
}
