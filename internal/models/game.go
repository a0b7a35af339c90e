package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GameStatus string

const (
	GameScheduled GameStatus = "scheduled"
	GameLive      GameStatus = "live"
	GameClosed    GameStatus = "closed"
	GameSettled   GameStatus = "settled"
	GameCancelled GameStatus = "cancelled"
)

type Game struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	GameType  string          `json:"game_type"`
	Status    GameStatus      `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time"`
	MinBet    decimal.Decimal `json:"min_bet"`
	MaxBet    decimal.Decimal `json:"max_bet"`
	Options   []GameOption    `json:"options"`
	Result    *string         `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

type GameOption struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Odds  decimal.Decimal `json:"odds"`
}

// Option returns the option with the given key.
func (g Game) Option(key string) (GameOption, bool) {
	for _, o := range g.Options {
		if o.Key == key {
			return o, true
		}
	}
	return GameOption{}, false
}

type GameFilter struct {
	Status string
	Type   string
	Search string
}

type NewGame struct {
	Title     string          `json:"title"`
	GameType  string          `json:"game_type"`
	Status    GameStatus      `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
	MinBet    decimal.Decimal `json:"min_bet"`
	MaxBet    decimal.Decimal `json:"max_bet"`
	Options   []GameOption    `json:"options"`
}
