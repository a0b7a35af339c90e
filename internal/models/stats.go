package models

import "github.com/shopspring/decimal"

// AdminStats is the payload of get_admin_stats plus locally counted fields.
type AdminStats struct {
	TotalUsers       int             `json:"total_users"`
	ActiveUsers      int             `json:"active_users"`
	NewUsersToday    int             `json:"new_users_today"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalBets        int             `json:"total_bets"`
	TotalStaked      decimal.Decimal `json:"total_staked"`
	TotalPayouts     decimal.Decimal `json:"total_payouts"`
	ActiveGames      int             `json:"active_games"`
	PendingPayments  int             `json:"pending_payments"`
}
