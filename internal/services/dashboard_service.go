package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/async"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
)

const dashboardRecent = 5

type DashboardService struct {
	repos  repo.Repositories
	policy async.Policy
	log    *zap.Logger
}

func NewDashboardService(r repo.Repositories, policy async.Policy, log *zap.Logger) *DashboardService {
	return &DashboardService{repos: r, policy: policy, log: log}
}

type Dashboard struct {
	Profile            models.Profile       `json:"profile"`
	RecentBets         []models.Bet         `json:"recentBets"`
	Stats              models.BetStats      `json:"stats"`
	UnreadCount        int                  `json:"unreadCount"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
}

// Get loads the dashboard reads concurrently. Under best-effort a failed
// read falls back to an empty value; the profile falls back to the one the
// session already loaded.
func (s *DashboardService) Get(ctx context.Context, caller models.Profile) (Dashboard, error) {
	userID := caller.ID
	d := Dashboard{RecentBets: []models.Bet{}, RecentTransactions: []models.Transaction{}}

	err := async.FanOut(ctx, s.policy, s.log,
		async.Task{
			Name: "profile",
			Run: func(ctx context.Context) (err error) {
				d.Profile, err = s.repos.Profiles.Get(ctx, userID)
				return err
			},
			Fallback: func() { d.Profile = caller },
		},
		async.Task{
			Name: "recent bets",
			Run: func(ctx context.Context) error {
				rows, _, err := s.repos.Bets.List(ctx, userID, models.BetFilter{}, dashboardRecent, 0)
				if rows != nil {
					d.RecentBets = rows
				}
				return err
			},
			Fallback: func() { d.RecentBets = []models.Bet{} },
		},
		async.Task{
			Name: "bet stats",
			Run: func(ctx context.Context) (err error) {
				d.Stats, err = s.repos.Bets.Stats(ctx, userID)
				return err
			},
			Fallback: func() {
				d.Stats = models.BetStats{TotalStaked: decimal.Zero, TotalWon: decimal.Zero, WinRate: decimal.Zero}
			},
		},
		async.Task{
			Name: "unread count",
			Run: func(ctx context.Context) (err error) {
				d.UnreadCount, err = s.repos.Notifications.UnreadCount(ctx, userID)
				return err
			},
			Fallback: func() { d.UnreadCount = 0 },
		},
		async.Task{
			Name: "recent transactions",
			Run: func(ctx context.Context) error {
				rows, _, err := s.repos.Transactions.List(ctx, userID, models.TransactionFilter{}, dashboardRecent, 0)
				if rows != nil {
					d.RecentTransactions = rows
				}
				return err
			},
			Fallback: func() { d.RecentTransactions = []models.Transaction{} },
		},
	)
	if err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
