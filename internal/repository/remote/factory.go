// Package remote implements the repositories on top of the hosted data
// service.
package remote

import (
	"context"

	"github.com/baharkarakas/betzone-api/internal/apperr"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

func NewRepositories(c *supabase.Client) repo.Repositories {
	return repo.Repositories{
		Profiles:      &profilesRepo{c},
		Games:         &gamesRepo{c},
		Bets:          &betsRepo{c},
		Transactions:  &transactionsRepo{c},
		Payments:      &paymentsRepo{c},
		Notifications: &notificationsRepo{c},
		Referrals:     &referralsRepo{c},
		Admin:         &adminRepo{c},
		Identity:      &identity{c.Auth()},
		Ping: func(ctx context.Context) error {
			_, err := c.From("games").Select("id").Limit(1).Execute(ctx)
			return err
		},
	}
}

// notFound turns a PostgREST no-rows answer into a named 404.
func notFound(err error, what string) error {
	if supabase.IsNotFound(err) {
		return apperr.NotFound(what + " not found")
	}
	return err
}

