package remote

import (
	"context"

	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type identity struct{ auth *supabase.AuthClient }

func (i *identity) SignUp(ctx context.Context, req supabase.SignUpRequest) (*supabase.Session, error) {
	return i.auth.SignUp(ctx, req)
}

func (i *identity) SignIn(ctx context.Context, email, password string) (*supabase.Session, error) {
	return i.auth.SignInWithPassword(ctx, email, password)
}

func (i *identity) Refresh(ctx context.Context, refreshToken string) (*supabase.Session, error) {
	return i.auth.RefreshToken(ctx, refreshToken)
}

func (i *identity) GetUser(ctx context.Context, accessToken string) (*supabase.User, error) {
	return i.auth.GetUser(ctx, accessToken)
}

func (i *identity) SignOut(ctx context.Context, accessToken string) error {
	return i.auth.SignOut(ctx, accessToken)
}
