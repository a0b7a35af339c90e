package services

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/auth"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type AccountService struct {
	identity  repo.Identity
	profiles  repo.Profiles
	referrals repo.Referrals
	tokens    *auth.TokenManager
	bot       BotInfo
	log       *zap.Logger
}

func NewAccountService(r repo.Repositories, tm *auth.TokenManager, bot BotInfo, log *zap.Logger) *AccountService {
	return &AccountService{identity: r.Identity, profiles: r.Profiles, referrals: r.Referrals, tokens: tm, bot: bot, log: log}
}

type RegisterInput struct {
	Email        string
	Password     string
	Username     string
	FullName     *string
	Phone        *string
	ReferralCode string
}

// AuthResult is a fresh session plus the caller's profile. Session is nil
// when the provider requires email confirmation first.
type AuthResult struct {
	Session *supabase.Session
	Profile models.Profile
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	sess, err := s.identity.SignUp(ctx, supabase.SignUpRequest{
		Email:    in.Email,
		Password: in.Password,
		Data:     map[string]any{"username": in.Username},
	})
	if err != nil {
		return AuthResult{}, err
	}
	if sess.User == nil || sess.User.ID == "" {
		return AuthResult{}, apperr.Internal(errRegisterNoUser)
	}

	p, err := s.profiles.Create(ctx, models.Profile{
		ID:       sess.User.ID,
		Email:    in.Email,
		Username: in.Username,
		FullName: in.FullName,
		Phone:    in.Phone,
	})
	if err != nil {
		// auth kullanıcısı profilsiz kaldı; elle temizlenmeli
		s.log.Error("auth user left without profile",
			zap.String("user_id", sess.User.ID),
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return AuthResult{}, err
	}

	// referral kodu kayıt akışını bozmaz
	if in.ReferralCode != "" {
		if err := s.referrals.Apply(ctx, p.ID, in.ReferralCode); err != nil {
			s.log.Warn("referral not applied", zap.String("user_id", p.ID), zap.String("code", in.ReferralCode), zap.Error(err))
		} else if fresh, err := s.profiles.Get(ctx, p.ID); err == nil {
			p = fresh
		}
	}
	s.log.Info("user registered", zap.String("user_id", p.ID))

	if sess.AccessToken == "" {
		return AuthResult{Profile: p}, nil
	}
	return AuthResult{Session: sess, Profile: p}, nil
}

// Login signs in with email and password. Suspended accounts are refused
// after the credentials check.
func (s *AccountService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	sess, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return AuthResult{}, err
	}
	return s.withProfile(ctx, sess)
}

func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if refreshToken == "" {
		return AuthResult{}, apperr.Unauthenticated("")
	}
	sess, err := s.identity.Refresh(ctx, refreshToken)
	if err != nil {
		return AuthResult{}, err
	}
	return s.withProfile(ctx, sess)
}

func (s *AccountService) withProfile(ctx context.Context, sess *supabase.Session) (AuthResult, error) {
	if sess.User == nil {
		return AuthResult{}, apperr.Unauthenticated("")
	}
	p, err := s.profiles.Get(ctx, sess.User.ID)
	if err != nil {
		return AuthResult{}, err
	}
	if !p.IsActive() {
		s.Logout(ctx, sess.AccessToken)
		return AuthResult{}, apperr.Forbidden("Account suspended")
	}
	return AuthResult{Session: sess, Profile: p}, nil
}

// Logout revokes the session remotely. Failures are logged only: the
// cookies are cleared either way.
func (s *AccountService) Logout(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	if err := s.identity.SignOut(ctx, accessToken); err != nil {
		s.log.Debug("remote sign-out failed", zap.Error(err))
	}
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, u models.ProfileUpdate) (models.Profile, error) {
	if u.Username == nil && u.FullName == nil && u.Phone == nil {
		return models.Profile{}, apperr.Validation("Nothing to update")
	}
	return s.profiles.Update(ctx, userID, u)
}

type TelegramLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Linked    bool      `json:"linked"`
}

// TelegramLink returns a t.me deep link that carries a short-lived signed
// token for userID.
func (s *AccountService) TelegramLink(p models.Profile) (TelegramLink, error) {
	if s.bot == nil || !s.bot.IsReady() || s.bot.Username() == "" {
		return TelegramLink{}, apperr.Validation("Telegram bot is not available")
	}
	token, exp, err := s.tokens.IssueLink(p.ID)
	if err != nil {
		return TelegramLink{}, apperr.Internal(err)
	}
	u := url.URL{Scheme: "https", Host: "t.me", Path: "/" + s.bot.Username(), RawQuery: "start=" + url.QueryEscape(token)}
	return TelegramLink{URL: u.String(), ExpiresAt: exp, Linked: p.TelegramChatID != nil}, nil
}

// LinkTelegram stores chatID on the profile a link token was issued for.
func (s *AccountService) LinkTelegram(ctx context.Context, token string, chatID int64) (models.Profile, error) {
	userID, err := s.tokens.ParseLink(token)
	if err != nil {
		return models.Profile{}, apperr.Validation("Link expired or invalid")
	}
	if err := s.profiles.SetTelegramChat(ctx, userID, chatID); err != nil {
		return models.Profile{}, err
	}
	s.log.Info("telegram chat linked", zap.String("user_id", userID))
	return s.profiles.Get(ctx, userID)
}
