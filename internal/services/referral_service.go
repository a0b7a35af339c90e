package services

import (
	"context"
	"crypto/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
)

const (
	ReferralCodeLen = 8
	// no 0/O or 1/I
	referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeAttempts     = 5
)

type ReferralService struct {
	profiles  repo.Profiles
	referrals repo.Referrals
	siteURL   string
	log       *zap.Logger
}

func NewReferralService(r repo.Repositories, siteURL string, log *zap.Logger) *ReferralService {
	return &ReferralService{profiles: r.Profiles, referrals: r.Referrals, siteURL: strings.TrimRight(siteURL, "/"), log: log}
}

type ReferralCode struct {
	ReferralCode string `json:"referralCode"`
	ShareURL     string `json:"shareUrl"`
}

// Code returns the user's referral code, creating and storing one on first
// use.
func (s *ReferralService) Code(ctx context.Context, userID string) (ReferralCode, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return ReferralCode{}, err
	}

	for attempt := 0; p.ReferralCode == nil; attempt++ {
		if attempt == codeAttempts {
			return ReferralCode{}, apperr.Internal(errCodeExhausted)
		}
		code, err := newReferralCode()
		if err != nil {
			return ReferralCode{}, apperr.Internal(err)
		}
		p, err = s.profiles.SetReferralCode(ctx, userID, code)
		if apperr.Is(err, apperr.CategoryConflict) {
			s.log.Debug("referral code collision, retrying", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return ReferralCode{}, err
		}
	}
	return ReferralCode{ReferralCode: *p.ReferralCode, ShareURL: s.shareURL(*p.ReferralCode)}, nil
}

func (s *ReferralService) shareURL(code string) string {
	return s.siteURL + "/register?ref=" + code
}

type ReferralPage struct {
	paging.Page[models.Referral]
	Stats models.ReferralStats `json:"stats"`
}

func (s *ReferralService) List(ctx context.Context, userID string, p paging.Params) (ReferralPage, error) {
	rows, total, err := s.referrals.List(ctx, userID, p.PageSize, p.Offset())
	if err != nil {
		return ReferralPage{}, err
	}
	stats, err := s.referrals.Stats(ctx, userID)
	if err != nil {
		return ReferralPage{}, err
	}
	return ReferralPage{Page: paging.NewPage(rows, total, p), Stats: stats}, nil
}

func newReferralCode() (string, error) {
	b := make([]byte, ReferralCodeLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = referralAlphabet[int(b[i])%len(referralAlphabet)]
	}
	return string(b), nil
}
