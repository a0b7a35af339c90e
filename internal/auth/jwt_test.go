package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signAccess(t *testing.T, secret, sub, aud string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Email: "a@b.co",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Audience:  jwt.ClaimStrings{aud},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifyAccess(t *testing.T) {
	tm := NewTokenManager("jwt-secret", "link-secret", 15*time.Minute)

	claims, err := tm.VerifyAccess(signAccess(t, "jwt-secret", "u1", "authenticated", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "a@b.co", claims.Email)

	_, err = tm.VerifyAccess(signAccess(t, "other", "u1", "authenticated", time.Now().Add(time.Hour)))
	assert.Error(t, err, "wrong secret")

	_, err = tm.VerifyAccess(signAccess(t, "jwt-secret", "u1", "anon", time.Now().Add(time.Hour)))
	assert.Error(t, err, "wrong audience")

	_, err = tm.VerifyAccess(signAccess(t, "jwt-secret", "u1", "authenticated", time.Now().Add(-time.Minute)))
	assert.Error(t, err, "expired")
}

func TestVerifyAccessWithoutSecret(t *testing.T) {
	tm := NewTokenManager("", "link", time.Minute)
	assert.False(t, tm.CanVerifyLocally())
	_, err := tm.VerifyAccess("x")
	assert.Error(t, err)
}

func TestLinkTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("", "link-secret", 15*time.Minute)

	tok, exp, err := tm.IssueLink("u42")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, time.Minute)

	uid, err := tm.ParseLink(tok)
	require.NoError(t, err)
	assert.Equal(t, "u42", uid)

	tm.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = tm.ParseLink(tok)
	assert.Error(t, err)
}

func TestParseLinkRejectsAccessTokens(t *testing.T) {
	tm := NewTokenManager("same", "same", time.Minute)
	_, err := tm.ParseLink(signAccess(t, "same", "u1", "authenticated", time.Now().Add(time.Hour)))
	assert.Error(t, err)
}
