package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
)

const (
	AccessCookie  = "sb-access-token"
	RefreshCookie = "sb-refresh-token"
)

// Identity is a resolved caller: the verified session plus its profile.
type Identity struct {
	Session models.Session `json:"session"`
	Profile models.Profile `json:"profile"`
}

// Resolver turns request credentials into an Identity. It fails closed:
// any verification or lookup error means no session.
type Resolver struct {
	tokens   *TokenManager
	identity repo.Identity
	profiles repo.Profiles
	log      *zap.Logger
}

func NewResolver(tm *TokenManager, id repo.Identity, profiles repo.Profiles, log *zap.Logger) *Resolver {
	return &Resolver{tokens: tm, identity: id, profiles: profiles, log: log}
}

// TokenFromRequest reads the bearer header, then the access cookie.
func TokenFromRequest(r *http.Request) string {
	if ah := r.Header.Get("Authorization"); len(ah) > 7 && strings.EqualFold(ah[:7], "bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	if c, err := r.Cookie(AccessCookie); err == nil {
		return c.Value
	}
	return ""
}

// Resolve verifies token and loads the caller's profile.
func (rv *Resolver) Resolve(ctx context.Context, token string) (*Identity, bool) {
	if token == "" {
		return nil, false
	}

	var sess models.Session
	if rv.tokens != nil && rv.tokens.CanVerifyLocally() {
		claims, err := rv.tokens.VerifyAccess(token)
		if err != nil {
			rv.log.Debug("session: token rejected", zap.Error(err))
			return nil, false
		}
		sess = models.Session{UserID: claims.Subject, Email: claims.Email, AccessToken: token, ExpiresAt: claims.ExpiresAt.Time}
	} else {
		u, err := rv.identity.GetUser(ctx, token)
		if err != nil {
			rv.log.Debug("session: remote verification failed", zap.Error(err))
			return nil, false
		}
		sess = models.Session{UserID: u.ID, Email: u.Email, AccessToken: token}
	}

	p, err := rv.profiles.Get(ctx, sess.UserID)
	if err != nil {
		rv.log.Debug("session: profile lookup failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil, false
	}
	if sess.Email == "" {
		sess.Email = p.Email
	}
	return &Identity{Session: sess, Profile: p}, true
}

type lazy struct {
	once sync.Once
	fn   func() (*Identity, bool)
	id   *Identity
	ok   bool
}

type lazyKey struct{}

// WithLazy installs a per-request resolver that runs fn at most once.
func WithLazy(ctx context.Context, fn func() (*Identity, bool)) context.Context {
	return context.WithValue(ctx, lazyKey{}, &lazy{fn: fn})
}

// FromContext resolves (once) and returns the caller's identity.
func FromContext(ctx context.Context) (*Identity, bool) {
	l, ok := ctx.Value(lazyKey{}).(*lazy)
	if !ok {
		return nil, false
	}
	l.once.Do(func() { l.id, l.ok = l.fn() })
	return l.id, l.ok
}

// WithIdentity stores an already-resolved identity, e.g. in tests.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return WithLazy(ctx, func() (*Identity, bool) { return id, id != nil })
}

// SetCookies writes the session cookies after login or refresh.
func SetCookies(w http.ResponseWriter, access, refresh string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name: AccessCookie, Value: access, Path: "/", Expires: expires,
		HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: RefreshCookie, Value: refresh, Path: "/", MaxAge: 30 * 24 * 3600,
		HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name: name, Value: "", Path: "/", MaxAge: -1,
			HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
		})
	}
}
