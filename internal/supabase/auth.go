package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AuthClient talks to the GoTrue endpoints with the anon key.
type AuthClient struct {
	client *Client
}

type User struct {
	ID           string         `json:"id"`
	Aud          string         `json:"aud"`
	Role         string         `json:"role"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// Expiry returns the absolute expiry, deriving it from ExpiresIn if needed.
func (s *Session) Expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	return time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
}

type SignUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// SignUp registers a user. When email confirmation is on, GoTrue answers
// with the bare user and no session; the returned Session then has only
// User set.
func (a *AuthClient) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	resp, err := a.post(ctx, "auth:signup", "/signup", body, "")
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(resp, &s); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if s.User == nil {
		var u User
		if err := json.Unmarshal(resp, &u); err == nil && u.ID != "" {
			s.User = &u
		}
	}
	return &s, nil
}

func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	return a.session(ctx, "/token?grant_type=password", body)
}

func (a *AuthClient) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{"refresh_token": refreshToken})
	return a.session(ctx, "/token?grant_type=refresh_token", body)
}

// GetUser resolves an access token to its user.
func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	resp, err := a.client.do(ctx, "auth:user", request{
		method: http.MethodGet,
		url:    a.client.authURL + "/user",
		key:    a.client.cfg.AnonKey,
		bearer: accessToken,
	})
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(resp.body, &u); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &u, nil
}

func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	_, err := a.post(ctx, "auth:logout", "/logout", nil, accessToken)
	return err
}

func (a *AuthClient) session(ctx context.Context, path string, body []byte) (*Session, error) {
	resp, err := a.post(ctx, "auth:token", path, body, "")
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(resp, &s); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &s, nil
}

func (a *AuthClient) post(ctx context.Context, op, path string, body []byte, bearer string) ([]byte, error) {
	resp, err := a.client.do(ctx, op, request{
		method: http.MethodPost,
		url:    a.client.authURL + path,
		body:   body,
		key:    a.client.cfg.AnonKey,
		bearer: bearer,
	})
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}
