package handlers

import (
	"net/http"
	"time"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/auth"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/services"
)

type AuthHandler struct {
	svc    *services.AccountService
	secure bool
}

// secure marks the session cookies Secure (production).
func NewAuthHandler(svc *services.AccountService, secure bool) *AuthHandler {
	return &AuthHandler{svc: svc, secure: secure}
}

type registerReq struct {
	Email        string  `json:"email" validate:"required,email,max=254"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	Username     string  `json:"username" validate:"required,min=3,max=30"`
	FullName     *string `json:"fullName" validate:"omitempty,max=100"`
	Phone        *string `json:"phone" validate:"omitempty,max=20"`
	ReferralCode string  `json:"referralCode" validate:"omitempty,len=8,alphanum"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// sessionBody is the token view returned to clients that do not use cookies.
type sessionBody struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (h *AuthHandler) respond(w http.ResponseWriter, status int, res services.AuthResult) {
	fields := map[string]any{"profile": res.Profile, "session": nil}
	if s := res.Session; s != nil {
		exp := s.Expiry()
		auth.SetCookies(w, s.AccessToken, s.RefreshToken, exp, h.secure)
		fields["session"] = sessionBody{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, ExpiresAt: exp}
	}
	httpx.OK(w, status, fields)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) error {
	var req registerReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	res, err := h.svc.Register(r.Context(), services.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Username:     req.Username,
		FullName:     req.FullName,
		Phone:        req.Phone,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return err
	}
	h.respond(w, http.StatusCreated, res)
	return nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req loginReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.respond(w, http.StatusOK, res)
	return nil
}

// Refresh takes the refresh token from the body, else from the cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) error {
	var req refreshReq
	if err := bindOptional(r, &req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		if c, err := r.Cookie(auth.RefreshCookie); err == nil {
			req.RefreshToken = c.Value
		}
	}
	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if isUnauthenticated(err) {
			auth.ClearCookies(w, h.secure)
		}
		return err
	}
	h.respond(w, http.StatusOK, res)
	return nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	h.svc.Logout(r.Context(), auth.TokenFromRequest(r))
	auth.ClearCookies(w, h.secure)
	httpx.OK(w, http.StatusOK, nil)
	return nil
}

// Session reports the caller's session, or {"session": null}.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) error {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"session": nil})
		return nil
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Session models.Session `json:"session"`
		Profile models.Profile `json:"profile"`
	}{id.Session, id.Profile})
	return nil
}
