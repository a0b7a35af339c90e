package handlers

import (
	"net/http"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/middleware"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/services"
)

type ProfileHandler struct {
	svc *services.AccountService
}

func NewProfileHandler(svc *services.AccountService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type updateProfileReq struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=30"`
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

// Get returns the profile the session resolved for this request.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) error {
	httpx.WriteJSON(w, http.StatusOK, middleware.Caller(r).Profile)
	return nil
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) error {
	var req updateProfileReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	p, err := h.svc.UpdateProfile(r.Context(), middleware.Caller(r).Profile.ID, models.ProfileUpdate{
		Username: req.Username,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, map[string]any{"profile": p})
	return nil
}

func (h *ProfileHandler) TelegramLink(w http.ResponseWriter, r *http.Request) error {
	link, err := h.svc.TelegramLink(middleware.Caller(r).Profile)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, link)
	return nil
}
