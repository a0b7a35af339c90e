package handlers

import (
	"net/http"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/middleware"
	"github.com/baharkarakas/betzone-api/internal/services"
)

const referralsPageSize = 10

type ReferralHandler struct {
	svc *services.ReferralService
}

func NewReferralHandler(svc *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{svc: svc}
}

func (h *ReferralHandler) Code(w http.ResponseWriter, r *http.Request) error {
	c, err := h.svc.Code(r.Context(), middleware.Caller(r).Profile.ID)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, c)
	return nil
}

func (h *ReferralHandler) List(w http.ResponseWriter, r *http.Request) error {
	p, err := paging.Parse(r, referralsPageSize)
	if err != nil {
		return err
	}
	page, err := h.svc.List(r.Context(), middleware.Caller(r).Profile.ID, p)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, page)
	return nil
}
