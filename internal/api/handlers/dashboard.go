package handlers

import (
	"net/http"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/middleware"
	"github.com/baharkarakas/betzone-api/internal/services"
)

type DashboardHandler struct {
	svc *services.DashboardService
}

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) error {
	d, err := h.svc.Get(r.Context(), middleware.Caller(r).Profile)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, d)
	return nil
}
