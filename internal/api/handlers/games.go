package handlers

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/services"
)

const (
	gamesPageSize        = 12
	upcomingDefaultLimit = 5
	upcomingMaxLimit     = 50
)

var gameStatuses = []string{
	string(models.GameScheduled), string(models.GameLive), string(models.GameClosed),
	string(models.GameSettled), string(models.GameCancelled),
}

type GameHandler struct {
	svc *services.GameService
}

func NewGameHandler(svc *services.GameService) *GameHandler {
	return &GameHandler{svc: svc}
}

func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) error {
	p, err := paging.Parse(r, gamesPageSize)
	if err != nil {
		return err
	}
	f := models.GameFilter{
		Type:   strings.TrimSpace(r.URL.Query().Get("type")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if f.Status, err = enumQuery(r, "status", gameStatuses...); err != nil {
		return err
	}
	page, err := h.svc.List(r.Context(), f, p)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, page)
	return nil
}

func (h *GameHandler) Upcoming(w http.ResponseWriter, r *http.Request) error {
	limit, err := paging.Limit(r, "limit", upcomingDefaultLimit, 1, upcomingMaxLimit)
	if err != nil {
		return err
	}
	games, err := h.svc.Upcoming(r.Context(), limit)
	if err != nil {
		return err
	}
	if games == nil {
		games = []models.Game{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"data": games})
	return nil
}

func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "Game")
	if err != nil {
		return err
	}
	g, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, g)
	return nil
}
