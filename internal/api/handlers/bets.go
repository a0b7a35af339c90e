package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/middleware"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/services"
)

const betsPageSize = 10

type BetHandler struct {
	svc *services.BetService
}

func NewBetHandler(svc *services.BetService) *BetHandler {
	return &BetHandler{svc: svc}
}

type placeBetReq struct {
	GameID    string          `json:"gameId" validate:"required,uuid"`
	Selection string          `json:"selection" validate:"required,max=50"`
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

func (h *BetHandler) Place(w http.ResponseWriter, r *http.Request) error {
	var req placeBetReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	b, err := h.svc.Place(r.Context(), models.PlaceBet{
		UserID:    middleware.Caller(r).Profile.ID,
		GameID:    req.GameID,
		Selection: req.Selection,
		Amount:    req.Amount,
	})
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"bet": b})
	return nil
}

func (h *BetHandler) List(w http.ResponseWriter, r *http.Request) error {
	p, err := paging.Parse(r, betsPageSize)
	if err != nil {
		return err
	}
	var f models.BetFilter
	if f.Status, err = enumQuery(r, "status",
		string(models.BetPending), string(models.BetWon), string(models.BetLost), string(models.BetRefunded)); err != nil {
		return err
	}
	if f.GameID, err = uuidQuery(r, "gameId"); err != nil {
		return err
	}
	if f.From, f.To, err = dateRange(r); err != nil {
		return err
	}
	page, err := h.svc.List(r.Context(), middleware.Caller(r).Profile.ID, f, p)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, page)
	return nil
}

func (h *BetHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	st, err := h.svc.Stats(r.Context(), middleware.Caller(r).Profile.ID)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, st)
	return nil
}

func (h *BetHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "Bet")
	if err != nil {
		return err
	}
	b, err := h.svc.Get(r.Context(), middleware.Caller(r).Profile.ID, id)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, b)
	return nil
}
