package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/bot"
	"github.com/baharkarakas/betzone-api/internal/middleware"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/services"
)

const (
	adminUsersPageSize    = 15
	adminPaymentsPageSize = 15
)

// BotControl is the bot surface exposed to admins.
type BotControl interface {
	Status(ctx context.Context) bot.Status
	Restart(ctx context.Context) (bot.Status, error)
	Send(ctx context.Context, chatID int64, text string) error
	AdminChatID() int64
}

type AdminHandler struct {
	admin *services.AdminService
	games *services.GameService
	bot   BotControl
}

func NewAdminHandler(admin *services.AdminService, games *services.GameService, b BotControl) *AdminHandler {
	return &AdminHandler{admin: admin, games: games, bot: b}
}

func actor(r *http.Request) services.Actor {
	return services.Actor{ID: middleware.Caller(r).Profile.ID, RequestID: httpx.RequestID(r.Context())}
}

type userStatusReq struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

type balanceReq struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Reason string          `json:"reason" validate:"required,min=3,max=200"`
}

type approveReq struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

type rejectReq struct {
	Note string `json:"note" validate:"required,max=500"`
}

type gameOptionReq struct {
	Key   string          `json:"key" validate:"required,max=30"`
	Label string          `json:"label" validate:"required,max=100"`
	Odds  decimal.Decimal `json:"odds" validate:"required,gt=1"`
}

type createGameReq struct {
	Title     string          `json:"title" validate:"required,max=200"`
	GameType  string          `json:"gameType" validate:"required,max=50"`
	Status    string          `json:"status" validate:"omitempty,oneof=scheduled live"`
	StartTime *time.Time      `json:"startTime" validate:"required"`
	EndTime   *time.Time      `json:"endTime"`
	MinBet    decimal.Decimal `json:"minBet" validate:"required,gt=0"`
	MaxBet    decimal.Decimal `json:"maxBet" validate:"required,gt=0"`
	Options   []gameOptionReq `json:"options" validate:"required,min=2,max=20,dive"`
}

type gameStatusReq struct {
	Status string `json:"status" validate:"required,oneof=scheduled live closed cancelled"`
}

type settleReq struct {
	Result string `json:"result" validate:"required,max=30"`
}

type sendNotificationReq struct {
	UserID  string `json:"userId" validate:"omitempty,uuid"`
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
	Type    string `json:"type" validate:"omitempty,oneof=info success warning payment bet system"`
}

type botTestReq struct {
	ChatID  *int64 `json:"chatId"`
	Message string `json:"message" validate:"required,max=4096"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	st, err := h.admin.Stats(r.Context())
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, st)
	return nil
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) error {
	p, err := paging.Parse(r, adminUsersPageSize)
	if err != nil {
		return err
	}
	f := models.ProfileFilter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
	if f.Role, err = enumQuery(r, "role", models.RoleUser, models.RoleAdmin); err != nil {
		return err
	}
	if f.Status, err = enumQuery(r, "status", models.StatusActive, models.StatusSuspended); err != nil {
		return err
	}
	page, err := h.admin.Users(r.Context(), f, p)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, page)
	return nil
}

func (h *AdminHandler) User(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "User")
	if err != nil {
		return err
	}
	d, err := h.admin.User(r.Context(), id)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, d)
	return nil
}

func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "User")
	if err != nil {
		return err
	}
	var req userStatusReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	p, err := h.admin.SetUserStatus(r.Context(), actor(r), id, req.Status)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, map[string]any{"profile": p})
	return nil
}

func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "User")
	if err != nil {
		return err
	}
	var req balanceReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	bal, err := h.admin.AdjustBalance(r.Context(), actor(r), id, req.Amount, req.Reason)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, map[string]any{"newBalance": bal})
	return nil
}

func (h *AdminHandler) Payments(w http.ResponseWriter, r *http.Request) error {
	p, err := paging.Parse(r, adminPaymentsPageSize)
	if err != nil {
		return err
	}
	f, err := paymentFilter(r)
	if err != nil {
		return err
	}
	page, err := h.admin.Payments(r.Context(), f, p)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, page)
	return nil
}

func (h *AdminHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) error {
	var req approveReq
	if err := bindOptional(r, &req); err != nil {
		return err
	}
	return h.processPayment(w, r, true, req.Note)
}

func (h *AdminHandler) RejectPayment(w http.ResponseWriter, r *http.Request) error {
	var req rejectReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	return h.processPayment(w, r, false, req.Note)
}

func (h *AdminHandler) processPayment(w http.ResponseWriter, r *http.Request, approve bool, note string) error {
	id, err := idParam(r, "id", "Payment request")
	if err != nil {
		return err
	}
	pr, err := h.admin.ProcessPayment(r.Context(), actor(r), id, approve, note)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, map[string]any{"request": pr})
	return nil
}

func (h *AdminHandler) CreateGame(w http.ResponseWriter, r *http.Request) error {
	var req createGameReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	g := models.NewGame{
		Title:     req.Title,
		GameType:  req.GameType,
		Status:    models.GameStatus(req.Status),
		StartTime: *req.StartTime,
		EndTime:   req.EndTime,
		MinBet:    req.MinBet,
		MaxBet:    req.MaxBet,
	}
	if g.Status == "" {
		g.Status = models.GameScheduled
	}
	for _, o := range req.Options {
		g.Options = append(g.Options, models.GameOption{Key: o.Key, Label: o.Label, Odds: o.Odds})
	}
	created, err := h.games.Create(r.Context(), actor(r), g)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"game": created})
	return nil
}

func (h *AdminHandler) SetGameStatus(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "Game")
	if err != nil {
		return err
	}
	var req gameStatusReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	g, err := h.games.SetStatus(r.Context(), actor(r), id, models.GameStatus(req.Status))
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, map[string]any{"game": g})
	return nil
}

func (h *AdminHandler) SettleGame(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "Game")
	if err != nil {
		return err
	}
	var req settleReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	settled, err := h.games.Settle(r.Context(), actor(r), id, req.Result)
	if err != nil {
		return err
	}
	if settled == nil {
		settled = []models.SettledBet{}
	}
	httpx.OK(w, http.StatusOK, map[string]any{"settled": settled})
	return nil
}

func (h *AdminHandler) DeleteGame(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "Game")
	if err != nil {
		return err
	}
	if err := h.games.Delete(r.Context(), actor(r), id); err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, nil)
	return nil
}

func (h *AdminHandler) SendNotification(w http.ResponseWriter, r *http.Request) error {
	var req sendNotificationReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	if req.Type == "" {
		req.Type = models.NotifyInfo
	}
	n, err := h.admin.SendNotification(r.Context(), actor(r), models.NewNotification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	})
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"sent": n})
	return nil
}

func (h *AdminHandler) BotStatus(w http.ResponseWriter, r *http.Request) error {
	httpx.WriteJSON(w, http.StatusOK, h.bot.Status(r.Context()))
	return nil
}

func (h *AdminHandler) BotRestart(w http.ResponseWriter, r *http.Request) error {
	st, err := h.bot.Restart(r.Context())
	if errors.Is(err, bot.ErrDisabled) {
		return apperr.Validation("Telegram bot is not configured")
	}
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, map[string]any{"status": st})
	return nil
}

func (h *AdminHandler) BotTest(w http.ResponseWriter, r *http.Request) error {
	var req botTestReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	chatID := h.bot.AdminChatID()
	if req.ChatID != nil {
		chatID = *req.ChatID
	}
	if chatID == 0 {
		return apperr.Validation("chatId is required when no admin chat is configured")
	}
	err := h.bot.Send(r.Context(), chatID, req.Message)
	if errors.Is(err, bot.ErrNotReady) {
		return apperr.Validation("Telegram bot is not connected")
	}
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, map[string]any{"chatId": chatID})
	return nil
}
