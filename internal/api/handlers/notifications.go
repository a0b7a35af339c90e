package handlers

import (
	"net/http"
	"strconv"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/api/validate"
	"github.com/baharkarakas/betzone-api/internal/middleware"
	"github.com/baharkarakas/betzone-api/internal/services"
)

const notificationsPageSize = 10

type NotificationHandler struct {
	svc *services.NotificationService
}

func NewNotificationHandler(svc *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) error {
	p, err := paging.Parse(r, notificationsPageSize)
	if err != nil {
		return err
	}
	unread := false
	if v := r.URL.Query().Get("unread"); v != "" {
		if unread, err = strconv.ParseBool(v); err != nil {
			return validate.Field("unread", "must be true or false")
		}
	}
	page, err := h.svc.List(r.Context(), middleware.Caller(r).Profile.ID, unread, p)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, page)
	return nil
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "Notification")
	if err != nil {
		return err
	}
	n, err := h.svc.MarkRead(r.Context(), middleware.Caller(r).Profile.ID, id)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, map[string]any{"notification": n})
	return nil
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) error {
	n, err := h.svc.MarkAllRead(r.Context(), middleware.Caller(r).Profile.ID)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, map[string]any{"updated": n})
	return nil
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id", "Notification")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(r.Context(), middleware.Caller(r).Profile.ID, id); err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, nil)
	return nil
}
