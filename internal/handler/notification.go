package handler

import (
	"net/http"

	"github.com/prodyhq/prody/internal/context"
	"github.com/prodyhq/prody/internal/response"
)

func (h *RouteHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	notifications, err := h.DB.Notification().ListForUser(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, notifications, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// Recipients can only touch their own notifications; anything else looks
// like a missing row.
func (h *RouteHandler) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	notificationID := r.PathValue("id")

	_, found, err := h.DB.Notification().GetOwned(notificationID, user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "Notification not found")
		return
	}

	notification, err := h.DB.Notification().MarkAsRead(notificationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, notification, "Notification marked as read", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	notificationID := r.PathValue("id")

	_, found, err := h.DB.Notification().GetOwned(notificationID, user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "Notification not found")
		return
	}

	if err := h.DB.Notification().Delete(notificationID); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, nil, "Notification deleted", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
