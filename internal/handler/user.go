package handler

import (
	"fmt"
	"net/http"

	"github.com/prodyhq/prody/internal/context"
	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/response"
)

const maxAvatarSize = 5 << 20 // 5 MB

func (h *RouteHandler) HandleChangeAvatar(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		h.ErrHandler.BadRequest(w, r, fmt.Errorf("could not parse upload: %w", err))
		return
	}

	avatar, header, err := r.FormFile("avatar")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, fmt.Errorf("avatar file is required"))
		return
	}
	defer avatar.Close()

	if header.Size > maxAvatarSize {
		h.ErrHandler.BadRequest(w, r, fmt.Errorf("avatar must be smaller than 5MB"))
		return
	}

	avatarURL, err := h.Uploader.Upload(r.Context(), avatar, "avatars")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err := h.DB.User().ChangeAvatar(user.ID, avatarURL); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   models.ActivityLogAvatarUpdatedAction,
			Entity:   models.ActivityLogUserEntity,
			EntityID: &user.ID,
		}, nil)
		return err
	})

	data := map[string]any{
		"avatar_url": avatarURL,
	}

	err = response.JSONOkResponse(w, data, "Avatar updated successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
