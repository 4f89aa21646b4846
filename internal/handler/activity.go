package handler

import (
	"net/http"

	"github.com/prodyhq/prody/internal/context"
	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/response"
)

const activityLogListLimit = 100

// Admins see recent activity across their organization; members only
// their own trail. Both are capped at the same limit.
func (h *RouteHandler) HandleListActivityLogs(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var (
		logs []models.ActivityLog
		err  error
	)

	if user.Role == models.UserRoleAdmin && user.OrganizationID != nil {
		logs, err = h.DB.Activity().ListForOrganization(*user.OrganizationID, activityLogListLimit)
	} else {
		logs, err = h.DB.Activity().ListForUser(user.ID, activityLogListLimit)
	}

	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, logs, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
