package handler

import (
	"net/http"

	"github.com/prodyhq/prody/internal/context"
	"github.com/prodyhq/prody/internal/helper"
	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/realtime"
	"github.com/prodyhq/prody/internal/request"
	"github.com/prodyhq/prody/internal/response"
	"github.com/prodyhq/prody/internal/validator"
)

// Creating an organization promotes the creator to admin. The insert,
// the promotion and the audit entry are one transaction so there can
// never be an organization without an admin.
func (h *RouteHandler) HandleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Name      string              `json:"name"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Name), "Name is required")
	input.Validator.Check(validator.MaxRunes(input.Name, 100), "Name is too long")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	slug := helper.Slugify(input.Name)

	input.Validator.Check(validator.Matches(slug, validator.RgxSlug), "Name must contain at least one letter or digit")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	_, found, err := h.DB.Organization().GetBySlug(slug)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if found {
		h.ErrHandler.Conflict(w, r, "An organization with that name already exists")
		return
	}

	tx, err := h.DB.BeginTx(r.Context(), nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	org := &models.Organization{
		Name: input.Name,
		Slug: slug,
	}

	orgID, err := h.DB.Organization().Insert(org, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	org.ID = orgID

	err = h.DB.User().JoinOrganization(user.ID, orgID, models.UserRoleAdmin, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	_, err = h.Activity.Record(&models.ActivityLog{
		UserID:   user.ID,
		Action:   models.ActivityLogOrgCreatedAction,
		Entity:   models.ActivityLogOrganizationEntity,
		EntityID: &orgID,
	}, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err = tx.Commit(); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Hub.SendToUser(user.ID, realtime.EventOrgJoined, org)

	err = response.JSONCreatedResponse(w, org, "Organization created successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleGetMyOrganization(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	if user.OrganizationID == nil {
		h.ErrHandler.NotFound(w, r, "You do not belong to an organization")
		return
	}

	org, found, err := h.DB.Organization().GetOne(*user.OrganizationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "You do not belong to an organization")
		return
	}

	members, err := h.DB.Organization().Members(org.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"organization": org,
		"members":      members,
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
