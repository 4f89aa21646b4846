package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prodyhq/prody/internal/context"
	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/realtime"
	"github.com/prodyhq/prody/internal/request"
	"github.com/prodyhq/prody/internal/response"
	"github.com/prodyhq/prody/internal/validator"
)

// Scheduling checks the creator's own calendar for overlap before
// inserting. Intervals are half-open, so a meeting ending at 10:00 does
// not conflict with one starting at 10:00.
func (h *RouteHandler) HandleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Title       string              `json:"title"`
		Description *string             `json:"description"`
		StartTime   time.Time           `json:"start_time"`
		EndTime     time.Time           `json:"end_time"`
		MeetingLink *string             `json:"meeting_link"`
		IsRecurring bool                `json:"is_recurring"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Title), "Title is required")
	input.Validator.Check(!input.StartTime.IsZero(), "Start time is required")
	input.Validator.Check(!input.EndTime.IsZero(), "End time is required")
	input.Validator.Check(input.StartTime.Before(input.EndTime), "Start time must be before end time")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	conflicting, found, err := h.DB.Meeting().FindConflict(user.ID, input.StartTime, input.EndTime)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if found {
		h.ErrHandler.BadRequest(w, r, fmt.Errorf("meeting conflicts with %q", conflicting.Title))
		return
	}

	meeting := &models.Meeting{
		Title:          input.Title,
		Description:    input.Description,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		MeetingLink:    input.MeetingLink,
		Status:         models.MeetingStatusScheduled,
		IsRecurring:    input.IsRecurring,
		CreatedBy:      user.ID,
		OrganizationID: user.OrganizationID,
	}

	meetingID, err := h.DB.Meeting().Insert(meeting)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	meeting.ID = meetingID

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   models.ActivityLogMeetingCreatedAction,
			Entity:   models.ActivityLogMeetingEntity,
			EntityID: &meetingID,
		}, nil)
		return err
	})

	if user.OrganizationID != nil {
		h.Hub.SendToOrg(*user.OrganizationID, realtime.EventMeetingCreated, meeting)
	}

	err = response.JSONCreatedResponse(w, meeting, "Meeting scheduled successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleListMeetings(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	meetings, err := h.DB.Meeting().ListForUser(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, meetings, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleGetMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")

	meeting, found, err := h.DB.Meeting().GetOne(meetingID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "Meeting not found")
		return
	}

	participants, err := h.DB.Meeting().Participants(meetingID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"meeting":      meeting,
		"participants": participants,
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	meetingID := r.PathValue("id")

	var input struct {
		Title       *string             `json:"title"`
		Description *string             `json:"description"`
		StartTime   *time.Time          `json:"start_time"`
		EndTime     *time.Time          `json:"end_time"`
		MeetingLink *string             `json:"meeting_link"`
		Status      *string             `json:"status"`
		IsRecurring *bool               `json:"is_recurring"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if input.Status != nil {
		input.Validator.Check(validator.In(*input.Status,
			models.MeetingStatusScheduled,
			models.MeetingStatusOngoing,
			models.MeetingStatusCompleted,
			models.MeetingStatusCancelled,
		), "Invalid status")
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	meeting, found, err := h.DB.Meeting().GetOne(meetingID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "Meeting not found")
		return
	}

	if meeting.CreatedBy != user.ID {
		h.ErrHandler.Forbidden(w, r, "Only the meeting creator can update it")
		return
	}

	if input.Title != nil {
		meeting.Title = *input.Title
	}
	if input.Description != nil {
		meeting.Description = input.Description
	}
	if input.StartTime != nil {
		meeting.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		meeting.EndTime = *input.EndTime
	}
	if input.MeetingLink != nil {
		meeting.MeetingLink = input.MeetingLink
	}
	if input.Status != nil {
		meeting.Status = *input.Status
	}
	if input.IsRecurring != nil {
		meeting.IsRecurring = *input.IsRecurring
	}

	if !meeting.StartTime.Before(meeting.EndTime) {
		h.ErrHandler.BadRequest(w, r, fmt.Errorf("start time must be before end time"))
		return
	}

	// Rescheduling re-checks the creator's calendar, same rules as
	// scheduling: half-open intervals, cancelled meetings don't count.
	if input.StartTime != nil || input.EndTime != nil {
		others, err := h.DB.Meeting().ListForUser(user.ID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		for _, other := range others {
			if other.ID == meeting.ID || other.CreatedBy != user.ID || other.Status == models.MeetingStatusCancelled {
				continue
			}
			if models.Overlaps(meeting.StartTime, meeting.EndTime, other.StartTime, other.EndTime) {
				h.ErrHandler.BadRequest(w, r, fmt.Errorf("meeting conflicts with %q", other.Title))
				return
			}
		}
	}

	if err := h.DB.Meeting().Update(meeting); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// Cancelling is an update wire-wise but its own event in the audit
	// trail.
	action := models.ActivityLogMeetingUpdatedAction
	if input.Status != nil && *input.Status == models.MeetingStatusCancelled {
		action = models.ActivityLogMeetingCancelledAction
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   action,
			Entity:   models.ActivityLogMeetingEntity,
			EntityID: &meetingID,
		}, nil)
		return err
	})

	if meeting.OrganizationID != nil {
		h.Hub.SendToOrg(*meeting.OrganizationID, realtime.EventMeetingUpdated, meeting)
	}

	err = response.JSONOkResponse(w, meeting, "Meeting updated successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	meetingID := r.PathValue("id")

	meeting, found, err := h.DB.Meeting().GetOne(meetingID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "Meeting not found")
		return
	}

	if meeting.CreatedBy != user.ID {
		h.ErrHandler.Forbidden(w, r, "Only the meeting creator can delete it")
		return
	}

	if err := h.DB.Meeting().Delete(meetingID); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   models.ActivityLogMeetingDeletedAction,
			Entity:   models.ActivityLogMeetingEntity,
			EntityID: &meetingID,
		}, nil)
		return err
	})

	err = response.JSONOkResponse(w, nil, "Meeting deleted successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleJoinMeeting(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	meetingID := r.PathValue("id")

	meeting, found, err := h.DB.Meeting().GetOne(meetingID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "Meeting not found")
		return
	}

	if meeting.Status == models.MeetingStatusCancelled || meeting.Status == models.MeetingStatusCompleted {
		h.ErrHandler.BadRequest(w, r, fmt.Errorf("meeting is %s and can no longer be joined", meeting.Status))
		return
	}

	alreadyJoined, err := h.DB.Meeting().HasParticipant(meetingID, user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if alreadyJoined {
		h.ErrHandler.Conflict(w, r, "You have already joined this meeting")
		return
	}

	participant, err := h.DB.Meeting().AddParticipant(meetingID, user.ID, "accepted")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   models.ActivityLogMeetingJoinedAction,
			Entity:   models.ActivityLogMeetingEntity,
			EntityID: &meetingID,
		}, nil)
		return err
	})

	// The creator gets a direct push; the org room is not involved.
	h.Hub.SendToUser(meeting.CreatedBy, realtime.EventParticipantJoined, map[string]any{
		"meeting_id":       meetingID,
		"participant_id":   user.ID,
		"participant_name": user.FullName,
	})

	err = response.JSONCreatedResponse(w, participant, "Joined meeting")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
