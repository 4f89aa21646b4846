package handler

import (
	"net/http"

	"github.com/prodyhq/prody/internal/context"
	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/repository"
	"github.com/prodyhq/prody/internal/response"
)

func (h *RouteHandler) analyticsFilter(r *http.Request) *repository.AnalyticsFilter {
	user := context.ContextGetAuthenticatedUser(r)
	queryValues := retrieveUrlQueryValues(r)

	return &repository.AnalyticsFilter{
		UserID:  user.ID,
		OrgID:   user.OrganizationID,
		OrgWide: user.Role == models.UserRoleAdmin && user.OrganizationID != nil,
		From:    queryValues.StartDate,
		To:      queryValues.EndDate,
	}
}

// The dashboard answers "what happened lately": headline counts, the
// task status distribution and the five most recent activity entries.
// Admins see their whole organization, members their own rows.
func (h *RouteHandler) HandleAnalyticsDashboard(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	filter := h.analyticsFilter(r)

	taskCount, err := h.DB.Analytics().TaskCount(filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	meetingCount, err := h.DB.Analytics().MeetingCount(filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	statusDistribution, err := h.DB.Analytics().TaskStatusDistribution(filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	var recentActivity []models.ActivityLog
	if filter.OrgWide {
		recentActivity, err = h.DB.Activity().ListForOrganization(*filter.OrgID, 5)
	} else {
		recentActivity, err = h.DB.Activity().ListForUser(user.ID, 5)
	}
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"task_count":               taskCount,
		"meeting_count":            meetingCount,
		"task_status_distribution": statusDistribution,
		"recent_activity":          recentActivity,
	}

	if filter.OrgWide {
		newUsers, err := h.DB.Analytics().NewUserCount(*filter.OrgID, filter.From, filter.To)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
		data["new_user_count"] = newUsers
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAnalyticsTasks(w http.ResponseWriter, r *http.Request) {
	filter := h.analyticsFilter(r)

	priorityBreakdown, err := h.DB.Analytics().TaskPriorityBreakdown(filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	overdue, err := h.DB.Analytics().OverdueTaskCount(filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"priority_breakdown": priorityBreakdown,
		"overdue_count":      overdue,
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAnalyticsMeetings(w http.ResponseWriter, r *http.Request) {
	filter := h.analyticsFilter(r)

	count, totalMinutes, err := h.DB.Analytics().MeetingMinutes(filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	averageMinutes := 0.0
	if count > 0 {
		averageMinutes = totalMinutes / float64(count)
	}

	data := map[string]any{
		"meeting_count":            count,
		"total_hours":              totalMinutes / 60,
		"average_duration_minutes": averageMinutes,
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// Admin-only: how active each member of the organization is, measured in
// recorded audit entries.
func (h *RouteHandler) HandleAnalyticsUserActivity(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	if user.OrganizationID == nil {
		h.ErrHandler.NotFound(w, r, "You do not belong to an organization")
		return
	}

	counts, err := h.DB.Analytics().UserActivityCounts(*user.OrganizationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, counts, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
