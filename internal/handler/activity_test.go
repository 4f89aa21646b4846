package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prodyhq/prody/internal/models"
)

func listActivityRequest(t *testing.T, user *models.User) *http.Request {
	t.Helper()

	req, err := http.NewRequest("GET", "/api/activity", nil)
	require.NoError(t, err)

	return authenticate(req, user)
}

func TestHandleListActivityLogs_MemberSeesOwnTrail(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	env.db.ActivityRepo.On("ListForUser", user.ID, activityLogListLimit).
		Return([]models.ActivityLog{{ID: "log-1", UserID: user.ID}}, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleListActivityLogs(rr, listActivityRequest(t, user))

	require.Equal(t, http.StatusOK, rr.Code)
	env.db.ActivityRepo.AssertNotCalled(t, "ListForOrganization", mock.Anything, mock.Anything)
}

func TestHandleListActivityLogs_AdminSeesOrganizationTrail(t *testing.T) {
	env := newTestEnv(t)
	admin := orgTestUser()
	admin.Role = models.UserRoleAdmin

	env.db.ActivityRepo.On("ListForOrganization", *admin.OrganizationID, activityLogListLimit).
		Return([]models.ActivityLog{}, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleListActivityLogs(rr, listActivityRequest(t, admin))

	require.Equal(t, http.StatusOK, rr.Code)
	env.db.ActivityRepo.AssertNotCalled(t, "ListForUser", mock.Anything, mock.Anything)
}

// An admin who has not joined an organization falls back to their own
// trail rather than erroring.
func TestHandleListActivityLogs_AdminWithoutOrganization(t *testing.T) {
	env := newTestEnv(t)
	admin := orgTestUser()
	admin.Role = models.UserRoleAdmin
	admin.OrganizationID = nil

	env.db.ActivityRepo.On("ListForUser", admin.ID, activityLogListLimit).
		Return([]models.ActivityLog{}, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleListActivityLogs(rr, listActivityRequest(t, admin))

	require.Equal(t, http.StatusOK, rr.Code)
}
