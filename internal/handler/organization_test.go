package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/realtime"
)

func createOrgRequest(t *testing.T, user *models.User, name string) *http.Request {
	t.Helper()

	requestBody, err := json.Marshal(map[string]string{"name": name})
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/organizations", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return authenticate(req, user)
}

func soloTestUser() *models.User {
	return &models.User{
		ID:        "11111111-2222-3333-4444-555555555555",
		FirstName: "Ada",
		FullName:  "Ada Lovelace",
		Email:     "ada@example.com",
		Role:      models.UserRoleMember,
	}
}

func TestHandleCreateOrganization_PromotesCreatorToAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := soloTestUser()

	env.db.OrganizationRepo.On("GetBySlug", "my-company").Return(nil, false, nil)
	env.db.OrganizationRepo.On("Insert", mock.MatchedBy(func(o *models.Organization) bool {
		return o.Name == "My Company" && o.Slug == "my-company"
	}), mock.Anything).Return("org-1", nil)
	env.db.UserRepo.On("JoinOrganization", user.ID, "org-1", models.UserRoleAdmin, mock.Anything).Return(nil)

	rr := httptest.NewRecorder()
	env.handler.HandleCreateOrganization(rr, createOrgRequest(t, user, "My Company"))

	require.Equal(t, http.StatusCreated, rr.Code)
	env.db.UserRepo.AssertExpectations(t)

	recorded := env.recorder.Recorded()
	require.Len(t, recorded, 1)
	require.Equal(t, models.ActivityLogOrgCreatedAction, recorded[0].Log.Action)
	require.True(t, recorded[0].InTx, "audit entry must share the transaction")

	calls := env.hub.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "user:"+user.ID, calls[0].Room)
	require.Equal(t, realtime.EventOrgJoined, calls[0].Event)
}

// Two names that collapse to the same slug are the same organization.
func TestHandleCreateOrganization_DuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	user := soloTestUser()

	env.db.OrganizationRepo.On("GetBySlug", "my-company").Return(&models.Organization{
		ID:   "org-1",
		Slug: "my-company",
	}, true, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleCreateOrganization(rr, createOrgRequest(t, user, "My  Company!"))

	require.Equal(t, http.StatusConflict, rr.Code)
	env.db.OrganizationRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestHandleCreateOrganization_NameWithNoSlugContent(t *testing.T) {
	env := newTestEnv(t)
	user := soloTestUser()

	rr := httptest.NewRecorder()
	env.handler.HandleCreateOrganization(rr, createOrgRequest(t, user, "!!!"))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
