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

func orgTestUser() *models.User {
	orgID := "7f3c2d1e-0a9b-4c8d-b7e6-5f4a3b2c1d0e"
	return &models.User{
		ID:             "11111111-2222-3333-4444-555555555555",
		FirstName:      "Ada",
		FullName:       "Ada Lovelace",
		Email:          "ada@example.com",
		Role:           models.UserRoleMember,
		OrganizationID: &orgID,
	}
}

func createTaskRequest(t *testing.T, user *models.User, body map[string]any) *http.Request {
	t.Helper()

	requestBody, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/tasks", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return authenticate(req, user)
}

func TestHandleCreateTask_WithAssignee_CreatesExactlyOneNotification(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()
	assigneeID := "99999999-8888-7777-6666-555555555555"

	env.db.TaskRepo.On("Insert", mock.Anything, mock.Anything).Return("task-1", nil)
	env.db.NotificationRepo.On("Insert", mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == assigneeID && n.Type == models.NotificationTypeTaskAssignment
	}), mock.Anything).Return("notif-1", nil).Once()

	rr := httptest.NewRecorder()
	env.handler.HandleCreateTask(rr, createTaskRequest(t, user, map[string]any{
		"title":       "Ship the report",
		"priority":    "high",
		"assigned_to": assigneeID,
	}))

	require.Equal(t, http.StatusCreated, rr.Code)
	env.db.NotificationRepo.AssertExpectations(t)

	// The notification insert must share the task's transaction.
	notifCall := env.db.NotificationRepo.Calls[0]
	require.NotNil(t, notifCall.Arguments.Get(1), "notification insert must run inside the transaction")

	recorded := env.recorder.Recorded()
	require.Len(t, recorded, 1)
	require.Equal(t, models.ActivityLogTaskCreatedAction, recorded[0].Log.Action)
	require.True(t, recorded[0].InTx, "audit entry must share the transaction")

	// After commit: one push to the assignee, one to the org room.
	calls := env.hub.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "user:"+assigneeID, calls[0].Room)
	require.Equal(t, realtime.EventNewNotification, calls[0].Event)
	require.Equal(t, "org:"+*user.OrganizationID, calls[1].Room)
	require.Equal(t, realtime.EventTaskCreated, calls[1].Event)
}

func TestHandleCreateTask_WithoutAssignee_NoNotification(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	env.db.TaskRepo.On("Insert", mock.Anything, mock.Anything).Return("task-1", nil)

	rr := httptest.NewRecorder()
	env.handler.HandleCreateTask(rr, createTaskRequest(t, user, map[string]any{
		"title": "Solo chore",
	}))

	require.Equal(t, http.StatusCreated, rr.Code)
	env.db.NotificationRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)

	// Only the org room hears about it.
	calls := env.hub.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, realtime.EventTaskCreated, calls[0].Event)
}

// Assigning a task to yourself is still an assignment: the notification
// row and the push happen exactly as they would for anyone else.
func TestHandleCreateTask_SelfAssignment_StillNotifies(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	env.db.TaskRepo.On("Insert", mock.Anything, mock.Anything).Return("task-1", nil)
	env.db.NotificationRepo.On("Insert", mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == user.ID && n.Type == models.NotificationTypeTaskAssignment
	}), mock.Anything).Return("notif-1", nil).Once()

	rr := httptest.NewRecorder()
	env.handler.HandleCreateTask(rr, createTaskRequest(t, user, map[string]any{
		"title":       "My own task",
		"assigned_to": user.ID,
	}))

	require.Equal(t, http.StatusCreated, rr.Code)
	env.db.NotificationRepo.AssertExpectations(t)

	calls := env.hub.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "user:"+user.ID, calls[0].Room)
	require.Equal(t, realtime.EventNewNotification, calls[0].Event)
}

func TestHandleUpdateTask_Reassignment_NotifiesNewAssignee(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	oldAssignee := "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	newAssignee := "99999999-8888-7777-6666-555555555555"

	env.db.TaskRepo.On("GetOne", "task-1").Return(&models.Task{
		ID:         "task-1",
		Title:      "Ship the report",
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityMedium,
		CreatedBy:  user.ID,
		AssignedTo: &oldAssignee,
	}, true, nil)
	env.db.TaskRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	env.db.NotificationRepo.On("Insert", mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == newAssignee && n.Type == models.NotificationTypeTaskReassignment
	}), mock.Anything).Return("notif-2", nil).Once()

	requestBody, err := json.Marshal(map[string]any{
		"task_id":     "task-1",
		"assigned_to": newAssignee,
	})
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/tasks/update", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req = authenticate(req, user)

	rr := httptest.NewRecorder()
	env.handler.HandleUpdateTask(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env.db.NotificationRepo.AssertExpectations(t)

	// Reassignment pushes to the new assignee only, never the org room.
	calls := env.hub.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "user:"+newAssignee, calls[0].Room)
	require.Equal(t, realtime.EventNewNotification, calls[0].Event)
}

// Any edit reaches the current assignee, even when no notification row
// was written.
func TestHandleUpdateTask_StatusChange_PushesToCurrentAssignee(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	assignee := "99999999-8888-7777-6666-555555555555"

	env.db.TaskRepo.On("GetOne", "task-1").Return(&models.Task{
		ID:         "task-1",
		Title:      "Ship the report",
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityMedium,
		CreatedBy:  user.ID,
		AssignedTo: &assignee,
	}, true, nil)
	env.db.TaskRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	requestBody, err := json.Marshal(map[string]any{
		"task_id": "task-1",
		"status":  models.TaskStatusCompleted,
	})
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/tasks/update", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req = authenticate(req, user)

	rr := httptest.NewRecorder()
	env.handler.HandleUpdateTask(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env.db.NotificationRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)

	calls := env.hub.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "user:"+assignee, calls[0].Room)
	require.Equal(t, realtime.EventNewNotification, calls[0].Event)
}

func TestHandleGetTask_OtherUsersTaskLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	env.db.TaskRepo.On("GetOne", "task-9").Return(&models.Task{
		ID:        "task-9",
		Title:     "Someone else's work",
		CreatedBy: "another-user",
	}, true, nil)

	req, err := http.NewRequest("GET", "/api/tasks/task-9", nil)
	require.NoError(t, err)
	req.SetPathValue("id", "task-9")
	req = authenticate(req, user)

	rr := httptest.NewRecorder()
	env.handler.HandleGetTask(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}
