package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/realtime"
)

func createMeetingRequest(t *testing.T, user *models.User, start, end time.Time) *http.Request {
	t.Helper()

	requestBody, err := json.Marshal(map[string]any{
		"title":      "Sprint planning",
		"start_time": start,
		"end_time":   end,
	})
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/meetings", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return authenticate(req, user)
}

func TestHandleCreateMeeting_RejectsInvertedInterval(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	start := time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	rr := httptest.NewRecorder()
	env.handler.HandleCreateMeeting(rr, createMeetingRequest(t, user, start, end))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	env.db.MeetingRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestHandleCreateMeeting_RejectsZeroLengthInterval(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	rr := httptest.NewRecorder()
	env.handler.HandleCreateMeeting(rr, createMeetingRequest(t, user, at, at))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleCreateMeeting_ConflictNamesExistingMeeting(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	start := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 11, 30, 0, 0, time.UTC)

	env.db.MeetingRepo.On("FindConflict", user.ID, start, end).Return(&models.Meeting{
		Title: "Standup",
	}, true, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleCreateMeeting(rr, createMeetingRequest(t, user, start, end))

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.Contains(t, response["message"], "Standup")

	env.db.MeetingRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestHandleCreateMeeting_Success(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC)

	env.db.MeetingRepo.On("FindConflict", user.ID, start, end).Return(nil, false, nil)
	env.db.MeetingRepo.On("Insert", mock.MatchedBy(func(m *models.Meeting) bool {
		return m.Status == models.MeetingStatusScheduled && m.CreatedBy == user.ID
	})).Return("meeting-1", nil)

	rr := httptest.NewRecorder()
	env.handler.HandleCreateMeeting(rr, createMeetingRequest(t, user, start, end))

	require.Equal(t, http.StatusCreated, rr.Code)

	calls := env.hub.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "org:"+*user.OrganizationID, calls[0].Room)
	require.Equal(t, realtime.EventMeetingCreated, calls[0].Event)

	env.wait()
	recorded := env.recorder.Recorded()
	require.Len(t, recorded, 1)
	require.Equal(t, models.ActivityLogMeetingCreatedAction, recorded[0].Log.Action)
}

func updateMeetingRequest(t *testing.T, user *models.User, meetingID string, body map[string]any) *http.Request {
	t.Helper()

	requestBody, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("PATCH", "/api/meetings/"+meetingID, bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.SetPathValue("id", meetingID)
	req.Header.Set("Content-Type", "application/json")

	return authenticate(req, user)
}

// Moving a meeting into a slot the creator already occupies is rejected
// the same way scheduling one there would be.
func TestHandleUpdateMeeting_RescheduleIntoConflict(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	env.db.MeetingRepo.On("GetOne", "meeting-1").Return(&models.Meeting{
		ID:        "meeting-1",
		Title:     "Sprint planning",
		StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		Status:    models.MeetingStatusScheduled,
		CreatedBy: user.ID,
	}, true, nil)
	env.db.MeetingRepo.On("ListForUser", user.ID).Return([]models.Meeting{
		{
			ID:        "meeting-2",
			Title:     "Standup",
			StartTime: time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
			Status:    models.MeetingStatusScheduled,
			CreatedBy: user.ID,
		},
	}, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleUpdateMeeting(rr, updateMeetingRequest(t, user, "meeting-1", map[string]any{
		"start_time": time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		"end_time":   time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
	}))

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.Contains(t, response["message"], "Standup")

	env.db.MeetingRepo.AssertNotCalled(t, "Update", mock.Anything)
}

// Back-to-back is not a conflict, cancelled meetings don't block the
// slot, and the meeting never conflicts with its own old time.
func TestHandleUpdateMeeting_RescheduleIgnoresCancelledAndAdjacent(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	env.db.MeetingRepo.On("GetOne", "meeting-1").Return(&models.Meeting{
		ID:        "meeting-1",
		Title:     "Sprint planning",
		StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		Status:    models.MeetingStatusScheduled,
		CreatedBy: user.ID,
	}, true, nil)
	env.db.MeetingRepo.On("ListForUser", user.ID).Return([]models.Meeting{
		{
			ID:        "meeting-1",
			Title:     "Sprint planning",
			StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			Status:    models.MeetingStatusScheduled,
			CreatedBy: user.ID,
		},
		{
			ID:        "meeting-2",
			Title:     "Cancelled sync",
			StartTime: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
			Status:    models.MeetingStatusCancelled,
			CreatedBy: user.ID,
		},
		{
			ID:        "meeting-3",
			Title:     "Retro",
			StartTime: time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
			Status:    models.MeetingStatusScheduled,
			CreatedBy: user.ID,
		},
	}, nil)
	env.db.MeetingRepo.On("Update", mock.Anything).Return(nil)

	rr := httptest.NewRecorder()
	env.handler.HandleUpdateMeeting(rr, updateMeetingRequest(t, user, "meeting-1", map[string]any{
		"start_time": time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		"end_time":   time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
	}))

	require.Equal(t, http.StatusOK, rr.Code)
	env.db.MeetingRepo.AssertCalled(t, "Update", mock.Anything)
}

func TestHandleJoinMeeting_CancelledMeeting(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	env.db.MeetingRepo.On("GetOne", "meeting-1").Return(&models.Meeting{
		ID:        "meeting-1",
		Title:     "Cancelled sync",
		Status:    models.MeetingStatusCancelled,
		CreatedBy: "someone-else",
	}, true, nil)

	req, err := http.NewRequest("POST", "/api/meetings/meeting-1/join", nil)
	require.NoError(t, err)
	req.SetPathValue("id", "meeting-1")
	req = authenticate(req, user)

	rr := httptest.NewRecorder()
	env.handler.HandleJoinMeeting(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	env.db.MeetingRepo.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleJoinMeeting_DuplicateParticipant(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	env.db.MeetingRepo.On("GetOne", "meeting-1").Return(&models.Meeting{
		ID:        "meeting-1",
		Title:     "Weekly sync",
		Status:    models.MeetingStatusScheduled,
		CreatedBy: "someone-else",
	}, true, nil)
	env.db.MeetingRepo.On("HasParticipant", "meeting-1", user.ID).Return(true, nil)

	req, err := http.NewRequest("POST", "/api/meetings/meeting-1/join", nil)
	require.NoError(t, err)
	req.SetPathValue("id", "meeting-1")
	req = authenticate(req, user)

	rr := httptest.NewRecorder()
	env.handler.HandleJoinMeeting(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandleJoinMeeting_NotifiesCreator(t *testing.T) {
	env := newTestEnv(t)
	user := orgTestUser()

	env.db.MeetingRepo.On("GetOne", "meeting-1").Return(&models.Meeting{
		ID:        "meeting-1",
		Title:     "Weekly sync",
		Status:    models.MeetingStatusScheduled,
		CreatedBy: "creator-id",
	}, true, nil)
	env.db.MeetingRepo.On("HasParticipant", "meeting-1", user.ID).Return(false, nil)
	env.db.MeetingRepo.On("AddParticipant", "meeting-1", user.ID, "accepted").Return(&models.MeetingParticipant{
		ID:        "participant-1",
		MeetingID: "meeting-1",
		UserID:    user.ID,
	}, nil)

	req, err := http.NewRequest("POST", "/api/meetings/meeting-1/join", nil)
	require.NoError(t, err)
	req.SetPathValue("id", "meeting-1")
	req = authenticate(req, user)

	rr := httptest.NewRecorder()
	env.handler.HandleJoinMeeting(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	calls := env.hub.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "user:creator-id", calls[0].Room)
	require.Equal(t, realtime.EventParticipantJoined, calls[0].Event)
}
