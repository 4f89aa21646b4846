package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/prodyhq/prody/internal/models"
)

type MockMeetingRepo struct {
	mock.Mock
}

func (m *MockMeetingRepo) Insert(meeting *models.Meeting) (string, error) {
	args := m.Called(meeting)
	return args.String(0), args.Error(1)
}

func (m *MockMeetingRepo) GetOne(id string) (*models.Meeting, bool, error) {
	args := m.Called(id)
	meeting, _ := args.Get(0).(*models.Meeting)
	return meeting, args.Bool(1), args.Error(2)
}

func (m *MockMeetingRepo) ListForUser(userID string) ([]models.Meeting, error) {
	args := m.Called(userID)
	meetings, _ := args.Get(0).([]models.Meeting)
	return meetings, args.Error(1)
}

func (m *MockMeetingRepo) FindConflict(createdBy string, start, end time.Time) (*models.Meeting, bool, error) {
	args := m.Called(createdBy, start, end)
	meeting, _ := args.Get(0).(*models.Meeting)
	return meeting, args.Bool(1), args.Error(2)
}

func (m *MockMeetingRepo) Update(meeting *models.Meeting) error {
	args := m.Called(meeting)
	return args.Error(0)
}

func (m *MockMeetingRepo) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockMeetingRepo) Participants(meetingID string) ([]models.MeetingParticipant, error) {
	args := m.Called(meetingID)
	participants, _ := args.Get(0).([]models.MeetingParticipant)
	return participants, args.Error(1)
}

func (m *MockMeetingRepo) HasParticipant(meetingID, userID string) (bool, error) {
	args := m.Called(meetingID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingRepo) AddParticipant(meetingID, userID, status string) (*models.MeetingParticipant, error) {
	args := m.Called(meetingID, userID, status)
	participant, _ := args.Get(0).(*models.MeetingParticipant)
	return participant, args.Error(1)
}
