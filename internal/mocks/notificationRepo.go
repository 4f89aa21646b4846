package mocks

import (
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/prodyhq/prody/internal/models"
)

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Insert(notification *models.Notification, tx *sqlx.Tx) (string, error) {
	args := m.Called(notification, tx)
	return args.String(0), args.Error(1)
}

func (m *MockNotificationRepo) ListForUser(userID string) ([]models.Notification, error) {
	args := m.Called(userID)
	notifications, _ := args.Get(0).([]models.Notification)
	return notifications, args.Error(1)
}

func (m *MockNotificationRepo) GetOwned(id, userID string) (*models.Notification, bool, error) {
	args := m.Called(id, userID)
	notification, _ := args.Get(0).(*models.Notification)
	return notification, args.Bool(1), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(id string) (*models.Notification, error) {
	args := m.Called(id)
	notification, _ := args.Get(0).(*models.Notification)
	return notification, args.Error(1)
}

func (m *MockNotificationRepo) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
