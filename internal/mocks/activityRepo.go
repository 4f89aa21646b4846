package mocks

import (
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/prodyhq/prody/internal/models"
)

type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Insert(log *models.ActivityLog, tx *sqlx.Tx) (*models.ActivityLog, error) {
	args := m.Called(log, tx)
	saved, _ := args.Get(0).(*models.ActivityLog)
	return saved, args.Error(1)
}

func (m *MockActivityRepo) ListForUser(userID string, limit int) ([]models.ActivityLog, error) {
	args := m.Called(userID, limit)
	logs, _ := args.Get(0).([]models.ActivityLog)
	return logs, args.Error(1)
}

func (m *MockActivityRepo) ListForOrganization(orgID string, limit int) ([]models.ActivityLog, error) {
	args := m.Called(orgID, limit)
	logs, _ := args.Get(0).([]models.ActivityLog)
	return logs, args.Error(1)
}
