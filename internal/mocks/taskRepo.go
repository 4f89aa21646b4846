package mocks

import (
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/repository"
)

type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) Insert(task *models.Task, tx *sqlx.Tx) (string, error) {
	args := m.Called(task, tx)
	return args.String(0), args.Error(1)
}

func (m *MockTaskRepo) GetOne(id string) (*models.Task, bool, error) {
	args := m.Called(id)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Bool(1), args.Error(2)
}

func (m *MockTaskRepo) ListForUser(userID string, filter *repository.TaskFilter) ([]models.Task, error) {
	args := m.Called(userID, filter)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepo) Update(task *models.Task, tx *sqlx.Tx) error {
	args := m.Called(task, tx)
	return args.Error(0)
}

func (m *MockTaskRepo) Delete(id string) (*models.Task, bool, error) {
	args := m.Called(id)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Bool(1), args.Error(2)
}
