package mocks

import (
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/prodyhq/prody/internal/models"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Insert(user *models.User, tx *sqlx.Tx) (string, error) {
	args := m.Called(user, tx)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepo) GetOne(id string) (*models.User, bool, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetByEmail(email string) (*models.User, bool, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) Verify(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepo) UpdatePassword(id, hashedPassword string) error {
	args := m.Called(id, hashedPassword)
	return args.Error(0)
}

func (m *MockUserRepo) UpsertGoogleUser(user *models.User) (*models.User, error) {
	args := m.Called(user)
	saved, _ := args.Get(0).(*models.User)
	return saved, args.Error(1)
}

func (m *MockUserRepo) JoinOrganization(userID, orgID, role string, tx *sqlx.Tx) error {
	args := m.Called(userID, orgID, role, tx)
	return args.Error(0)
}

func (m *MockUserRepo) ChangeAvatar(id, avatarURL string) error {
	args := m.Called(id, avatarURL)
	return args.Error(0)
}
