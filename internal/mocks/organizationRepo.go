package mocks

import (
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/prodyhq/prody/internal/models"
)

type MockOrganizationRepo struct {
	mock.Mock
}

func (m *MockOrganizationRepo) Insert(org *models.Organization, tx *sqlx.Tx) (string, error) {
	args := m.Called(org, tx)
	return args.String(0), args.Error(1)
}

func (m *MockOrganizationRepo) GetOne(id string) (*models.Organization, bool, error) {
	args := m.Called(id)
	org, _ := args.Get(0).(*models.Organization)
	return org, args.Bool(1), args.Error(2)
}

func (m *MockOrganizationRepo) GetBySlug(slug string) (*models.Organization, bool, error) {
	args := m.Called(slug)
	org, _ := args.Get(0).(*models.Organization)
	return org, args.Bool(1), args.Error(2)
}

func (m *MockOrganizationRepo) Members(orgID string) ([]models.OrganizationMember, error) {
	args := m.Called(orgID)
	members, _ := args.Get(0).([]models.OrganizationMember)
	return members, args.Error(1)
}
