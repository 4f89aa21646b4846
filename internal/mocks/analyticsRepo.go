package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/prodyhq/prody/internal/repository"
)

type MockAnalyticsRepo struct {
	mock.Mock
}

func (m *MockAnalyticsRepo) TaskCount(filter *repository.AnalyticsFilter) (int, error) {
	args := m.Called(filter)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepo) MeetingCount(filter *repository.AnalyticsFilter) (int, error) {
	args := m.Called(filter)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepo) NewUserCount(orgID string, from, to *time.Time) (int, error) {
	args := m.Called(orgID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepo) TaskStatusDistribution(filter *repository.AnalyticsFilter) ([]repository.StatusCount, error) {
	args := m.Called(filter)
	stats, _ := args.Get(0).([]repository.StatusCount)
	return stats, args.Error(1)
}

func (m *MockAnalyticsRepo) TaskPriorityBreakdown(filter *repository.AnalyticsFilter) ([]repository.PriorityCount, error) {
	args := m.Called(filter)
	stats, _ := args.Get(0).([]repository.PriorityCount)
	return stats, args.Error(1)
}

func (m *MockAnalyticsRepo) OverdueTaskCount(filter *repository.AnalyticsFilter) (int, error) {
	args := m.Called(filter)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepo) MeetingMinutes(filter *repository.AnalyticsFilter) (int, float64, error) {
	args := m.Called(filter)
	return args.Int(0), args.Get(1).(float64), args.Error(2)
}

func (m *MockAnalyticsRepo) UserActivityCounts(orgID string) ([]repository.UserActivityCount, error) {
	args := m.Called(orgID)
	counts, _ := args.Get(0).([]repository.UserActivityCount)
	return counts, args.Error(1)
}
