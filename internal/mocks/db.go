package mocks

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/prodyhq/prody/internal/repository"
)

// MockDatabase aggregates the repository mocks behind the same interface
// handlers use in production.
type MockDatabase struct {
	UserRepo         *MockUserRepo
	OrganizationRepo *MockOrganizationRepo
	TaskRepo         *MockTaskRepo
	MeetingRepo      *MockMeetingRepo
	NotificationRepo *MockNotificationRepo
	ActivityRepo     *MockActivityRepo
	AnalyticsRepo    *MockAnalyticsRepo

	txDB *sqlx.DB
}

func NewMockDatabase() *MockDatabase {
	return &MockDatabase{
		UserRepo:         new(MockUserRepo),
		OrganizationRepo: new(MockOrganizationRepo),
		TaskRepo:         new(MockTaskRepo),
		MeetingRepo:      new(MockMeetingRepo),
		NotificationRepo: new(MockNotificationRepo),
		ActivityRepo:     new(MockActivityRepo),
		AnalyticsRepo:    new(MockAnalyticsRepo),
		txDB:             newStubTxDB(),
	}
}

func (m *MockDatabase) User() repository.UserRepository                 { return m.UserRepo }
func (m *MockDatabase) Organization() repository.OrganizationRepository { return m.OrganizationRepo }
func (m *MockDatabase) Task() repository.TaskRepository                 { return m.TaskRepo }
func (m *MockDatabase) Meeting() repository.MeetingRepository           { return m.MeetingRepo }
func (m *MockDatabase) Notification() repository.NotificationRepository { return m.NotificationRepo }
func (m *MockDatabase) Activity() repository.ActivityRepository         { return m.ActivityRepo }
func (m *MockDatabase) Analytics() repository.AnalyticsRepository       { return m.AnalyticsRepo }

func (m *MockDatabase) Close() error { return m.txDB.Close() }

// BeginTx hands out transactions from a stub driver. The repository
// mocks ignore the handle, but handlers still exercise their real
// commit/rollback paths.
func (m *MockDatabase) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return m.txDB.BeginTxx(ctx, opts)
}

// Minimal database/sql driver that supports transactions and nothing
// else.
type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) { return &stubConn{}, nil }

type stubConn struct{}

func (*stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("stub driver does not support queries")
}
func (*stubConn) Close() error              { return nil }
func (*stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubDriver sync.Once

func newStubTxDB() *sqlx.DB {
	registerStubDriver.Do(func() {
		sql.Register("stubtx", stubDriver{})
	})

	db, err := sql.Open("stubtx", "")
	if err != nil {
		panic(err)
	}

	return sqlx.NewDb(db, "postgres")
}
