package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/prodyhq/prody/assets"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

const defaultTimeout = 3 * time.Second

// Database is the aggregate of all repositories plus the transactional
// unit of work. Handlers and services receive this interface, never a
// concrete connection, so every repository can be mocked in tests.
type Database interface {
	User() UserRepository
	Organization() OrganizationRepository
	Task() TaskRepository
	Meeting() MeetingRepository
	Notification() NotificationRepository
	Activity() ActivityRepository
	Analytics() AnalyticsRepository

	Close() error
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type DatabaseImpl struct {
	db               *sqlx.DB
	userRepo         UserRepository
	organizationRepo OrganizationRepository
	taskRepo         TaskRepository
	meetingRepo      MeetingRepository
	notificationRepo NotificationRepository
	activityRepo     ActivityRepository
	analyticsRepo    AnalyticsRepository

	mu sync.Mutex
}

// New initializes a database connection and runs migrations if enabled
func New(dsn string, automigrate bool) (Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if automigrate {
		iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
		if err != nil {
			return nil, err
		}

		migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
		if err != nil {
			return nil, err
		}

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
	}

	return &DatabaseImpl{db: db}, nil
}

func (d *DatabaseImpl) Close() error {
	return d.db.Close()
}

func (d *DatabaseImpl) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return d.db.BeginTxx(ctx, opts)
}

func (d *DatabaseImpl) User() UserRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userRepo == nil {
		d.userRepo = NewUserRepository(d.db)
	}
	return d.userRepo
}

func (d *DatabaseImpl) Organization() OrganizationRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.organizationRepo == nil {
		d.organizationRepo = NewOrganizationRepository(d.db)
	}
	return d.organizationRepo
}

func (d *DatabaseImpl) Task() TaskRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.taskRepo == nil {
		d.taskRepo = NewTaskRepository(d.db)
	}
	return d.taskRepo
}

func (d *DatabaseImpl) Meeting() MeetingRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.meetingRepo == nil {
		d.meetingRepo = NewMeetingRepository(d.db)
	}
	return d.meetingRepo
}

func (d *DatabaseImpl) Notification() NotificationRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.notificationRepo == nil {
		d.notificationRepo = NewNotificationRepository(d.db)
	}
	return d.notificationRepo
}

func (d *DatabaseImpl) Activity() ActivityRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.activityRepo == nil {
		d.activityRepo = NewActivityRepository(d.db)
	}
	return d.activityRepo
}

func (d *DatabaseImpl) Analytics() AnalyticsRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.analyticsRepo == nil {
		d.analyticsRepo = NewAnalyticsRepository(d.db)
	}
	return d.analyticsRepo
}
