package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/prodyhq/prody/internal/models"
)

type NotificationRepository interface {
	Insert(notification *models.Notification, tx *sqlx.Tx) (string, error)
	ListForUser(userID string) ([]models.Notification, error)
	// GetOwned fetches a notification only when it belongs to userID, so
	// recipients can never read or mutate someone else's notifications.
	GetOwned(id, userID string) (*models.Notification, bool, error)
	MarkAsRead(id string) (*models.Notification, error)
	Delete(id string) error
}

type NotificationRepositoryImpl struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (repo *NotificationRepositoryImpl) Insert(notification *models.Notification, tx *sqlx.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO notifications (user_id, title, message, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	args := []any{
		notification.UserID,
		notification.Title,
		notification.Message,
		notification.Type,
	}

	if tx != nil {
		err := tx.QueryRowContext(ctx, query, args...).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query, args...)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *NotificationRepositoryImpl) ListForUser(userID string) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	notifications := []models.Notification{}

	query := `SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &notifications, query, userID)
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (repo *NotificationRepositoryImpl) GetOwned(id, userID string) (*models.Notification, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var notification models.Notification

	query := `SELECT * FROM notifications WHERE id = $1 AND user_id = $2`

	err := repo.db.GetContext(ctx, &notification, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &notification, true, err
}

func (repo *NotificationRepositoryImpl) MarkAsRead(id string) (*models.Notification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var notification models.Notification

	query := `UPDATE notifications SET read = true WHERE id = $1 RETURNING *`

	err := repo.db.GetContext(ctx, &notification, query, id)
	if err != nil {
		return nil, err
	}

	return &notification, nil
}

func (repo *NotificationRepositoryImpl) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `DELETE FROM notifications WHERE id = $1`

	_, err := repo.db.ExecContext(ctx, query, id)
	return err
}
