package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/prodyhq/prody/internal/models"
)

// ActivityRepository is the durable side of the audit trail. Inserts
// resolve the actor's name and organization in the same statement so the
// caller can fan the entry out to the right room without a second query.
type ActivityRepository interface {
	Insert(log *models.ActivityLog, tx *sqlx.Tx) (*models.ActivityLog, error)
	ListForUser(userID string, limit int) ([]models.ActivityLog, error)
	ListForOrganization(orgID string, limit int) ([]models.ActivityLog, error)
}

type ActivityRepositoryImpl struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

const insertActivityQuery = `
	WITH inserted AS (
		INSERT INTO activity_logs (user_id, action, entity, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	)
	SELECT i.id, i.user_id, i.action, i.entity, i.entity_id, i.details, i.created_at,
	       u.full_name AS actor_name, u.organization_id
	FROM inserted i
	JOIN users u ON u.id = i.user_id`

func (repo *ActivityRepositoryImpl) Insert(log *models.ActivityLog, tx *sqlx.Tx) (*models.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var saved models.ActivityLog

	args := []any{log.UserID, log.Action, log.Entity, log.EntityID, log.Details}

	if tx != nil {
		err := tx.GetContext(ctx, &saved, insertActivityQuery, args...)
		if err != nil {
			return nil, err
		}
	} else {
		err := repo.db.GetContext(ctx, &saved, insertActivityQuery, args...)
		if err != nil {
			return nil, err
		}
	}

	return &saved, nil
}

func (repo *ActivityRepositoryImpl) ListForUser(userID string, limit int) ([]models.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	logs := []models.ActivityLog{}

	query := `
		SELECT l.id, l.user_id, l.action, l.entity, l.entity_id, l.details, l.created_at,
		       u.full_name AS actor_name, u.organization_id
		FROM activity_logs l
		JOIN users u ON u.id = l.user_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2`

	err := repo.db.SelectContext(ctx, &logs, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return logs, nil
}

func (repo *ActivityRepositoryImpl) ListForOrganization(orgID string, limit int) ([]models.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	logs := []models.ActivityLog{}

	query := `
		SELECT l.id, l.user_id, l.action, l.entity, l.entity_id, l.details, l.created_at,
		       u.full_name AS actor_name, u.organization_id
		FROM activity_logs l
		JOIN users u ON u.id = l.user_id
		WHERE u.organization_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2`

	err := repo.db.SelectContext(ctx, &logs, query, orgID, limit)
	if err != nil {
		return nil, err
	}

	return logs, nil
}
