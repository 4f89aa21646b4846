package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/prodyhq/prody/internal/models"
)

type TaskFilter struct {
	Status   string
	Priority string
	Limit    int
	Offset   int
}

type TaskRepository interface {
	Insert(task *models.Task, tx *sqlx.Tx) (string, error)
	GetOne(id string) (*models.Task, bool, error)
	ListForUser(userID string, filter *TaskFilter) ([]models.Task, error)
	Update(task *models.Task, tx *sqlx.Tx) error
	Delete(id string) (*models.Task, bool, error)
}

type TaskRepositoryImpl struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (repo *TaskRepositoryImpl) Insert(task *models.Task, tx *sqlx.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO tasks (title, description, status, priority, due_date, blocker, assigned_to, created_by, organization_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	args := []any{
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.Blocker,
		task.AssignedTo,
		task.CreatedBy,
		task.OrganizationID,
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

func (repo *TaskRepositoryImpl) GetOne(id string) (*models.Task, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var task models.Task

	query := `SELECT * FROM tasks WHERE id = $1`

	err := repo.db.GetContext(ctx, &task, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &task, true, err
}

// ListForUser returns tasks the user created or is assigned to, newest
// first. Status/priority filters and pagination are optional.
func (repo *TaskRepositoryImpl) ListForUser(userID string, filter *TaskFilter) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tasks := []models.Task{}

	var sb strings.Builder
	sb.WriteString(`SELECT * FROM tasks WHERE (created_by = $1 OR assigned_to = $1)`)

	args := []any{userID}

	if filter != nil && filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter != nil && filter.Priority != "" {
		args = append(args, filter.Priority)
		fmt.Fprintf(&sb, " AND priority = $%d", len(args))
	}

	sb.WriteString(" ORDER BY created_at DESC")

	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	err := repo.db.SelectContext(ctx, &tasks, sb.String(), args...)
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (repo *TaskRepositoryImpl) Update(task *models.Task, tx *sqlx.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
		    due_date = $5, blocker = $6, assigned_to = $7, updated_at = now()
		WHERE id = $8`

	args := []any{
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.Blocker,
		task.AssignedTo,
		task.ID,
	}

	if tx != nil {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, args...)
	return err
}

func (repo *TaskRepositoryImpl) Delete(id string) (*models.Task, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var task models.Task

	query := `DELETE FROM tasks WHERE id = $1 RETURNING *`

	err := repo.db.GetContext(ctx, &task, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &task, true, nil
}
