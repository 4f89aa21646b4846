package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/prodyhq/prody/internal/models"
)

type OrganizationRepository interface {
	Insert(org *models.Organization, tx *sqlx.Tx) (string, error)
	GetOne(id string) (*models.Organization, bool, error)
	GetBySlug(slug string) (*models.Organization, bool, error)
	Members(orgID string) ([]models.OrganizationMember, error)
}

type OrganizationRepositoryImpl struct {
	db *sqlx.DB
}

func NewOrganizationRepository(db *sqlx.DB) OrganizationRepository {
	return &OrganizationRepositoryImpl{db: db}
}

func (repo *OrganizationRepositoryImpl) Insert(org *models.Organization, tx *sqlx.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO organizations (name, slug)
		VALUES ($1, $2)
		RETURNING id`

	if tx != nil {
		err := tx.QueryRowContext(ctx, query, org.Name, org.Slug).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query, org.Name, org.Slug)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *OrganizationRepositoryImpl) GetOne(id string) (*models.Organization, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var org models.Organization

	query := `SELECT * FROM organizations WHERE id = $1`

	err := repo.db.GetContext(ctx, &org, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &org, true, err
}

func (repo *OrganizationRepositoryImpl) GetBySlug(slug string) (*models.Organization, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var org models.Organization

	query := `SELECT * FROM organizations WHERE slug = $1`

	err := repo.db.GetContext(ctx, &org, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &org, true, err
}

func (repo *OrganizationRepositoryImpl) Members(orgID string) ([]models.OrganizationMember, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	members := []models.OrganizationMember{}

	query := `
		SELECT id, full_name, email, role
		FROM users
		WHERE organization_id = $1
		ORDER BY created_at ASC`

	err := repo.db.SelectContext(ctx, &members, query, orgID)
	if err != nil {
		return nil, err
	}

	return members, nil
}
