package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prodyhq/prody/internal/models"
)

type UserRepository interface {
	Insert(user *models.User, tx *sqlx.Tx) (string, error)
	GetOne(id string) (*models.User, bool, error)
	GetByEmail(email string) (*models.User, bool, error)
	Verify(id string) error
	UpdatePassword(id, hashedPassword string) error
	UpsertGoogleUser(user *models.User) (*models.User, error)
	JoinOrganization(userID, orgID, role string, tx *sqlx.Tx) error
	ChangeAvatar(id, avatarURL string) error
}

type UserRepositoryImpl struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (repo *UserRepositoryImpl) Insert(user *models.User, tx *sqlx.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO users (first_name, last_name, full_name, email, hashed_password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if tx != nil {
		err := tx.QueryRowContext(ctx, query,
			user.FirstName,
			user.LastName,
			user.FullName,
			user.Email,
			user.HashedPassword,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			user.FirstName,
			user.LastName,
			user.FullName,
			user.Email,
			user.HashedPassword,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *UserRepositoryImpl) GetOne(id string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE id = $1`

	err := repo.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) GetByEmail(email string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE email = $1`

	err := repo.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) Verify(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET verified_at = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (repo *UserRepositoryImpl) UpdatePassword(id, hashedPassword string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET hashed_password = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, hashedPassword, id)
	return err
}

// UpsertGoogleUser provisions or refreshes an account from a verified
// Google identity. A created account gets an empty password hash, which
// permanently marks it as federated-login only.
func (repo *UserRepositoryImpl) UpsertGoogleUser(user *models.User) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var saved models.User

	query := `
		INSERT INTO users (first_name, last_name, full_name, email, avatar_url, hashed_password, verified_at)
		VALUES ($1, $2, $3, $4, $5, '', now())
		ON CONFLICT (email) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    full_name = EXCLUDED.full_name,
		    avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
		    verified_at = COALESCE(users.verified_at, now())
		RETURNING *`

	err := repo.db.GetContext(ctx, &saved, query,
		user.FirstName,
		user.LastName,
		user.FullName,
		user.Email,
		user.AvatarURL,
	)
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

func (repo *UserRepositoryImpl) JoinOrganization(userID, orgID, role string, tx *sqlx.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET organization_id = $1, role = $2 WHERE id = $3`

	if tx != nil {
		_, err := tx.ExecContext(ctx, query, orgID, role, userID)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, orgID, role, userID)
	return err
}

func (repo *UserRepositoryImpl) ChangeAvatar(id, avatarURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET avatar_url = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, avatarURL, id)
	return err
}
