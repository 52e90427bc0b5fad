package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/pkg/constants"
	apperrors "github.com/wareflow/backend/pkg/errors"
	"github.com/wareflow/backend/pkg/utils"
)

// UserRepository resolves authenticated actors
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, name, email, role, password_hash, created_date"

// GetByEmail returns the user or a NotFoundError
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE email = ?", userColumns, constants.TableUser)
	return r.scanUser(executor(ctx, r.db).QueryRowContext(ctx, query, email), email)
}

// GetByID returns the user or a NotFoundError
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", userColumns, constants.TableUser)
	return r.scanUser(executor(ctx, r.db).QueryRowContext(ctx, query, id), id)
}

// Insert creates a user (bootstrap/seeding)
func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = utils.GenerateID()
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?)", constants.TableUser, userColumns)
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.CreatedDate)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// CountUsers returns the total number of users
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", constants.TableUser)

	var count int
	if err := executor(ctx, r.db).QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) scanUser(row *sql.Row, key string) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", key, err)
	}
	return &u, nil
}
