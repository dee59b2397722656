package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
)

// UserRepository provides persistence for the user directory.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE LOWER(email) = LOWER($1)`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail checks whether an email is already registered.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, email); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("user exists by email: %w", err)
	}
	return true, nil
}

// ExistsByName checks whether a display name is already taken.
func (r *UserRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT 1 FROM users WHERE name = $1 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, name); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("user exists by name: %w", err)
	}
	return true, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
VALUES (:id, :name, :email, :password_hash, :role, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ListCounselors returns all counselors, ordered by name, for the booking UI.
func (r *UserRepository) ListCounselors(ctx context.Context) ([]models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE role = $1 ORDER BY name ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, models.RoleCounselor); err != nil {
		return nil, fmt.Errorf("list counselors: %w", err)
	}
	return users, nil
}
