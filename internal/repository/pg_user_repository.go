package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

// Compile-time interface verification.
var _ UserRepository = (*PgUserRepository)(nil)

// PgUserRepository is a PostgreSQL implementation of UserRepository.
type PgUserRepository struct {
	db DBTX
}

// NewPgUserRepository creates a new PostgreSQL user repository.
func NewPgUserRepository(db DBTX) *PgUserRepository {
	return &PgUserRepository{db: db}
}

// Create inserts a new user.
func (r *PgUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.NewValidationError("user", "user cannot be nil")
	}
	if err := user.Validate(); err != nil {
		return err
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.NewAlreadyExistsError("user", user.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by its UUID.
func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("user", id.String())
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username.
func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, domain.NewValidationError("username", "username is required")
	}

	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("user", username)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
