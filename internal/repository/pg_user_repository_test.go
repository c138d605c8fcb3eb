package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

func newTestUser() *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		Username:     "reader42",
		Email:        "reader42@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAt:    time.Now().UTC(),
	}
}

func userRows(users ...*domain.User) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"})
	for _, u := range users {
		rows.AddRow(u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	}
	return rows
}

func TestPgUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgUserRepository(mock)
		user := newTestUser()

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Username, user.Email, user.PasswordHash, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.Create(ctx, user)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns validation error for missing username", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgUserRepository(mock)
		user := newTestUser()
		user.Username = ""

		err = repo.Create(ctx, user)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("maps unique violation to already exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgUserRepository(mock)
		user := newTestUser()

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Username, user.Email, user.PasswordHash, pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err = repo.Create(ctx, user)
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("returns user when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgUserRepository(mock)
		user := newTestUser()

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(user.Username).
			WillReturnRows(userRows(user))

		got, err := repo.GetByUsername(ctx, user.Username)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.PasswordHash, got.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing user", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgUserRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("ghost").
			WillReturnRows(userRows())

		_, err = repo.GetByUsername(ctx, "ghost")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("returns validation error for empty username", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgUserRepository(mock)

		_, err = repo.GetByUsername(ctx, "")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestPgUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns user when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgUserRepository(mock)
		user := newTestUser()

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(user.ID).
			WillReturnRows(userRows(user))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, got.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing ID", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgUserRepository(mock)
		id := uuid.New()

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(id).
			WillReturnRows(userRows())

		_, err = repo.GetByID(ctx, id)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
