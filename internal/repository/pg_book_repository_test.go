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

// Helper to create a valid book for testing.
func newTestBook() *domain.Book {
	rating := 4.2
	return &domain.Book{
		ID:            uuid.New(),
		ExternalID:    "vol-abc123",
		Title:         "Dune",
		Authors:       "Frank Herbert",
		Description:   "A desert planet epic.",
		CoverImageURL: "https://example.com/dune.jpg",
		AverageRating: &rating,
		Categories:    "Science Fiction, Classics",
		CreatedAt:     time.Now().UTC(),
	}
}

func bookRows(books ...*domain.Book) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "external_id", "title", "authors", "description",
		"cover_image_url", "average_rating", "categories", "created_by", "created_at",
	})
	for _, b := range books {
		rows.AddRow(
			b.ID, b.ExternalID, b.Title, b.Authors, b.Description,
			b.CoverImageURL, b.AverageRating, b.Categories, b.CreatedBy, b.CreatedAt,
		)
	}
	return rows
}

func TestNewPgBookRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgBookRepository(mock)
	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

func TestPgBookRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates book successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectExec("INSERT INTO books").
			WithArgs(
				book.ID, book.ExternalID, book.Title, book.Authors, book.Description,
				book.CoverImageURL, book.AverageRating, book.Categories, book.CreatedBy,
				pgxmock.AnyArg(),
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.Create(ctx, book)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("assigns ID when missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()
		book.ID = uuid.Nil

		mock.ExpectExec("INSERT INTO books").
			WithArgs(
				pgxmock.AnyArg(), book.ExternalID, book.Title, book.Authors, book.Description,
				book.CoverImageURL, book.AverageRating, book.Categories, book.CreatedBy,
				pgxmock.AnyArg(),
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.Create(ctx, book)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, book.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns validation error for nil book", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		err = repo.Create(ctx, nil)

		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "book", validationErr.Field)
	})

	t.Run("returns validation error for missing title", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()
		book.Title = ""

		err = repo.Create(ctx, book)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("maps unique violation to already exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectExec("INSERT INTO books").
			WithArgs(
				book.ID, book.ExternalID, book.Title, book.Authors, book.Description,
				book.CoverImageURL, book.AverageRating, book.Categories, book.CreatedBy,
				pgxmock.AnyArg(),
			).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err = repo.Create(ctx, book)
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgBookRepository_GetByExternalID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns book when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectQuery("SELECT (.+) FROM books WHERE external_id").
			WithArgs(book.ExternalID).
			WillReturnRows(bookRows(book))

		got, err := repo.GetByExternalID(ctx, book.ExternalID)
		require.NoError(t, err)
		assert.Equal(t, book.ExternalID, got.ExternalID)
		assert.Equal(t, book.Title, got.Title)
		require.NotNil(t, got.AverageRating)
		assert.InDelta(t, 4.2, *got.AverageRating, 0.001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing book", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM books WHERE external_id").
			WithArgs("missing").
			WillReturnRows(bookRows())

		_, err = repo.GetByExternalID(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		var notFoundErr *domain.NotFoundError
		require.True(t, errors.As(err, &notFoundErr))
		assert.Equal(t, "book", notFoundErr.Entity)
	})

	t.Run("returns validation error for empty external ID", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		_, err = repo.GetByExternalID(ctx, "")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestPgBookRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns existing book without creating", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectQuery("SELECT (.+) FROM books WHERE external_id").
			WithArgs(book.ExternalID).
			WillReturnRows(bookRows(book))

		got, created, err := repo.GetOrCreate(ctx, book.ExternalID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, book.ExternalID, got.ExternalID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates bare row when missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM books WHERE external_id").
			WithArgs("vol-new").
			WillReturnRows(bookRows())
		mock.ExpectExec("INSERT INTO books").
			WithArgs(pgxmock.AnyArg(), "vol-new", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		got, created, err := repo.GetOrCreate(ctx, "vol-new")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "vol-new", got.ExternalID)
		assert.Empty(t, got.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps insert race to already exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM books WHERE external_id").
			WithArgs("vol-race").
			WillReturnRows(bookRows())
		mock.ExpectExec("INSERT INTO books").
			WithArgs(pgxmock.AnyArg(), "vol-race", pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, _, err = repo.GetOrCreate(ctx, "vol-race")
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgBookRepository_UpdateMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("updates metadata successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectExec("UPDATE books").
			WithArgs(
				book.Title, book.Authors, book.Description,
				book.CoverImageURL, book.AverageRating, book.Categories, book.ID,
			).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.UpdateMetadata(ctx, book)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when no row updated", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectExec("UPDATE books").
			WithArgs(
				book.Title, book.Authors, book.Description,
				book.CoverImageURL, book.AverageRating, book.Categories, book.ID,
			).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = repo.UpdateMetadata(ctx, book)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPgBookRepository_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("returns matching books in creation order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		first := newTestBook()
		second := newTestBook()
		second.ExternalID = "vol-def456"
		second.Title = "Dune Messiah"

		mock.ExpectQuery("SELECT (.+) FROM books").
			WithArgs("dune").
			WillReturnRows(bookRows(first, second))

		got, err := repo.Search(ctx, "dune")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Dune", got[0].Title)
		assert.Equal(t, "Dune Messiah", got[1].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM books").
			WithArgs("nothing").
			WillReturnRows(bookRows())

		got, err := repo.Search(ctx, "nothing")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("returns validation error for empty query", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		_, err = repo.Search(ctx, "")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}
