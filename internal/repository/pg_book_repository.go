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
var _ BookRepository = (*PgBookRepository)(nil)

// PgBookRepository is a PostgreSQL implementation of BookRepository.
type PgBookRepository struct {
	db DBTX
}

// NewPgBookRepository creates a new PostgreSQL book repository.
func NewPgBookRepository(db DBTX) *PgBookRepository {
	return &PgBookRepository{db: db}
}

const bookColumns = `id, external_id, title, authors, description,
		cover_image_url, average_rating, categories, created_by, created_at`

// Create inserts a new book into the catalog.
func (r *PgBookRepository) Create(ctx context.Context, book *domain.Book) error {
	if book == nil {
		return domain.NewValidationError("book", "book cannot be nil")
	}
	if err := book.Validate(); err != nil {
		return err
	}

	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO books (
			id, external_id, title, authors, description,
			cover_image_url, average_rating, categories, created_by, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := r.db.Exec(ctx, query,
		book.ID,
		book.ExternalID,
		book.Title,
		book.Authors,
		book.Description,
		book.CoverImageURL,
		book.AverageRating,
		book.Categories,
		book.CreatedBy,
		book.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.NewAlreadyExistsError("book", book.ExternalID)
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by its UUID.
func (r *PgBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1`, bookColumns)

	row := r.db.QueryRow(ctx, query, id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("book", id.String())
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// GetByExternalID retrieves a book by its external identifier.
func (r *PgBookRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Book, error) {
	if externalID == "" {
		return nil, domain.NewValidationError("external_id", "external ID is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM books WHERE external_id = $1`, bookColumns)

	row := r.db.QueryRow(ctx, query, externalID)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("book", externalID)
		}
		return nil, fmt.Errorf("failed to get book by external ID: %w", err)
	}

	return book, nil
}

// GetOrCreate fetches the book with the given external ID, inserting a bare
// row when none exists yet. The bare row carries only the external ID; its
// descriptive fields are filled in later via UpdateMetadata.
func (r *PgBookRepository) GetOrCreate(ctx context.Context, externalID string) (*domain.Book, bool, error) {
	if externalID == "" {
		return nil, false, domain.NewValidationError("external_id", "external ID is required")
	}

	book, err := r.GetByExternalID(ctx, externalID)
	if err == nil {
		return book, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	book = &domain.Book{
		ID:         uuid.New(),
		ExternalID: externalID,
		CreatedAt:  time.Now().UTC(),
	}

	query := `
		INSERT INTO books (id, external_id, created_at)
		VALUES ($1, $2, $3)`

	_, err = r.db.Exec(ctx, query, book.ID, book.ExternalID, book.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			// Lost a concurrent race for the same external ID.
			return nil, false, domain.NewAlreadyExistsError("book", externalID)
		}
		return nil, false, fmt.Errorf("failed to create book: %w", err)
	}

	return book, true, nil
}

// UpdateMetadata overwrites the descriptive fields of an existing book.
func (r *PgBookRepository) UpdateMetadata(ctx context.Context, book *domain.Book) error {
	if book == nil {
		return domain.NewValidationError("book", "book cannot be nil")
	}
	if book.ID == uuid.Nil {
		return domain.NewValidationError("id", "book ID is required")
	}

	query := `
		UPDATE books
		SET title = $1,
			authors = $2,
			description = $3,
			cover_image_url = $4,
			average_rating = $5,
			categories = $6
		WHERE id = $7`

	result, err := r.db.Exec(ctx, query,
		book.Title,
		book.Authors,
		book.Description,
		book.CoverImageURL,
		book.AverageRating,
		book.Categories,
		book.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update book metadata: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("book", book.ID.String())
	}

	return nil
}

// Search returns catalog books matching the query across title, authors,
// categories and external ID, case-insensitively. Results are ordered by
// creation time so merged listings remain stable between requests.
func (r *PgBookRepository) Search(ctx context.Context, query string) ([]*domain.Book, error) {
	if query == "" {
		return nil, domain.NewValidationError("query", "search query is required")
	}

	sqlQuery := fmt.Sprintf(`
		SELECT %s
		FROM books
		WHERE title ILIKE '%%' || $1 || '%%'
			OR authors ILIKE '%%' || $1 || '%%'
			OR categories ILIKE '%%' || $1 || '%%'
			OR external_id ILIKE '%%' || $1 || '%%'
		ORDER BY created_at ASC`, bookColumns)

	rows, err := r.db.Query(ctx, sqlQuery, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	defer rows.Close()

	books := make([]*domain.Book, 0)
	for rows.Next() {
		book, err := scanBookFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// bookScanDest holds the destination pointers for scanning a Book row.
type bookScanDest struct {
	book domain.Book
}

// destinations returns the slice of pointers for Scan operations.
func (d *bookScanDest) destinations() []interface{} {
	return []interface{}{
		&d.book.ID, &d.book.ExternalID, &d.book.Title, &d.book.Authors, &d.book.Description,
		&d.book.CoverImageURL, &d.book.AverageRating, &d.book.Categories, &d.book.CreatedBy,
		&d.book.CreatedAt,
	}
}

// scanBook scans a single row into a Book.
func scanBook(row pgx.Row) (*domain.Book, error) {
	var dest bookScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return &dest.book, nil
}

// scanBookFromRows scans the current row from pgx.Rows into a Book.
func scanBookFromRows(rows pgx.Rows) (*domain.Book, error) {
	var dest bookScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return &dest.book, nil
}
