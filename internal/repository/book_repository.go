package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

// BookRepository defines data access operations for the local book catalog.
type BookRepository interface {
	// Create inserts a new book. The book must carry a unique external ID.
	// Returns domain.AlreadyExistsError if the external ID is already taken.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its internal identifier.
	// Returns domain.NotFoundError if no such book exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// GetByExternalID retrieves a book by its external identifier.
	// Returns domain.NotFoundError if no such book exists.
	GetByExternalID(ctx context.Context, externalID string) (*domain.Book, error)

	// GetOrCreate returns the book with the given external ID, creating a
	// bare row (external ID only) when none exists. The second return value
	// reports whether a new row was created.
	GetOrCreate(ctx context.Context, externalID string) (*domain.Book, bool, error)

	// UpdateMetadata overwrites the descriptive fields of an existing book.
	// Returns domain.NotFoundError if the book does not exist.
	UpdateMetadata(ctx context.Context, book *domain.Book) error

	// Search returns catalog books whose title, authors, categories or
	// external ID contain the query, case-insensitively, ordered by
	// creation time.
	Search(ctx context.Context, query string) ([]*domain.Book, error)
}
