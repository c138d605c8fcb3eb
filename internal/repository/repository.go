// Package repository provides data access interfaces and implementations
// for the Book Recommendation Service.
//
// # Overview
//
// This package defines repository interfaces and their PostgreSQL implementations
// following the repository pattern to abstract data persistence from business logic.
//
// # Repository Interfaces
//
// The package provides the following repository interfaces:
//
//   - BookRepository: Manages the local book catalog keyed by external ID
//   - RecommendationRepository: Manages recommendation upserts and aggregated listings
//   - LikeRepository: Manages like toggles on recommendations
//   - UserRepository: Manages user accounts
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple goroutines.
// The underlying pgxpool handles connection pooling and synchronization.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Wrap database errors with context using fmt.Errorf with %w verb.
// Common errors include:
//
//   - domain.ErrNotFound: Resource does not exist
//   - domain.ErrAlreadyExists: Unique constraint violation
//   - domain.ErrInvalidInput: Invalid parameters provided
//
// # Usage Pattern
//
// Repositories are typically created at application startup and passed to services:
//
//	db, _ := database.New(ctx, cfg, logger)
//	bookRepo := repository.NewPgBookRepository(db)
//	recRepo := repository.NewPgRecommendationRepository(db)
//	likeRepo := repository.NewPgLikeRepository(db)
package repository

import (
	"github.com/readcircle/book-recommendation-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
// This allows repositories to work with both direct pool connections and
// transactions, and makes implementations testable with pgxmock.
type DBTX = database.DBTX

// PostgreSQL error codes checked by the implementations.
const (
	pgErrForeignKeyViolation = "23503"
	pgErrUniqueViolation     = "23505"
)
