// Package service implements the business logic of the book recommendation
// service: catalog search with provider merge, recommendation posting with
// metadata backfill, aggregated listings, and like toggles.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/readcircle/book-recommendation-service/internal/domain"
	"github.com/readcircle/book-recommendation-service/internal/googlebooks"
	"github.com/readcircle/book-recommendation-service/internal/observability"
	"github.com/readcircle/book-recommendation-service/internal/repository"
)

// Service coordinates the repositories and the metadata provider.
// It is safe for concurrent use.
type Service struct {
	bookRepo repository.BookRepository
	recRepo  repository.RecommendationRepository
	likeRepo repository.LikeRepository
	source   googlebooks.BookSource
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// New creates a new Service.
// The metrics parameter may be nil (metrics recording will be skipped).
func New(
	bookRepo repository.BookRepository,
	recRepo repository.RecommendationRepository,
	likeRepo repository.LikeRepository,
	source googlebooks.BookSource,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *Service {
	return &Service{
		bookRepo: bookRepo,
		recRepo:  recRepo,
		likeRepo: likeRepo,
		source:   source,
		logger:   logger.With().Str("component", "service").Logger(),
		metrics:  metrics,
	}
}

// SearchBooks merges local catalog matches with provider results into a
// single deduplicated list keyed by external ID.
//
// Local results come first in catalog order, followed by provider results
// in provider order. When both sides carry the same external ID the
// provider's record replaces the local one in place, so the entry keeps
// its first-seen position but shows the fresher metadata.
//
// A provider failure aborts the whole search; partial local-only results
// are never returned.
func (s *Service) SearchBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		if s.metrics != nil {
			s.metrics.RecordSearchFailed("validation")
		}
		return nil, domain.NewValidationError("query", "search query is required")
	}

	local, err := s.bookRepo.Search(ctx, query)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSearchFailed("local")
		}
		return nil, fmt.Errorf("searching local catalog: %w", err)
	}

	providerStart := time.Now()
	remote, err := s.source.Search(ctx, query)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSearchFailed("provider")
			s.metrics.RecordProviderRequestFailed("search", "request")
		}
		s.logger.Error().Err(err).Str("query", query).Msg("provider search failed")
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordProviderRequest("search", time.Since(providerStart).Seconds())
	}

	merged, duplicates := mergeResults(local, remote)

	if s.metrics != nil {
		s.metrics.RecordSearchCompleted(len(merged), duplicates, time.Since(start).Seconds())
	}

	s.logger.Debug().
		Str("query", query).
		Int("local_results", len(local)).
		Int("remote_results", len(remote)).
		Int("merged_results", len(merged)).
		Int("duplicates", duplicates).
		Msg("search completed")

	return merged, nil
}

// mergeResults deduplicates local and remote results by external ID.
// Remote entries overwrite local ones in place; order is first seen.
func mergeResults(local, remote []*domain.Book) ([]*domain.Book, int) {
	index := make(map[string]int, len(local)+len(remote))
	merged := make([]*domain.Book, 0, len(local)+len(remote))

	for _, book := range local {
		if _, seen := index[book.ExternalID]; seen {
			continue
		}
		index[book.ExternalID] = len(merged)
		merged = append(merged, book)
	}

	duplicates := 0
	for _, book := range remote {
		if i, seen := index[book.ExternalID]; seen {
			merged[i] = book
			duplicates++
			continue
		}
		index[book.ExternalID] = len(merged)
		merged = append(merged, book)
	}

	return merged, duplicates
}

// CreateBook adds a user-supplied book to the catalog. Books without an
// external ID get a locally generated one so they can participate in
// search deduplication like any provider book.
func (s *Service) CreateBook(ctx context.Context, userID uuid.UUID, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, domain.NewValidationError("book", "book cannot be nil")
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "user ID is required")
	}

	if book.ExternalID == "" {
		book.ExternalID = domain.GenerateExternalID()
	}
	book.CreatedBy = &userID

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordBookCreated("user")
	}

	s.logger.Info().
		Str("external_id", book.ExternalID).
		Str("title", book.Title).
		Msg("book created")

	return book, nil
}

// Recommend posts a recommendation for the book with the given external
// ID. Unknown books are materialized on the fly: a bare catalog row is
// created, then its metadata is backfilled from the provider.
//
// When the backfill lookup fails, the recommendation is not created and
// the bare row is left behind. Backfill runs only when the row is first
// created, so a later recommendation for the same external ID finds the
// existing row and proceeds without re-fetching its metadata.
//
// A user recommending the same book twice overwrites the comment of the
// existing recommendation; its identity and creation time are preserved.
func (s *Service) Recommend(ctx context.Context, userID uuid.UUID, externalID, comment string) (*domain.Recommendation, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "user ID is required")
	}
	if externalID == "" {
		return nil, domain.NewValidationError("external_id", "external ID is required")
	}
	if strings.TrimSpace(comment) == "" {
		return nil, domain.NewValidationError("comment", "comment is required")
	}

	book, created, err := s.bookRepo.GetOrCreate(ctx, externalID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordRecommendationFailed()
		}
		return nil, err
	}

	if created {
		if err := s.backfillMetadata(ctx, book); err != nil {
			if s.metrics != nil {
				s.metrics.RecordRecommendationFailed()
			}
			s.logger.Error().Err(err).
				Str("external_id", externalID).
				Msg("metadata backfill failed")
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.RecordBookCreated("backfill")
		}
	}

	rec, inserted, err := s.recRepo.Upsert(ctx, &domain.Recommendation{
		UserID:  userID,
		BookID:  book.ID,
		Comment: comment,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordRecommendationFailed()
		}
		return nil, err
	}

	rec.Book = book
	if !inserted {
		count, err := s.likeRepo.CountForRecommendation(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		rec.LikeCount = count
	}

	if s.metrics != nil {
		s.metrics.RecordRecommendationUpserted(inserted)
	}

	s.logger.Info().
		Str("external_id", externalID).
		Str("recommendation_id", rec.ID.String()).
		Bool("created", inserted).
		Msg("recommendation posted")

	return rec, nil
}

// backfillMetadata fetches provider metadata for a freshly created bare
// row and persists it.
func (s *Service) backfillMetadata(ctx context.Context, book *domain.Book) error {
	start := time.Now()
	fetched, err := s.source.GetVolume(ctx, book.ExternalID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordProviderRequestFailed("volume", "request")
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordProviderRequest("volume", time.Since(start).Seconds())
	}

	book.Title = fetched.Title
	book.Authors = fetched.Authors
	book.Description = fetched.Description
	book.CoverImageURL = fetched.CoverImageURL
	book.AverageRating = fetched.AverageRating
	book.Categories = fetched.Categories

	return s.bookRepo.UpdateMetadata(ctx, book)
}

// ListRecommendations returns recommendations matching the filter, each
// carrying its book and current like count.
func (s *Service) ListRecommendations(ctx context.Context, filter repository.RecommendationFilter) ([]*domain.Recommendation, error) {
	return s.recRepo.List(ctx, filter)
}

// ToggleLike flips the like state of a recommendation for a user and
// returns the new state and total like count.
func (s *Service) ToggleLike(ctx context.Context, userID, recommendationID uuid.UUID) (bool, int64, error) {
	if userID == uuid.Nil {
		return false, 0, domain.NewValidationError("user_id", "user ID is required")
	}

	// Existence check up front so a missing recommendation reads as not
	// found rather than surfacing from the toggle's foreign key.
	if _, err := s.recRepo.GetByID(ctx, recommendationID); err != nil {
		return false, 0, err
	}

	added, err := s.likeRepo.Toggle(ctx, userID, recommendationID)
	if err != nil {
		return false, 0, err
	}

	count, err := s.likeRepo.CountForRecommendation(ctx, recommendationID)
	if err != nil {
		return false, 0, err
	}

	if s.metrics != nil {
		s.metrics.RecordLikeToggled(added)
	}

	s.logger.Debug().
		Str("recommendation_id", recommendationID.String()).
		Bool("liked", added).
		Int64("like_count", count).
		Msg("like toggled")

	return added, count, nil
}
