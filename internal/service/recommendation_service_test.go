package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readcircle/book-recommendation-service/internal/domain"
	"github.com/readcircle/book-recommendation-service/internal/repository"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockBookRepo implements repository.BookRepository for service tests.
type mockBookRepo struct {
	createFn          func(ctx context.Context, book *domain.Book) error
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	getByExternalIDFn func(ctx context.Context, externalID string) (*domain.Book, error)
	getOrCreateFn     func(ctx context.Context, externalID string) (*domain.Book, bool, error)
	updateMetadataFn  func(ctx context.Context, book *domain.Book) error
	searchFn          func(ctx context.Context, query string) ([]*domain.Book, error)
}

func (m *mockBookRepo) Create(ctx context.Context, book *domain.Book) error {
	if m.createFn != nil {
		return m.createFn(ctx, book)
	}
	return nil
}

func (m *mockBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockBookRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Book, error) {
	if m.getByExternalIDFn != nil {
		return m.getByExternalIDFn(ctx, externalID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockBookRepo) GetOrCreate(ctx context.Context, externalID string) (*domain.Book, bool, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, externalID)
	}
	return nil, false, domain.ErrNotFound
}

func (m *mockBookRepo) UpdateMetadata(ctx context.Context, book *domain.Book) error {
	if m.updateMetadataFn != nil {
		return m.updateMetadataFn(ctx, book)
	}
	return nil
}

func (m *mockBookRepo) Search(ctx context.Context, query string) ([]*domain.Book, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

// mockRecRepo implements repository.RecommendationRepository for service tests.
type mockRecRepo struct {
	upsertFn  func(ctx context.Context, rec *domain.Recommendation) (*domain.Recommendation, bool, error)
	getByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Recommendation, error)
	listFn    func(ctx context.Context, filter repository.RecommendationFilter) ([]*domain.Recommendation, error)
}

func (m *mockRecRepo) Upsert(ctx context.Context, rec *domain.Recommendation) (*domain.Recommendation, bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, rec)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now().UTC()
	return rec, true, nil
}

func (m *mockRecRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recommendation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecRepo) List(ctx context.Context, filter repository.RecommendationFilter) ([]*domain.Recommendation, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

// mockLikeRepo implements repository.LikeRepository for service tests.
type mockLikeRepo struct {
	toggleFn func(ctx context.Context, userID, recommendationID uuid.UUID) (bool, error)
	countFn  func(ctx context.Context, recommendationID uuid.UUID) (int64, error)
}

func (m *mockLikeRepo) Toggle(ctx context.Context, userID, recommendationID uuid.UUID) (bool, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, userID, recommendationID)
	}
	return true, nil
}

func (m *mockLikeRepo) CountForRecommendation(ctx context.Context, recommendationID uuid.UUID) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, recommendationID)
	}
	return 0, nil
}

// mockBookSource implements googlebooks.BookSource for service tests.
type mockBookSource struct {
	searchFn    func(ctx context.Context, query string) ([]*domain.Book, error)
	getVolumeFn func(ctx context.Context, volumeID string) (*domain.Book, error)
}

func (m *mockBookSource) Search(ctx context.Context, query string) ([]*domain.Book, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

func (m *mockBookSource) GetVolume(ctx context.Context, volumeID string) (*domain.Book, error) {
	if m.getVolumeFn != nil {
		return m.getVolumeFn(ctx, volumeID)
	}
	return nil, domain.NewNotFoundError("volume", volumeID)
}

func newTestService(books *mockBookRepo, recs *mockRecRepo, likes *mockLikeRepo, source *mockBookSource) *Service {
	if books == nil {
		books = &mockBookRepo{}
	}
	if recs == nil {
		recs = &mockRecRepo{}
	}
	if likes == nil {
		likes = &mockLikeRepo{}
	}
	if source == nil {
		source = &mockBookSource{}
	}
	return New(books, recs, likes, source, zerolog.Nop(), nil)
}

func bookWithID(externalID, title string) *domain.Book {
	return &domain.Book{
		ID:         uuid.New(),
		ExternalID: externalID,
		Title:      title,
	}
}

// ---------------------------------------------------------------------------
// SearchBooks
// ---------------------------------------------------------------------------

func TestService_SearchBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty query", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil)

		_, err := svc.SearchBooks(ctx, "   ")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("remote result replaces local on shared external ID", func(t *testing.T) {
		localStale := bookWithID("X1", "Old Title")
		remoteFresh := bookWithID("X1", "Fresh Title")

		books := &mockBookRepo{
			searchFn: func(ctx context.Context, query string) ([]*domain.Book, error) {
				return []*domain.Book{localStale}, nil
			},
		}
		source := &mockBookSource{
			searchFn: func(ctx context.Context, query string) ([]*domain.Book, error) {
				return []*domain.Book{remoteFresh}, nil
			},
		}
		svc := newTestService(books, nil, nil, source)

		got, err := svc.SearchBooks(ctx, "dune")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Fresh Title", got[0].Title)
	})

	t.Run("keeps all results and order without overlap", func(t *testing.T) {
		localA := bookWithID("L1", "Local One")
		localB := bookWithID("L2", "Local Two")
		remoteA := bookWithID("R1", "Remote One")
		remoteB := bookWithID("R2", "Remote Two")
		remoteC := bookWithID("R3", "Remote Three")

		books := &mockBookRepo{
			searchFn: func(ctx context.Context, query string) ([]*domain.Book, error) {
				return []*domain.Book{localA, localB}, nil
			},
		}
		source := &mockBookSource{
			searchFn: func(ctx context.Context, query string) ([]*domain.Book, error) {
				return []*domain.Book{remoteA, remoteB, remoteC}, nil
			},
		}
		svc := newTestService(books, nil, nil, source)

		got, err := svc.SearchBooks(ctx, "anything")
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.Equal(t, "L1", got[0].ExternalID)
		assert.Equal(t, "L2", got[1].ExternalID)
		assert.Equal(t, "R1", got[2].ExternalID)
		assert.Equal(t, "R2", got[3].ExternalID)
		assert.Equal(t, "R3", got[4].ExternalID)
	})

	t.Run("replaced entry keeps its first-seen position", func(t *testing.T) {
		books := &mockBookRepo{
			searchFn: func(ctx context.Context, query string) ([]*domain.Book, error) {
				return []*domain.Book{
					bookWithID("L1", "Local One"),
					bookWithID("SHARED", "Stale Shared"),
				}, nil
			},
		}
		source := &mockBookSource{
			searchFn: func(ctx context.Context, query string) ([]*domain.Book, error) {
				return []*domain.Book{
					bookWithID("R1", "Remote One"),
					bookWithID("SHARED", "Fresh Shared"),
				}, nil
			},
		}
		svc := newTestService(books, nil, nil, source)

		got, err := svc.SearchBooks(ctx, "dune")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "L1", got[0].ExternalID)
		assert.Equal(t, "SHARED", got[1].ExternalID)
		assert.Equal(t, "Fresh Shared", got[1].Title)
		assert.Equal(t, "R1", got[2].ExternalID)
	})

	t.Run("aborts on provider failure", func(t *testing.T) {
		books := &mockBookRepo{
			searchFn: func(ctx context.Context, query string) ([]*domain.Book, error) {
				return []*domain.Book{bookWithID("L1", "Local One")}, nil
			},
		}
		source := &mockBookSource{
			searchFn: func(ctx context.Context, query string) ([]*domain.Book, error) {
				return nil, domain.NewExternalAPIError("GoogleBooks", 503, "down", nil)
			},
		}
		svc := newTestService(books, nil, nil, source)

		_, err := svc.SearchBooks(ctx, "dune")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrServiceUnavailable))
	})

	t.Run("returns empty list when nothing matches", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil)

		got, err := svc.SearchBooks(ctx, "nothing")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

// ---------------------------------------------------------------------------
// CreateBook
// ---------------------------------------------------------------------------

func TestService_CreateBook(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("generates local external ID when absent", func(t *testing.T) {
		var created *domain.Book
		books := &mockBookRepo{
			createFn: func(ctx context.Context, book *domain.Book) error {
				created = book
				return nil
			},
		}
		svc := newTestService(books, nil, nil, nil)

		got, err := svc.CreateBook(ctx, userID, &domain.Book{Title: "Homegrown"})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.True(t, got.IsLocalID())
		assert.Len(t, got.ExternalID, len(domain.LocalIDPrefix)+12)
		require.NotNil(t, got.CreatedBy)
		assert.Equal(t, userID, *got.CreatedBy)
	})

	t.Run("keeps caller-supplied external ID", func(t *testing.T) {
		svc := newTestService(&mockBookRepo{}, nil, nil, nil)

		got, err := svc.CreateBook(ctx, userID, &domain.Book{ExternalID: "vol-x", Title: "Known"})
		require.NoError(t, err)
		assert.Equal(t, "vol-x", got.ExternalID)
	})

	t.Run("propagates duplicate external ID", func(t *testing.T) {
		books := &mockBookRepo{
			createFn: func(ctx context.Context, book *domain.Book) error {
				return domain.NewAlreadyExistsError("book", book.ExternalID)
			},
		}
		svc := newTestService(books, nil, nil, nil)

		_, err := svc.CreateBook(ctx, userID, &domain.Book{ExternalID: "vol-x", Title: "Dup"})
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
	})

	t.Run("rejects nil book", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil)

		_, err := svc.CreateBook(ctx, userID, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

// ---------------------------------------------------------------------------
// Recommend
// ---------------------------------------------------------------------------

func TestService_Recommend(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("recommends existing book without backfill", func(t *testing.T) {
		book := bookWithID("vol-known", "Known Book")
		providerCalled := false

		books := &mockBookRepo{
			getOrCreateFn: func(ctx context.Context, externalID string) (*domain.Book, bool, error) {
				return book, false, nil
			},
		}
		source := &mockBookSource{
			getVolumeFn: func(ctx context.Context, volumeID string) (*domain.Book, error) {
				providerCalled = true
				return nil, domain.NewNotFoundError("volume", volumeID)
			},
		}
		svc := newTestService(books, &mockRecRepo{}, nil, source)

		rec, err := svc.Recommend(ctx, userID, "vol-known", "great read")
		require.NoError(t, err)
		assert.False(t, providerCalled)
		assert.Equal(t, book, rec.Book)
		assert.Equal(t, "great read", rec.Comment)
	})

	t.Run("backfills metadata for unknown book", func(t *testing.T) {
		bare := &domain.Book{ID: uuid.New(), ExternalID: "NEW1"}
		rating := 4.1
		var updated *domain.Book

		books := &mockBookRepo{
			getOrCreateFn: func(ctx context.Context, externalID string) (*domain.Book, bool, error) {
				return bare, true, nil
			},
			updateMetadataFn: func(ctx context.Context, book *domain.Book) error {
				updated = book
				return nil
			},
		}
		source := &mockBookSource{
			getVolumeFn: func(ctx context.Context, volumeID string) (*domain.Book, error) {
				return &domain.Book{
					ExternalID:    "NEW1",
					Title:         "Fetched Title",
					Authors:       "Author A, Author B",
					AverageRating: &rating,
					Categories:    "Fiction",
				}, nil
			},
		}
		svc := newTestService(books, &mockRecRepo{}, nil, source)

		rec, err := svc.Recommend(ctx, userID, "NEW1", "try this")
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, bare.ID, updated.ID)
		assert.Equal(t, "Fetched Title", updated.Title)
		assert.Equal(t, "Author A, Author B", updated.Authors)
		assert.Equal(t, "Fetched Title", rec.Book.Title)
	})

	t.Run("aborts when backfill lookup fails", func(t *testing.T) {
		bare := &domain.Book{ID: uuid.New(), ExternalID: "NEW1"}
		upsertCalled := false

		books := &mockBookRepo{
			getOrCreateFn: func(ctx context.Context, externalID string) (*domain.Book, bool, error) {
				return bare, true, nil
			},
		}
		source := &mockBookSource{
			getVolumeFn: func(ctx context.Context, volumeID string) (*domain.Book, error) {
				return nil, domain.NewExternalAPIError("GoogleBooks", 500, "boom", nil)
			},
		}
		recs := &mockRecRepo{
			upsertFn: func(ctx context.Context, rec *domain.Recommendation) (*domain.Recommendation, bool, error) {
				upsertCalled = true
				return rec, true, nil
			},
		}
		svc := newTestService(books, recs, nil, source)

		_, err := svc.Recommend(ctx, userID, "NEW1", "try this")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrServiceUnavailable))
		assert.False(t, upsertCalled)
	})

	t.Run("second post overwrites comment and keeps identity", func(t *testing.T) {
		book := bookWithID("vol-known", "Known Book")
		existingID := uuid.New()
		originalCreatedAt := time.Now().UTC().Add(-48 * time.Hour)

		books := &mockBookRepo{
			getOrCreateFn: func(ctx context.Context, externalID string) (*domain.Book, bool, error) {
				return book, false, nil
			},
		}
		recs := &mockRecRepo{
			upsertFn: func(ctx context.Context, rec *domain.Recommendation) (*domain.Recommendation, bool, error) {
				rec.ID = existingID
				rec.CreatedAt = originalCreatedAt
				return rec, false, nil
			},
		}
		likes := &mockLikeRepo{
			countFn: func(ctx context.Context, recommendationID uuid.UUID) (int64, error) {
				return 2, nil
			},
		}
		svc := newTestService(books, recs, likes, nil)

		rec, err := svc.Recommend(ctx, userID, "vol-known", "updated take")
		require.NoError(t, err)
		assert.Equal(t, existingID, rec.ID)
		assert.Equal(t, originalCreatedAt, rec.CreatedAt)
		assert.Equal(t, "updated take", rec.Comment)
		assert.Equal(t, int64(2), rec.LikeCount)
	})

	t.Run("rejects blank comment", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil)

		_, err := svc.Recommend(ctx, userID, "vol-x", "  ")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

// ---------------------------------------------------------------------------
// ListRecommendations
// ---------------------------------------------------------------------------

func TestService_ListRecommendations(t *testing.T) {
	ctx := context.Background()

	t.Run("passes filter through to repository", func(t *testing.T) {
		var gotFilter repository.RecommendationFilter
		minRating := 4.0

		recs := &mockRecRepo{
			listFn: func(ctx context.Context, filter repository.RecommendationFilter) ([]*domain.Recommendation, error) {
				gotFilter = filter
				return []*domain.Recommendation{}, nil
			},
		}
		svc := newTestService(nil, recs, nil, nil)

		_, err := svc.ListRecommendations(ctx, repository.RecommendationFilter{
			Genre:     "fiction",
			MinRating: &minRating,
			SortBy:    domain.SortByLikes,
		})
		require.NoError(t, err)
		assert.Equal(t, "fiction", gotFilter.Genre)
		require.NotNil(t, gotFilter.MinRating)
		assert.InDelta(t, 4.0, *gotFilter.MinRating, 0.001)
		assert.Equal(t, domain.SortByLikes, gotFilter.SortBy)
	})
}

// ---------------------------------------------------------------------------
// ToggleLike
// ---------------------------------------------------------------------------

func TestService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	recID := uuid.New()

	existingRec := func() *domain.Recommendation {
		return &domain.Recommendation{ID: recID, UserID: uuid.New(), BookID: uuid.New(), Comment: "x"}
	}

	t.Run("adds like and returns count", func(t *testing.T) {
		recs := &mockRecRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Recommendation, error) {
				return existingRec(), nil
			},
		}
		likes := &mockLikeRepo{
			toggleFn: func(ctx context.Context, u, r uuid.UUID) (bool, error) {
				return true, nil
			},
			countFn: func(ctx context.Context, r uuid.UUID) (int64, error) {
				return 1, nil
			},
		}
		svc := newTestService(nil, recs, likes, nil)

		liked, count, err := svc.ToggleLike(ctx, userID, recID)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(1), count)
	})

	t.Run("second toggle removes like", func(t *testing.T) {
		state := false
		recs := &mockRecRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Recommendation, error) {
				return existingRec(), nil
			},
		}
		likes := &mockLikeRepo{
			toggleFn: func(ctx context.Context, u, r uuid.UUID) (bool, error) {
				state = !state
				return state, nil
			},
			countFn: func(ctx context.Context, r uuid.UUID) (int64, error) {
				if state {
					return 1, nil
				}
				return 0, nil
			},
		}
		svc := newTestService(nil, recs, likes, nil)

		liked, count, err := svc.ToggleLike(ctx, userID, recID)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(1), count)

		liked, count, err = svc.ToggleLike(ctx, userID, recID)
		require.NoError(t, err)
		assert.False(t, liked)
		assert.Equal(t, int64(0), count)
	})

	t.Run("returns not found for missing recommendation", func(t *testing.T) {
		svc := newTestService(nil, &mockRecRepo{}, nil, nil)

		_, _, err := svc.ToggleLike(ctx, userID, recID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

// ---------------------------------------------------------------------------
// mergeResults
// ---------------------------------------------------------------------------

func TestMergeResults(t *testing.T) {
	t.Run("counts overwritten duplicates", func(t *testing.T) {
		local := []*domain.Book{bookWithID("A", "a"), bookWithID("B", "b")}
		remote := []*domain.Book{bookWithID("B", "b2"), bookWithID("C", "c")}

		merged, duplicates := mergeResults(local, remote)
		assert.Len(t, merged, 3)
		assert.Equal(t, 1, duplicates)
	})

	t.Run("deduplicates within local results", func(t *testing.T) {
		local := []*domain.Book{bookWithID("A", "first"), bookWithID("A", "second")}

		merged, duplicates := mergeResults(local, nil)
		require.Len(t, merged, 1)
		assert.Equal(t, "first", merged[0].Title)
		assert.Equal(t, 0, duplicates)
	})
}
