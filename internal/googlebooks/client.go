package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

const (
	// DefaultBaseURL is the default Google Books API base URL.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per search request.
	// The volumes API caps maxResults at 40.
	DefaultMaxResults = 20

	// sourceName identifies the provider in external API errors.
	sourceName = "GoogleBooks"
)

// Config holds configuration for the Google Books client.
type Config struct {
	// BaseURL is the API base URL.
	// Defaults to https://www.googleapis.com/books/v1
	BaseURL string

	// APIKey is the API key sent as the key query parameter.
	// The volumes endpoints work unauthenticated at reduced quota,
	// so an empty key is allowed.
	APIKey string

	// Timeout is the request timeout.
	// Defaults to 30 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	// Defaults to 5 req/sec.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	// Defaults to 5.
	BurstSize int

	// MaxResults is the maximum results to return per search request.
	// Defaults to 20, maximum is 40 per the volumes API.
	MaxResults int
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// BookSource searches the external provider for book metadata.
type BookSource interface {
	// Search queries the provider for volumes matching the query.
	Search(ctx context.Context, query string) ([]*domain.Book, error)

	// GetVolume retrieves a single volume by its provider ID.
	// Returns domain.NotFoundError when the provider has no such volume.
	GetVolume(ctx context.Context, volumeID string) (*domain.Book, error)
}

// Client talks to the Google Books volumes API.
type Client struct {
	config     Config
	httpClient *HTTPClient
}

// Ensure Client implements the BookSource interface.
var _ BookSource = (*Client)(nil)

// New creates a new Google Books client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := NewHTTPClient(HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new Google Books client with a custom HTTP
// client. This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries the volumes API for books matching the query. Provider
// result order is preserved.
func (c *Client) Search(ctx context.Context, query string) ([]*domain.Book, error) {
	if query == "" {
		return nil, domain.NewValidationError("query", "search query is required")
	}

	searchURL := c.buildSearchURL(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewExternalAPIError(sourceName, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	// Limit body to 10MB to prevent resource exhaustion.
	var volumesResp volumesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&volumesResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	books := make([]*domain.Book, 0, len(volumesResp.Items))
	for _, item := range volumesResp.Items {
		if book := volumeToBook(&item); book != nil {
			books = append(books, book)
		}
	}

	return books, nil
}

// GetVolume retrieves a single volume by its provider ID.
func (c *Client) GetVolume(ctx context.Context, volumeID string) (*domain.Book, error) {
	if volumeID == "" {
		return nil, domain.NewValidationError("volume_id", "volume ID is required")
	}

	fetchURL := c.buildVolumeURL(volumeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewExternalAPIError(sourceName, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError("volume", volumeID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var item volume
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&item); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	book := volumeToBook(&item)
	if book == nil {
		return nil, domain.NewNotFoundError("volume", volumeID)
	}

	return book, nil
}

// buildSearchURL constructs the volumes search URL.
func (c *Client) buildSearchURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(c.config.MaxResults))
	if c.config.APIKey != "" {
		params.Set("key", c.config.APIKey)
	}
	return c.config.BaseURL + "/volumes?" + params.Encode()
}

// buildVolumeURL constructs the single-volume fetch URL.
func (c *Client) buildVolumeURL(volumeID string) string {
	u := c.config.BaseURL + "/volumes/" + url.PathEscape(volumeID)
	if c.config.APIKey != "" {
		params := url.Values{}
		params.Set("key", c.config.APIKey)
		u += "?" + params.Encode()
	}
	return u
}

// volumeToBook maps a volume record to a domain book. Volumes without an
// ID are dropped: the external ID is the dedupe key and a record without
// one cannot participate in merges.
func volumeToBook(v *volume) *domain.Book {
	if v == nil || v.ID == "" {
		return nil
	}

	book := &domain.Book{
		ExternalID:    v.ID,
		Title:         v.VolumeInfo.Title,
		Authors:       domain.JoinList(v.VolumeInfo.Authors),
		Description:   v.VolumeInfo.Description,
		AverageRating: v.VolumeInfo.AverageRating,
		Categories:    domain.JoinList(v.VolumeInfo.Categories),
	}

	if v.VolumeInfo.ImageLinks != nil {
		book.CoverImageURL = v.VolumeInfo.ImageLinks.Thumbnail
		if book.CoverImageURL == "" {
			book.CoverImageURL = v.VolumeInfo.ImageLinks.SmallThumbnail
		}
	}

	return book
}
