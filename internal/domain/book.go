package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// LocalIDPrefix marks external IDs generated locally rather than
	// assigned by the metadata provider.
	LocalIDPrefix = "LOCALDB-"

	// localIDSuffixBytes is the number of random bytes in a generated
	// external ID (12 hex characters).
	localIDSuffixBytes = 6

	// ListSeparator joins authors and categories into their stored
	// flat-string form.
	ListSeparator = ", "
)

// Book represents a book known to the catalog. A book originates either
// from the metadata provider (CreatedBy is nil) or from a user creating
// it directly.
//
// ExternalID is the sole natural key: it is either the provider's volume
// ID or a locally generated placeholder, and it is unique across the
// catalog. All merge and deduplication logic keys on it.
type Book struct {
	// ID is the internal identifier.
	ID uuid.UUID `json:"id"`

	// ExternalID is the provider volume ID, or a LOCALDB- placeholder.
	ExternalID string `json:"external_id"`

	// Title is the book title.
	Title string `json:"title"`

	// Authors is the flat ", "-joined author list.
	Authors string `json:"authors"`

	// Description is the free-text description.
	Description string `json:"description"`

	// CoverImageURL is the thumbnail image URL.
	CoverImageURL string `json:"cover_image_url"`

	// AverageRating is the provider's average rating; nil when unrated.
	AverageRating *float64 `json:"average_rating"`

	// Categories is the flat ", "-joined category list.
	Categories string `json:"categories"`

	// CreatedBy references the creating user; nil means API-sourced.
	CreatedBy *uuid.UUID `json:"created_by"`

	// CreatedAt is the server-assigned creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that the book has the fields required for persistence.
func (b *Book) Validate() error {
	if b.ExternalID == "" {
		return NewValidationError("external_id", "external ID is required")
	}
	if b.Title == "" {
		return NewValidationError("title", "title is required")
	}
	return nil
}

// IsLocalID reports whether the external ID was generated locally.
func (b *Book) IsLocalID() bool {
	return strings.HasPrefix(b.ExternalID, LocalIDPrefix)
}

// GenerateExternalID returns a locally generated external ID of the form
// LOCALDB-XXXXXXXXXXXX, where the suffix is 12 uppercase hex characters.
func GenerateExternalID() string {
	buf := make([]byte, localIDSuffixBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to a UUID-derived suffix.
		raw := strings.ReplaceAll(uuid.NewString(), "-", "")
		return LocalIDPrefix + strings.ToUpper(raw[:2*localIDSuffixBytes])
	}
	return LocalIDPrefix + strings.ToUpper(hex.EncodeToString(buf))
}

// JoinList flattens a list of authors or categories into its stored
// string form. Empty items are dropped so the round trip with SplitList
// is lossless for items that do not contain the separator.
func JoinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, ListSeparator)
}

// SplitList reverses JoinList, returning nil for an empty string.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ListSeparator)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			items = append(items, p)
		}
	}
	return items
}
