// Package item holds the cultural item aggregate: a described practice, its
// assessed extinction risk and the embedding that feeds later similarity checks.
package item

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kailas-cloud/heritage/internal/domain"
	"github.com/kailas-cloud/heritage/internal/domain/risk"
)

const (
	// MaxDescriptionSize is the maximum description size in bytes.
	MaxDescriptionSize = 65536 // 64KB
	// MaxTags is the maximum number of tags per item.
	MaxTags = 8
	// MaxTitleLength is the maximum title length in characters.
	MaxTitleLength = 256
	maxTagLength   = 64
)

// Draft is the user-editable part of an item.
type Draft struct {
	Title       string
	Category    string
	Description string
	Region      string
	Tags        []string
	Language    string
	TimePeriod  string
	UserID      string
	UserName    string
}

// Normalize trims every field, lowercases the language and de-duplicates tags,
// then validates the result.
func (d Draft) Normalize() (Draft, error) {
	n := Draft{
		Title:       strings.TrimSpace(d.Title),
		Category:    strings.TrimSpace(d.Category),
		Description: strings.TrimSpace(d.Description),
		Region:      strings.TrimSpace(d.Region),
		Language:    risk.NormalizeLanguage(d.Language),
		TimePeriod:  strings.TrimSpace(d.TimePeriod),
		UserID:      strings.TrimSpace(d.UserID),
		UserName:    strings.TrimSpace(d.UserName),
	}

	if n.Title == "" {
		return Draft{}, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(n.Title) > MaxTitleLength {
		return Draft{}, fmt.Errorf("title too long (max %d): %w", MaxTitleLength, domain.ErrInvalidInput)
	}
	if n.Description == "" {
		return Draft{}, fmt.Errorf("description is required: %w", domain.ErrInvalidInput)
	}
	if len(n.Description) > MaxDescriptionSize {
		return Draft{}, fmt.Errorf(
			"description too large (max %d bytes): %w", MaxDescriptionSize, domain.ErrInvalidInput,
		)
	}

	seen := make(map[string]bool, len(d.Tags))
	for _, t := range d.Tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		if utf8.RuneCountInString(t) > maxTagLength {
			return Draft{}, fmt.Errorf("tag %q too long (max %d): %w", t, maxTagLength, domain.ErrInvalidInput)
		}
		seen[t] = true
		n.Tags = append(n.Tags, t)
	}
	if len(n.Tags) > MaxTags {
		return Draft{}, fmt.Errorf("too many tags (max %d): %w", MaxTags, domain.ErrInvalidInput)
	}

	return n, nil
}

// Filter narrows item listings. Category matches case-insensitively;
// Limit <= 0 means no limit.
type Filter struct {
	Category string
	Limit    int
}

// Item is the cultural item aggregate (immutable value object).
type Item struct {
	id        string
	draft     Draft
	createdAt time.Time
	updatedAt time.Time
	risk      risk.Result
	embedding []float32
}

// New validates the draft and creates an item with a fresh time-ordered ID.
func New(d Draft, now time.Time) (Item, error) {
	n, err := d.Normalize()
	if err != nil {
		return Item{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Item{}, fmt.Errorf("generate item id: %w", err)
	}
	now = now.UTC()
	return Item{id: id.String(), draft: n, createdAt: now, updatedAt: now}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(
	id string, d Draft, createdAt, updatedAt time.Time, r risk.Result, embedding []float32,
) Item {
	return Item{id: id, draft: d, createdAt: createdAt, updatedAt: updatedAt, risk: r, embedding: embedding}
}

// ParseID checks that s is a canonical item ID.
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("item id %q: %w", s, domain.ErrInvalidInput)
	}
	return id.String(), nil
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Draft returns the user-editable fields.
func (i *Item) Draft() Draft {
	d := i.draft
	d.Tags = append([]string(nil), i.draft.Tags...)
	return d
}

func (i *Item) Title() string       { return i.draft.Title }
func (i *Item) Category() string    { return i.draft.Category }
func (i *Item) Description() string { return i.draft.Description }
func (i *Item) Language() string    { return i.draft.Language }

// CreatedAt returns the creation time in UTC.
func (i *Item) CreatedAt() time.Time { return i.createdAt }

// UpdatedAt returns the last modification time in UTC.
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }

// Risk returns the last assessment.
func (i *Item) Risk() risk.Result { return i.risk }

// Embedding returns the description vector.
func (i *Item) Embedding() []float32 { return i.embedding }

// Replace returns a copy with new user fields. ID and creation time are kept;
// the previous assessment is dropped because it no longer describes the text.
func (i *Item) Replace(d Draft, now time.Time) (Item, error) {
	n, err := d.Normalize()
	if err != nil {
		return Item{}, err
	}
	return Item{id: i.id, draft: n, createdAt: i.createdAt, updatedAt: now.UTC()}, nil
}

// WithAssessment returns a copy carrying the risk result and the embedding it was computed from.
func (i *Item) WithAssessment(r risk.Result, embedding []float32) Item {
	c := *i
	c.risk = r
	c.embedding = embedding
	return c
}
