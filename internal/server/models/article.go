package models

import "time"

// Status is the publication state of an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusReview    Status = "review"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived, StatusReview:
		return true
	}
	return false
}

// Article is a content item. Slug and CreatedAt are fixed at creation;
// OwnerID is the creating actor and never changes.
type Article struct {
	ID        string
	OwnerID   string
	Title     string
	Slug      string
	Content   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Article) Owner() string { return a.OwnerID }

// ArticleFilter narrows a list query. Zero fields do not filter.
type ArticleFilter struct {
	// PublishedBefore keeps only published articles created at or before it.
	PublishedBefore *time.Time
	OwnerID         string
	TitleContains   string
	NewestFirst     bool
}

// ArticlePatch holds the mutable article fields; nil means unchanged.
type ArticlePatch struct {
	Title   *string
	Content *string
	Status  *Status
}
