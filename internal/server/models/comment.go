package models

import "time"

// Comment belongs to exactly one article for its whole life.
type Comment struct {
	ID        string
	ArticleID string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Comment) Owner() string { return c.OwnerID }
