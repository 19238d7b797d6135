// Package comments persists article comments.
package comments

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cms/internal/server/models"
)

// Repository stores comments. Missing comments yield common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
	Update(ctx context.Context, id, content string, now time.Time) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}
