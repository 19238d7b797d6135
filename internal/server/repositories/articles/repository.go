// Package articles persists articles and resolves their slugs.
package articles

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cms/internal/server/models"
)

// Repository stores articles. Create derives the slug from the title and
// suffixes it until it is unique. Missing articles yield common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, article *models.Article) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	Update(ctx context.Context, id string, patch models.ArticlePatch, now time.Time) (*models.Article, error)
	Delete(ctx context.Context, id string) error
}
