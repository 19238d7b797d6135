package articles

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/slug"
)

// MemoryRepository keeps articles in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]*models.Article
	idBySlug map[string]string
	onDelete []func(articleID string)
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[string]*models.Article),
		idBySlug: make(map[string]string),
	}
}

// OnDelete registers fn to run after an article is removed.
func (r *MemoryRepository) OnDelete(fn func(articleID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDelete = append(r.onDelete, fn)
}

func (r *MemoryRepository) Create(_ context.Context, article *models.Article) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := slug.Resolve(slug.Make(article.Title), func(candidate string) (bool, error) {
		_, taken := r.idBySlug[candidate]
		return taken, nil
	})
	if err != nil {
		return nil, err
	}

	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	article.Slug = s

	stored := *article
	r.byID[article.ID] = &stored
	r.idBySlug[s] = article.ID
	return article, nil
}

func (r *MemoryRepository) GetBySlug(ctx context.Context, s string) (*models.Article, error) {
	r.mu.RLock()
	id, ok := r.idBySlug[s]
	r.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *a
	return &out, nil
}

func (r *MemoryRepository) List(_ context.Context, f models.ArticleFilter) ([]*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(f.TitleContains)
	var out []*models.Article
	for _, a := range r.byID {
		if f.PublishedBefore != nil && (a.Status != models.StatusPublished || a.CreatedAt.After(*f.PublishedBefore)) {
			continue
		}
		if f.OwnerID != "" && a.OwnerID != f.OwnerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(a.Title), needle) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.NewestFirst {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, patch models.ArticlePatch, now time.Time) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	a.UpdatedAt = now

	out := *a
	return &out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	a, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
		delete(r.idBySlug, a.Slug)
	}
	hooks := r.onDelete
	r.mu.Unlock()

	if !ok {
		return common.ErrorNotFound
	}
	for _, fn := range hooks {
		fn(id)
	}
	return nil
}
