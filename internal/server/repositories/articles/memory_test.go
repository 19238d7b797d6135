package articles

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func mk(title, owner string, status models.Status, created time.Time) *models.Article {
	return &models.Article{Title: title, OwnerID: owner, Content: "c", Status: status, CreatedAt: created, UpdatedAt: created}
}

func slugs(list []*models.Article) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Slug)
	}
	return out
}

func TestMemoryRepository_SlugCollisions(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	a1, err := r.Create(ctx, mk("Hello World", "u1", models.StatusDraft, t0))
	require.NoError(t, err)
	a2, err := r.Create(ctx, mk("Hello World", "u2", models.StatusDraft, t0))
	require.NoError(t, err)
	a3, err := r.Create(ctx, mk("hello  world!", "u2", models.StatusDraft, t0))
	require.NoError(t, err)
	s, err := r.Create(ctx, mk("Search", "u2", models.StatusDraft, t0))
	require.NoError(t, err)

	assert.Equal(t, "hello-world", a1.Slug)
	assert.Equal(t, "hello-world-1", a2.Slug)
	assert.Equal(t, "hello-world-2", a3.Slug)
	assert.Equal(t, "search-1", s.Slug)
}

func TestMemoryRepository_ConcurrentCreatesGetUniqueSlugs(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Create(ctx, mk("Same", "u", models.StatusDraft, t0))
		}()
	}
	wg.Wait()

	all, err := r.List(ctx, models.ArticleFilter{})
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, a := range all {
		assert.False(t, seen[a.Slug], "duplicate slug %s", a.Slug)
		seen[a.Slug] = true
	}
	assert.Len(t, seen, 30)
}

func TestMemoryRepository_ListFilters(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	_, _ = r.Create(ctx, mk("Go Tips", "u1", models.StatusPublished, t0))
	_, _ = r.Create(ctx, mk("Rust Tips", "u2", models.StatusPublished, t0.Add(time.Hour)))
	_, _ = r.Create(ctx, mk("Draft go", "u1", models.StatusDraft, t0.Add(2*time.Hour)))
	_, _ = r.Create(ctx, mk("Future go", "u1", models.StatusPublished, t0.Add(48*time.Hour)))

	now := t0.Add(3 * time.Hour)

	all, _ := r.List(ctx, models.ArticleFilter{})
	assert.Equal(t, []string{"go-tips", "rust-tips", "draft-go", "future-go"}, slugs(all))

	pub, _ := r.List(ctx, models.ArticleFilter{PublishedBefore: &now})
	assert.Equal(t, []string{"go-tips", "rust-tips"}, slugs(pub))

	search, _ := r.List(ctx, models.ArticleFilter{PublishedBefore: &now, TitleContains: "TIPS", NewestFirst: true})
	assert.Equal(t, []string{"rust-tips", "go-tips"}, slugs(search))

	mine, _ := r.List(ctx, models.ArticleFilter{OwnerID: "u1", TitleContains: "go"})
	assert.Equal(t, []string{"go-tips", "draft-go", "future-go"}, slugs(mine))
}

func TestMemoryRepository_UpdateKeepsSlugAndCreatedAt(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	a, _ := r.Create(ctx, mk("Hello World", "u1", models.StatusPublished, t0))

	title := "Completely Different"
	later := t0.Add(time.Minute)
	got, err := r.Update(ctx, a.ID, models.ArticlePatch{Title: &title}, later)
	require.NoError(t, err)

	assert.Equal(t, "hello-world", got.Slug)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, "c", got.Content)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)

	_, err = r.Update(ctx, "missing", models.ArticlePatch{}, later)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_DeleteRunsHooksAndFreesSlug(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	a, _ := r.Create(ctx, mk("Hello", "u1", models.StatusDraft, t0))

	var deleted []string
	r.OnDelete(func(id string) { deleted = append(deleted, id) })

	require.NoError(t, r.Delete(ctx, a.ID))
	assert.Equal(t, []string{a.ID}, deleted)

	_, err := r.GetBySlug(ctx, "hello")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, a.ID), common.ErrorNotFound)
}
