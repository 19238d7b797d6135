package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/access"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

func TestComment_Lifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice@example.com", false)
	bob := e.user(t, "bob@example.com", false)
	a, _ := e.articles.Create(ctx, alice, ArticleInput{Title: "Post", Content: "x", Status: models.StatusPublished})

	c1, err := e.comments.Create(ctx, bob, a.Slug, "nice")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, c1.OwnerID)
	assert.Equal(t, a.ID, c1.ArticleID)

	e.clock.Advance(time.Second)
	c2, err := e.comments.Create(ctx, alice, a.Slug, "thanks")
	require.NoError(t, err)

	list, err := e.comments.List(ctx, models.Anonymous("ip"), a.Slug)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c1.ID, list[0].ID)
	assert.Equal(t, c2.ID, list[1].ID)

	e.clock.Advance(time.Second)
	upd, err := e.comments.Update(ctx, bob, a.Slug, c1.ID, "very nice")
	require.NoError(t, err)
	assert.Equal(t, "very nice", upd.Content)
	assert.True(t, upd.UpdatedAt.After(upd.CreatedAt))

	_, err = e.comments.Update(ctx, alice, a.Slug, c1.ID, "edited by author of the post")
	assert.ErrorIs(t, err, common.ErrorForbidden)

	got, err := e.comments.Get(ctx, models.Anonymous("ip"), a.Slug, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, "very nice", got.Content)

	assert.ErrorIs(t, e.comments.Delete(ctx, alice, a.Slug, c1.ID), common.ErrorForbidden)
	require.NoError(t, e.comments.Delete(ctx, bob, a.Slug, c1.ID))
	_, err = e.comments.Get(ctx, bob, a.Slug, c1.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestComment_MustBelongToArticle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice@example.com", false)
	a, _ := e.articles.Create(ctx, alice, ArticleInput{Title: "One", Content: "x", Status: models.StatusPublished})
	b, _ := e.articles.Create(ctx, alice, ArticleInput{Title: "Two", Content: "x", Status: models.StatusPublished})
	c, _ := e.comments.Create(ctx, alice, a.Slug, "on one")

	_, err := e.comments.Get(ctx, alice, b.Slug, c.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, e.comments.Delete(ctx, alice, b.Slug, c.ID), common.ErrorNotFound)
}

func TestComment_DraftArticleHidesComments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice@example.com", false)
	bob := e.user(t, "bob@example.com", false)
	a, _ := e.articles.Create(ctx, alice, ArticleInput{Title: "Draft", Content: "x"})

	_, err := e.comments.Create(ctx, bob, a.Slug, "hi")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = e.comments.List(ctx, bob, a.Slug)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = e.comments.Create(ctx, alice, a.Slug, "note to self")
	assert.NoError(t, err)
}

func TestComment_CreateRequiresAuthenticationAndIsThrottled(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice@example.com", false)
	a, _ := e.articles.Create(ctx, alice, ArticleInput{Title: "Post", Content: "x", Status: models.StatusPublished})

	assert.ErrorIs(t, e.comments.AdmitCreate(ctx, models.Anonymous("ip")), common.ErrorUnauthorized)
	_, err := e.comments.Create(ctx, models.Anonymous("ip"), a.Slug, "hi")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	for i := 0; i < 15; i++ {
		require.NoError(t, e.comments.AdmitCreate(ctx, alice))
		_, err := e.comments.Create(ctx, alice, a.Slug, "hi")
		require.NoError(t, err)
	}
	n, ok := access.RetryAfter(e.comments.AdmitCreate(ctx, alice))
	require.True(t, ok)
	assert.Equal(t, 3600, n)

	e.clock.Advance(time.Hour)
	require.NoError(t, e.comments.AdmitCreate(ctx, alice))
	_, err = e.comments.Create(ctx, alice, a.Slug, "fresh window")
	assert.NoError(t, err)
}
