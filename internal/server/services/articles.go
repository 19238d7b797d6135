package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/cms/internal/clock"
	"github.com/dmitrijs2005/cms/internal/server/access"
	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/policy"
	"github.com/dmitrijs2005/cms/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cms/internal/server/throttle"
)

// ArticleInput is the client-supplied part of an article.
type ArticleInput struct {
	Title   string
	Content string
	Status  models.Status
}

// ArticleService implements the article entry points: list, create,
// retrieve, update, delete and the two searches.
type ArticleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gate        *access.Gate
	clock       clock.Clock
}

func NewArticleService(db *sql.DB, m repomanager.RepositoryManager, gate *access.Gate, c clock.Clock) *ArticleService {
	return &ArticleService{db: db, repomanager: m, gate: gate, clock: c}
}

// List returns the articles visible to actor, oldest first.
func (s *ArticleService) List(ctx context.Context, actor models.Actor) ([]*models.Article, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionRead, throttle.ScopeArticleList); err != nil {
		return nil, err
	}
	return s.repomanager.Articles(s.db).List(ctx, s.gate.Filter(actor, models.ArticleFilter{}))
}

// Create stores a new article owned by actor. The slug is derived from the
// title; the status defaults to draft.
func (s *ArticleService) Create(ctx context.Context, actor models.Actor, in ArticleInput) (*models.Article, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionCreate, ""); err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, policy.ActionCreate, nil, nil); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	now := s.clock.Now()
	article := &models.Article{
		OwnerID:   policy.AssignOwner(actor),
		Title:     in.Title,
		Content:   in.Content,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repomanager.Articles(s.db).Create(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("error creating article: %w", err)
	}
	return created, nil
}

// Get returns the article at slug if actor may see it.
func (s *ArticleService) Get(ctx context.Context, actor models.Actor, slug string) (*models.Article, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionRead, ""); err != nil {
		return nil, err
	}
	return s.load(ctx, actor, policy.ActionRead, slug)
}

// Update applies patch to the article at slug. Only the owner may do so;
// the slug and creation time never change.
func (s *ArticleService) Update(ctx context.Context, actor models.Actor, slug string, patch models.ArticlePatch) (*models.Article, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionUpdate, ""); err != nil {
		return nil, err
	}
	article, err := s.load(ctx, actor, policy.ActionUpdate, slug)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Articles(s.db).Update(ctx, article.ID, patch, s.clock.Now())
}

// Delete removes the article at slug together with its comments.
func (s *ArticleService) Delete(ctx context.Context, actor models.Actor, slug string) error {
	if err := s.gate.Enter(ctx, actor, policy.ActionDelete, ""); err != nil {
		return err
	}
	article, err := s.load(ctx, actor, policy.ActionDelete, slug)
	if err != nil {
		return err
	}
	return s.repomanager.Articles(s.db).Delete(ctx, article.ID)
}

// Search returns visible articles whose title contains q, newest first.
func (s *ArticleService) Search(ctx context.Context, actor models.Actor, q string) ([]*models.Article, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionRead, throttle.ScopeSearch); err != nil {
		return nil, err
	}
	f := s.gate.Filter(actor, models.ArticleFilter{TitleContains: q, NewestFirst: true})
	return s.repomanager.Articles(s.db).List(ctx, f)
}

// SearchByAuthorEmail returns the visible articles of the user registered
// under email, newest first. An unknown email is common.ErrorNotFound.
func (s *ArticleService) SearchByAuthorEmail(ctx context.Context, actor models.Actor, email string) ([]*models.Article, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionRead, ""); err != nil {
		return nil, err
	}
	author, err := s.repomanager.Users(s.db).GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	f := s.gate.Filter(actor, models.ArticleFilter{OwnerID: author.ID, NewestFirst: true})
	return s.repomanager.Articles(s.db).List(ctx, f)
}

func (s *ArticleService) load(ctx context.Context, actor models.Actor, action policy.Action, slug string) (*models.Article, error) {
	article, err := s.repomanager.Articles(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, action, article, article); err != nil {
		return nil, err
	}
	return article, nil
}
