package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/cms/internal/clock"
	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/access"
	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/policy"
	"github.com/dmitrijs2005/cms/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cms/internal/server/throttle"
)

// CommentService implements the comment entry points. Every comment is
// addressed through its article, whose visibility gates the request.
type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gate        *access.Gate
	clock       clock.Clock
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, gate *access.Gate, c clock.Clock) *CommentService {
	return &CommentService{db: db, repomanager: m, gate: gate, clock: c}
}

// List returns the comments of the article at slug, oldest first.
func (s *CommentService) List(ctx context.Context, actor models.Actor, slug string) ([]*models.Comment, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionRead, ""); err != nil {
		return nil, err
	}
	article, err := s.article(ctx, actor, policy.ActionRead, slug)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Comments(s.db).ListByArticle(ctx, article.ID)
}

// AdmitCreate charges one comment attempt to actor and checks that actor
// may create comments at all. Callers run it before decoding the payload.
func (s *CommentService) AdmitCreate(ctx context.Context, actor models.Actor) error {
	return s.gate.Enter(ctx, actor, policy.ActionCreate, throttle.ScopeCommentCreate)
}

// Create adds a comment by actor to the article at slug. The attempt must
// already have been admitted with AdmitCreate.
func (s *CommentService) Create(ctx context.Context, actor models.Actor, slug, content string) (*models.Comment, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionCreate, ""); err != nil {
		return nil, err
	}
	article, err := s.article(ctx, actor, policy.ActionCreate, slug)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	comment := &models.Comment{
		ArticleID: article.ID,
		OwnerID:   policy.AssignOwner(actor),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.repomanager.Comments(s.db).Create(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}
	return created, nil
}

// Get returns comment id of the article at slug.
func (s *CommentService) Get(ctx context.Context, actor models.Actor, slug, id string) (*models.Comment, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionRead, ""); err != nil {
		return nil, err
	}
	return s.load(ctx, actor, policy.ActionRead, slug, id)
}

// Update replaces the content of a comment owned by actor.
func (s *CommentService) Update(ctx context.Context, actor models.Actor, slug, id, content string) (*models.Comment, error) {
	if err := s.gate.Enter(ctx, actor, policy.ActionUpdate, ""); err != nil {
		return nil, err
	}
	comment, err := s.load(ctx, actor, policy.ActionUpdate, slug, id)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Comments(s.db).Update(ctx, comment.ID, content, s.clock.Now())
}

// Delete removes a comment owned by actor.
func (s *CommentService) Delete(ctx context.Context, actor models.Actor, slug, id string) error {
	if err := s.gate.Enter(ctx, actor, policy.ActionDelete, ""); err != nil {
		return err
	}
	comment, err := s.load(ctx, actor, policy.ActionDelete, slug, id)
	if err != nil {
		return err
	}
	return s.repomanager.Comments(s.db).Delete(ctx, comment.ID)
}

func (s *CommentService) load(ctx context.Context, actor models.Actor, action policy.Action, slug, id string) (*models.Comment, error) {
	article, err := s.repomanager.Articles(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	comment, err := s.repomanager.Comments(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.ArticleID != article.ID {
		return nil, common.ErrorNotFound
	}
	if err := s.gate.Permit(actor, action, article, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// article loads the parent article for a collection-level action.
func (s *CommentService) article(ctx context.Context, actor models.Actor, action policy.Action, slug string) (*models.Article, error) {
	article, err := s.repomanager.Articles(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, action, article, nil); err != nil {
		return nil, err
	}
	return article, nil
}
