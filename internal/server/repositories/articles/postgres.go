package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/dbx"
	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/slug"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const articleColumns = `id, owner_id, title, slug, content, status, created_at, updated_at`

// Create inserts article under the first free slug candidate. Taken slugs
// are skipped with ON CONFLICT so a collision never aborts an enclosing
// transaction.
func (r *PostgresRepository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO articles (id, owner_id, title, slug, content, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (slug) DO NOTHING
		 RETURNING slug
		 `

	s, err := slug.Resolve(slug.Make(article.Title), func(candidate string) (bool, error) {
		var got string
		err := r.db.QueryRowContext(ctx, query, article.ID, article.OwnerID, article.Title, candidate,
			article.Content, string(article.Status), article.CreatedAt, article.UpdatedAt).Scan(&got)
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("db error: %w", err)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	article.Slug = s
	return article, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, s string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`
	return r.getOne(ctx, query, s)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) List(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.PublishedBefore != nil {
		where = append(where, "status = "+arg(string(models.StatusPublished)), "created_at <= "+arg(*f.PublishedBefore))
	}
	if f.OwnerID != "" {
		where = append(where, "owner_id = "+arg(f.OwnerID))
	}
	if f.TitleContains != "" {
		where = append(where, "title ILIKE "+arg("%"+escapeLike(f.TitleContains)+"%"))
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.NewestFirst {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Article
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.ArticlePatch, now time.Time) (*models.Article, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	var status sql.NullString
	if patch.Status != nil {
		status = sql.NullString{String: string(*patch.Status), Valid: true}
	}

	query :=
		`UPDATE articles
		 SET title = COALESCE($2, title), content = COALESCE($3, content),
		     status = COALESCE($4, status), updated_at = $5
		 WHERE id = $1
		 RETURNING ` + articleColumns

	return r.getOne(ctx, query, id, nullable(patch.Title), nullable(patch.Content), status, now)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Article, error) {
	a, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Article, error) {
	a := &models.Article{}
	var status string
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Slug, &a.Content, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = models.Status(status)
	return a, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
