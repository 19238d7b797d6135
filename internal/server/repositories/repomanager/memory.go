package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cms/internal/dbx"
	"github.com/dmitrijs2005/cms/internal/server/repositories/articles"
	"github.com/dmitrijs2005/cms/internal/server/repositories/comments"
	"github.com/dmitrijs2005/cms/internal/server/repositories/users"
	"github.com/dmitrijs2005/cms/internal/server/verification"
)

// MemoryRepositoryManager serves one shared set of in-memory repositories
// regardless of the DBTX passed in. Deleting an article removes its comments.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	articles *articles.MemoryRepository
	comments *comments.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	m := &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		articles: articles.NewMemoryRepository(),
		comments: comments.NewMemoryRepository(),
	}
	m.articles.OnDelete(m.comments.DeleteByArticle)
	return m
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Articles(dbx.DBTX) articles.Repository { return m.articles }

func (m *MemoryRepositoryManager) Comments(dbx.DBTX) comments.Repository { return m.comments }

func (m *MemoryRepositoryManager) Verifications(*sql.DB) verification.Store { return m.users }
