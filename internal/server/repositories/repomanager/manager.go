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

// RepositoryManager vends repositories bound to a DBTX, so that the same
// service code runs against a pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Articles(db dbx.DBTX) articles.Repository
	Comments(db dbx.DBTX) comments.Repository
	Verifications(db *sql.DB) verification.Store
}
