// Package users persists registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/cms/internal/server/models"
)

// Repository stores users. Lookups of missing users return
// common.ErrorNotFound; creating a second user with the same email returns
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
