// Package staff creates operator accounts outside the public registration
// flow. Staff accounts are verified on creation and may see every article.
package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/auth"
	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/repositories/users"
	"github.com/dmitrijs2005/cms/internal/server/services"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrEmptyField       = errors.New("username and password are required")
)

// Input describes the account to create.
type Input struct {
	Email    string
	Username string
	Password string
}

// Create stores a verified staff account.
func Create(ctx context.Context, repo users.Repository, in Input) (*models.User, error) {
	email := services.NormalizeEmail(in.Email)
	if err := validator.New().Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, ErrEmptyField
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{
		Email:        email,
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		IsStaff:      true,
		IsVerified:   true,
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		return nil, fmt.Errorf("email %s: %w", email, err)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
