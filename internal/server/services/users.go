// Package services contains the server-side operations behind each entry
// point. Every operation passes through the access Gate before it touches a
// repository.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/logging"
	"github.com/dmitrijs2005/cms/internal/server/access"
	"github.com/dmitrijs2005/cms/internal/server/auth"
	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cms/internal/server/throttle"
	"github.com/dmitrijs2005/cms/internal/server/verification"
)

// Notifier queues a verification email. It must not block on delivery.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, user *models.User, verificationURL string)
}

// RegisterInput is a registration request after payload validation.
type RegisterInput struct {
	Email      string
	Username   string
	Password   string
	FirstName  string
	LastName   string
	OtherName  string
	Occupation string
	Bio        string
}

// UserService handles registration, login and email verification.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gate        *access.Gate
	verifier    *auth.Verifier
	tokens      *verification.Manager
	notifier    Notifier
	baseURL     string
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, gate *access.Gate, verifier *auth.Verifier,
	tokens *verification.Manager, notifier Notifier, baseURL string, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		gate:        gate,
		verifier:    verifier,
		tokens:      tokens,
		notifier:    notifier,
		baseURL:     strings.TrimRight(baseURL, "/"),
		log:         log.With("module", "users"),
	}
}

// AdmitRegister charges one registration attempt to actor. Callers run it
// before decoding the payload so that malformed attempts are counted too.
func (s *UserService) AdmitRegister(ctx context.Context, actor models.Actor) error {
	return s.gate.Throttle(ctx, actor, throttle.ScopeRegister)
}

// Register creates an unverified account, issues its verification token
// and queues the verification link. A taken email is common.ErrorAlreadyExists.
// The attempt must already have been admitted with AdmitRegister.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Email:        NormalizeEmail(in.Email),
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		OtherName:    in.OtherName,
		Occupation:   in.Occupation,
		Bio:          in.Bio,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)

	// the account stands even when no link could be sent
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		s.log.Error(ctx, "failed to issue verification token", "user_id", user.ID, "error", err)
		return user, nil
	}
	s.notifier.SendVerificationEmail(ctx, user, s.VerificationURL(user.ID, token))

	return user, nil
}

// VerificationURL is the link a user follows to confirm their email.
func (s *UserService) VerificationURL(userID, token string) string {
	return fmt.Sprintf("%s/v1/auth/verify/%s/%s/", s.baseURL, url.PathEscape(userID), url.PathEscape(token))
}

// AdmitLogin charges one login attempt to actor. Login and token requests
// share this budget.
func (s *UserService) AdmitLogin(ctx context.Context, actor models.Actor) error {
	return s.gate.Throttle(ctx, actor, throttle.ScopeLogin)
}

// Login checks the credentials and returns the user with a bearer token.
// Bad credentials are common.ErrorUnauthorized. The attempt must already
// have been admitted with AdmitLogin.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.verifier.Authenticate(ctx, NormalizeEmail(email), password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.verifier.IssueToken(user)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}

// VerifyEmail consumes a verification token. Unknown users get
// InvalidOrExpired so that the endpoint does not reveal which ids exist.
func (s *UserService) VerifyEmail(ctx context.Context, userID, token string) (verification.Result, error) {
	res, err := s.tokens.Validate(ctx, userID, token)
	if errors.Is(err, common.ErrorNotFound) {
		return verification.InvalidOrExpired, nil
	}
	if err != nil {
		return verification.InvalidOrExpired, err
	}
	if res == verification.Verified {
		s.log.Info(ctx, "email verified", "user_id", userID)
	}
	return res, nil
}

// NormalizeEmail trims email and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
