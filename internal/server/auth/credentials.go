package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

// UserLookup is the slice of the users repository the verifier needs.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// passwordCost is the bcrypt cost of stored hashes and of the placeholder
// hash compared against unknown emails.
const passwordCost = bcrypt.DefaultCost

// Verifier checks email/password pairs and issues and resolves bearer tokens.
type Verifier struct {
	users     UserLookup
	secret    []byte
	validity  time.Duration
	dummyHash []byte
}

// NewVerifier returns a Verifier that signs tokens with secret.
func NewVerifier(users UserLookup, secret []byte, validity time.Duration) *Verifier {
	// compared against when the email is unknown so both paths cost one bcrypt run
	dummy, _ := bcrypt.GenerateFromPassword([]byte("unknown-user-placeholder"), passwordCost)
	return &Verifier{users: users, secret: secret, validity: validity, dummyHash: dummy}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown emails and wrong passwords both yield common.ErrorUnauthorized.
func (v *Verifier) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// IssueToken returns a bearer token for user.
func (v *Verifier) IssueToken(user *models.User) (string, error) {
	return GenerateToken(user.ID, v.secret, v.validity)
}

// Resolve turns a bearer token into the authenticated actor it names. The
// user is reloaded so staff and verification flags are current.
func (v *Verifier) Resolve(ctx context.Context, token string) (models.Actor, error) {
	userID, err := GetUserIDFromToken(token, v.secret)
	if err != nil {
		return models.Actor{}, err
	}

	user, err := v.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Actor{}, common.ErrInvalidToken
		}
		return models.Actor{}, err
	}
	return user.Actor(), nil
}
