// Package verification manages the single-use email verification token of
// each user: Unverified -> token issued -> Verified.
package verification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/cms/internal/clock"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

// DefaultValidity is how long an issued token stays usable.
const DefaultValidity = 24 * time.Hour

// ErrAlreadyVerified is returned by Issue for users that need no token.
var ErrAlreadyVerified = errors.New("user already verified")

// Result is the outcome of Validate.
type Result int

const (
	InvalidOrExpired Result = iota
	Verified
	AlreadyVerified
)

func (r Result) String() string {
	switch r {
	case Verified:
		return "verified"
	case AlreadyVerified:
		return "already_verified"
	default:
		return "invalid_or_expired"
	}
}

// Store persists verification records. Update must hold an exclusive lock
// on the user's record for the whole load-mutate-save cycle and persist only
// when fn reports a change. Unknown users yield common.ErrorNotFound.
type Store interface {
	UpdateVerification(ctx context.Context, userID string, fn func(rec *models.VerificationRecord) (bool, error)) error
}

// Manager issues and validates tokens.
type Manager struct {
	store    Store
	clock    clock.Clock
	validity time.Duration
	newToken func() string
}

// NewManager constructs a Manager. A non-positive validity means DefaultValidity.
func NewManager(store Store, c clock.Clock, validity time.Duration) *Manager {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Manager{store: store, clock: c, validity: validity, newToken: uuid.NewString}
}

// Issue generates a fresh token for userID, replacing any earlier one.
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	var token string
	err := m.store.UpdateVerification(ctx, userID, func(rec *models.VerificationRecord) (bool, error) {
		if rec.Verified {
			return false, ErrAlreadyVerified
		}
		now := m.clock.Now()
		token = m.newToken()
		rec.Token = token
		rec.IssuedAt = now
		rec.ExpiresAt = now.Add(m.validity)
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Validate consumes token for userID. A user verified earlier always gets
// AlreadyVerified, whatever token is presented.
func (m *Manager) Validate(ctx context.Context, userID, token string) (Result, error) {
	result := InvalidOrExpired
	err := m.store.UpdateVerification(ctx, userID, func(rec *models.VerificationRecord) (bool, error) {
		if rec.Verified {
			result = AlreadyVerified
			return false, nil
		}
		if rec.Token == "" || token == "" || rec.Token != token || m.clock.Now().After(rec.ExpiresAt) {
			result = InvalidOrExpired
			return false, nil
		}
		rec.Clear()
		rec.Verified = true
		result = Verified
		return true, nil
	})
	if err != nil {
		return InvalidOrExpired, err
	}
	return result, nil
}
