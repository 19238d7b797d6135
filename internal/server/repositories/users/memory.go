package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

// MemoryRepository keeps users in process memory. It also stores the
// verification records, so it doubles as a verification.Store.
type MemoryRepository struct {
	mu           sync.RWMutex
	byID         map[string]*models.User
	idByEmail    map[string]string
	verification map[string]models.VerificationRecord

	// userLocks serialises verification updates per user.
	userLocks sync.Map
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:         make(map[string]*models.User),
		idByEmail:    make(map[string]string),
		verification: make(map[string]models.VerificationRecord),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.idByEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.idByEmail[user.Email] = user.ID
	r.verification[user.ID] = models.VerificationRecord{UserID: user.ID, Verified: user.IsVerified}

	return user, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.idByEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

// UpdateVerification implements verification.Store.
func (r *MemoryRepository) UpdateVerification(_ context.Context, userID string, fn func(rec *models.VerificationRecord) (bool, error)) error {
	// unknown ids never get a lock entry
	r.mu.RLock()
	_, known := r.verification[userID]
	r.mu.RUnlock()
	if !known {
		return common.ErrorNotFound
	}

	l, _ := r.userLocks.LoadOrStore(userID, &sync.Mutex{})
	lock := l.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	rec, ok := r.verification[userID]
	r.mu.RUnlock()
	if !ok {
		return common.ErrorNotFound
	}

	changed, err := fn(&rec)
	if err != nil || !changed {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.verification[userID] = rec
	if u, ok := r.byID[userID]; ok {
		u.IsVerified = rec.Verified
	}
	return nil
}
