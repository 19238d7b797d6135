package verification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cms/internal/clock"
	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu      sync.Mutex
	records map[string]models.VerificationRecord
	writes  int
}

func newFakeStore(ids ...string) *fakeStore {
	s := &fakeStore{records: map[string]models.VerificationRecord{}}
	for _, id := range ids {
		s.records[id] = models.VerificationRecord{UserID: id}
	}
	return s
}

func (s *fakeStore) UpdateVerification(_ context.Context, userID string, fn func(*models.VerificationRecord) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return common.ErrorNotFound
	}
	changed, err := fn(&rec)
	if err != nil || !changed {
		return err
	}
	s.records[userID] = rec
	s.writes++
	return nil
}

func newManager(t *testing.T, ids ...string) (*Manager, *fakeStore, *clock.Fake) {
	t.Helper()
	s := newFakeStore(ids...)
	c := clock.NewFake(t0)
	return NewManager(s, c, 0), s, c
}

func TestIssue_SetsTokenAndExpiry(t *testing.T) {
	m, s, _ := newManager(t, "u1")

	tok, err := m.Issue(context.Background(), "u1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	rec := s.records["u1"]
	assert.Equal(t, tok, rec.Token)
	assert.Equal(t, t0, rec.IssuedAt)
	assert.Equal(t, t0.Add(24*time.Hour), rec.ExpiresAt)
}

func TestValidate_HappyPath(t *testing.T) {
	m, s, _ := newManager(t, "u1")
	ctx := context.Background()
	tok, _ := m.Issue(ctx, "u1")

	res, err := m.Validate(ctx, "u1", tok)
	require.NoError(t, err)
	assert.Equal(t, Verified, res)

	rec := s.records["u1"]
	assert.True(t, rec.Verified)
	assert.Empty(t, rec.Token)
	assert.True(t, rec.ExpiresAt.IsZero())
}

func TestValidate_AlreadyVerifiedIsIdempotent(t *testing.T) {
	m, s, _ := newManager(t, "u1")
	ctx := context.Background()
	tok, _ := m.Issue(ctx, "u1")
	_, _ = m.Validate(ctx, "u1", tok)
	writes := s.writes

	for _, presented := range []string{tok, "", "garbage"} {
		res, err := m.Validate(ctx, "u1", presented)
		require.NoError(t, err)
		assert.Equal(t, AlreadyVerified, res)
	}
	assert.Equal(t, writes, s.writes, "re-validation must not write")

	_, err := m.Issue(ctx, "u1")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestValidate_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("no token issued", func(t *testing.T) {
		m, _, _ := newManager(t, "u1")
		res, err := m.Validate(ctx, "u1", "anything")
		require.NoError(t, err)
		assert.Equal(t, InvalidOrExpired, res)
	})

	t.Run("mismatch", func(t *testing.T) {
		m, _, _ := newManager(t, "u1")
		_, _ = m.Issue(ctx, "u1")
		res, err := m.Validate(ctx, "u1", "wrong")
		require.NoError(t, err)
		assert.Equal(t, InvalidOrExpired, res)
	})

	t.Run("expired", func(t *testing.T) {
		m, _, c := newManager(t, "u1")
		tok, _ := m.Issue(ctx, "u1")
		c.Advance(24*time.Hour + time.Second)
		res, err := m.Validate(ctx, "u1", tok)
		require.NoError(t, err)
		assert.Equal(t, InvalidOrExpired, res)
	})

	t.Run("exactly at expiry is still valid", func(t *testing.T) {
		m, _, c := newManager(t, "u1")
		tok, _ := m.Issue(ctx, "u1")
		c.Advance(24 * time.Hour)
		res, err := m.Validate(ctx, "u1", tok)
		require.NoError(t, err)
		assert.Equal(t, Verified, res)
	})

	t.Run("unknown user", func(t *testing.T) {
		m, _, _ := newManager(t)
		res, err := m.Validate(ctx, "ghost", "t")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		assert.Equal(t, InvalidOrExpired, res)
	})
}

func TestIssue_InvalidatesPreviousToken(t *testing.T) {
	m, _, _ := newManager(t, "u1")
	ctx := context.Background()

	old, _ := m.Issue(ctx, "u1")
	fresh, _ := m.Issue(ctx, "u1")
	require.NotEqual(t, old, fresh)

	res, err := m.Validate(ctx, "u1", old)
	require.NoError(t, err)
	assert.Equal(t, InvalidOrExpired, res)

	res, err = m.Validate(ctx, "u1", fresh)
	require.NoError(t, err)
	assert.Equal(t, Verified, res)
}

func TestValidate_ConcurrentAttemptsVerifyOnce(t *testing.T) {
	m, _, _ := newManager(t, "u1")
	ctx := context.Background()
	tok, _ := m.Issue(ctx, "u1")

	var verified, already atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.Validate(ctx, "u1", tok)
			if err != nil {
				return
			}
			switch res {
			case Verified:
				verified.Add(1)
			case AlreadyVerified:
				already.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, verified.Load())
	assert.EqualValues(t, 19, already.Load())
}

type errStore struct{}

func (errStore) UpdateVerification(context.Context, string, func(*models.VerificationRecord) (bool, error)) error {
	return errors.New("db down")
}

func TestManager_StoreErrors(t *testing.T) {
	m := NewManager(errStore{}, clock.NewFake(t0), time.Hour)
	_, err := m.Issue(context.Background(), "u1")
	require.Error(t, err)
	_, err = m.Validate(context.Background(), "u1", "t")
	require.Error(t, err)
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "verified", Verified.String())
	assert.Equal(t, "already_verified", AlreadyVerified.String())
	assert.Equal(t, "invalid_or_expired", InvalidOrExpired.String())
}
