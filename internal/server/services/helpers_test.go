package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cms/internal/clock"
	"github.com/dmitrijs2005/cms/internal/logging"
	"github.com/dmitrijs2005/cms/internal/server/access"
	"github.com/dmitrijs2005/cms/internal/server/auth"
	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cms/internal/server/throttle"
	"github.com/dmitrijs2005/cms/internal/server/verification"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type sent struct {
	user *models.User
	url  string
}

// syncNotifier records deliveries inline.
type syncNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *syncNotifier) SendVerificationEmail(_ context.Context, u *models.User, url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{user: u, url: url})
}

type env struct {
	clock    *clock.Fake
	repos    *repomanager.MemoryRepositoryManager
	gate     *access.Gate
	articles *ArticleService
	comments *CommentService
	users    *UserService
	notifier *syncNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	c := clock.NewFake(t0)
	repos := repomanager.NewMemoryRepositoryManager()
	limiter := throttle.NewLimiter(throttle.NewMemoryStore(), c)
	gate := access.NewGate(limiter, c, logging.NewNop())
	verifier := auth.NewVerifier(repos.Users(nil), []byte("secret"), time.Hour)
	tokens := verification.NewManager(repos.Verifications(nil), c, 0)
	n := &syncNotifier{}

	return &env{
		clock:    c,
		repos:    repos,
		gate:     gate,
		articles: NewArticleService(nil, repos, gate, c),
		comments: NewCommentService(nil, repos, gate, c),
		users:    NewUserService(nil, repos, gate, verifier, tokens, n, "http://api.test/", logging.NewNop()),
		notifier: n,
	}
}

// user registers an account directly and returns its actor.
func (e *env) user(t *testing.T, email string, staff bool) models.Actor {
	t.Helper()
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	u, err := e.repos.Users(nil).Create(context.Background(), &models.User{Email: email, Username: email, PasswordHash: hash, IsStaff: staff})
	require.NoError(t, err)
	return u.Actor()
}
