// Package access is the request authorization facade. Every entry point
// passes through a Gate, which applies, in order and stopping at the first
// failure: the rate limiter, the authentication requirement, the visibility
// policy and the object permission policy.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cms/internal/clock"
	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/logging"
	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/policy"
	"github.com/dmitrijs2005/cms/internal/server/throttle"
)

// ThrottledError is returned when a rate budget is exhausted.
type ThrottledError struct {
	Scope      throttle.Scope
	RetryAfter int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("request was throttled, expected available in %d seconds", e.RetryAfter)
}

// RetryAfter extracts the retry guidance carried by err, if any.
func RetryAfter(err error) (int, bool) {
	var te *ThrottledError
	if errors.As(err, &te) {
		return te.RetryAfter, true
	}
	return 0, false
}

// Gate composes the limiter with the visibility and permission policies.
type Gate struct {
	limiter *throttle.Limiter
	clock   clock.Clock
	log     logging.Logger
}

func NewGate(limiter *throttle.Limiter, c clock.Clock, log logging.Logger) *Gate {
	return &Gate{limiter: limiter, clock: c, log: log.With("module", "access")}
}

// Now is the time the gate evaluates visibility at.
func (g *Gate) Now() time.Time { return g.clock.Now() }

// Throttle charges one attempt to scope for actor. An empty scope, or a
// user-only scope with an anonymous actor, is not counted.
func (g *Gate) Throttle(ctx context.Context, actor models.Actor, scope throttle.Scope) error {
	if scope == "" || (scope.UserOnly() && !actor.IsAuthenticated) {
		return nil
	}

	d, err := g.limiter.Check(ctx, scope, actor.ThrottleKey())
	if err != nil {
		return fmt.Errorf("throttle %s: %w", scope, err)
	}
	if !d.Allowed {
		g.log.Debug(ctx, "request throttled", "scope", scope, "count", d.Count, "limit", d.Limit, "retry_after", d.RetryAfterSeconds())
		return &ThrottledError{Scope: scope, RetryAfter: d.RetryAfterSeconds()}
	}
	return nil
}

// Enter runs the checks that need no target: the rate limit for scope,
// then the authentication requirement of action.
func (g *Gate) Enter(ctx context.Context, actor models.Actor, action policy.Action, scope throttle.Scope) error {
	if err := g.Throttle(ctx, actor, scope); err != nil {
		return err
	}
	if action.RequiresAuthentication() && !actor.IsAuthenticated {
		return common.ErrorUnauthorized
	}
	return nil
}

// Permit runs the checks against a loaded target. item is the article whose
// visibility governs the request (the target itself, or a comment's parent)
// and object is the owned entity acted on, nil for create. An invisible
// item reads as common.ErrorNotFound for every action so that existence
// never leaks; a failed ownership check is common.ErrorForbidden.
func (g *Gate) Permit(actor models.Actor, action policy.Action, item *models.Article, object models.Owned) error {
	if item != nil && !policy.IsVisible(actor, item, g.clock.Now()) {
		return common.ErrorNotFound
	}
	if !action.IsRead() && !policy.CanPerform(actor, action, object) {
		return common.ErrorForbidden
	}
	return nil
}

// Filter restricts f to what actor may see in a list or search.
func (g *Gate) Filter(actor models.Actor, f models.ArticleFilter) models.ArticleFilter {
	return policy.ListFilter(actor, g.clock.Now(), f)
}
