// Package throttle implements fixed-window request counting per scope and
// key. Counters live behind a Store so a single process can keep them in
// memory while a fleet shares them in Redis.
package throttle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Scope names a class of endpoints that share one budget.
type Scope string

const (
	ScopeRegister      Scope = "register-anon"
	ScopeLogin         Scope = "login-anon"
	ScopeArticleList   Scope = "article-list-user"
	ScopeCommentCreate Scope = "comment-create-user"
	ScopeSearch        Scope = "search"
)

// UserOnly reports whether s budgets authenticated actors only. Anonymous
// requests in such a scope are not counted.
func (s Scope) UserOnly() bool {
	return s == ScopeArticleList || s == ScopeCommentCreate
}

// Rate is a request budget per fixed window.
type Rate struct {
	Limit  int
	Window time.Duration
}

var periods = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "second": time.Second,
	"m": time.Minute, "min": time.Minute, "minute": time.Minute,
	"h": time.Hour, "hour": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour,
}

// ParseRate parses "N/period" where period is second, minute, hour or day
// (or their short forms s, m, h, d).
func ParseRate(s string) (Rate, error) {
	num, period, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: want N/period", s)
	}
	limit, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || limit <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: limit must be a positive integer", s)
	}
	window, ok := periods[strings.ToLower(strings.TrimSpace(period))]
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: unknown period %q", s, period)
	}
	return Rate{Limit: limit, Window: window}, nil
}

// MustParseRate is ParseRate for constants; it panics on error.
func MustParseRate(s string) Rate {
	r, err := ParseRate(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rate) String() string {
	for _, name := range []string{"day", "hour", "minute", "second"} {
		if periods[name] == r.Window {
			return fmt.Sprintf("%d/%s", r.Limit, name)
		}
	}
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

// DefaultRates are the budgets applied when configuration does not
// override them.
func DefaultRates() map[Scope]Rate {
	return map[Scope]Rate{
		ScopeRegister:      MustParseRate("5/minute"),
		ScopeLogin:         MustParseRate("5/minute"),
		ScopeArticleList:   MustParseRate("50/day"),
		ScopeCommentCreate: MustParseRate("15/hour"),
		ScopeSearch:        MustParseRate("6/minute"),
	}
}

// ParseRates overlays the textual rates in overrides onto DefaultRates.
func ParseRates(overrides map[string]string) (map[Scope]Rate, error) {
	rates := DefaultRates()
	for scope, text := range overrides {
		r, err := ParseRate(text)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", scope, err)
		}
		rates[Scope(scope)] = r
	}
	return rates, nil
}
