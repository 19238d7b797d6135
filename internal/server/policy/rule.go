// Package policy holds the pure authorization predicates: which actors may
// see a content item and which may act on an owned object. Predicates are
// small named rules composed with All and Any; none of them block or fail.
package policy

import (
	"time"

	"github.com/dmitrijs2005/cms/internal/server/models"
)

// Effect is the outcome of a single rule.
type Effect int

const (
	Abstain Effect = iota
	Allow
	Deny
)

func (e Effect) String() string {
	switch e {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "abstain"
	}
}

// Action is the operation an actor attempts.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// IsRead reports whether a is a read-class action.
func (a Action) IsRead() bool { return a == ActionRead }

// IsWrite reports whether a mutates an existing object.
func (a Action) IsWrite() bool { return a == ActionUpdate || a == ActionDelete }

// RequiresAuthentication reports whether a needs an authenticated actor.
func (a Action) RequiresAuthentication() bool { return !a.IsRead() }

// Subject is what a rule looks at. Object is nil for collection-level
// checks such as create; Item is set only for visibility checks.
type Subject struct {
	Actor  models.Actor
	Action Action
	Object models.Owned
	Item   *models.Article
	Now    time.Time
}

// Rule is a named predicate.
type Rule struct {
	Name string
	Eval func(Subject) Effect
}

// All denies on the first Deny, allows when at least one rule allowed, and
// abstains when every rule abstained.
func All(name string, rules ...Rule) Rule {
	return Rule{Name: name, Eval: func(s Subject) Effect {
		out := Abstain
		for _, r := range rules {
			switch r.Eval(s) {
			case Deny:
				return Deny
			case Allow:
				out = Allow
			}
		}
		return out
	}}
}

// Any allows on the first Allow, denies when at least one rule denied, and
// abstains when every rule abstained.
func Any(name string, rules ...Rule) Rule {
	return Rule{Name: name, Eval: func(s Subject) Effect {
		out := Abstain
		for _, r := range rules {
			switch r.Eval(s) {
			case Allow:
				return Allow
			case Deny:
				out = Deny
			}
		}
		return out
	}}
}

// Permits evaluates r and treats Abstain as Deny.
func Permits(r Rule, s Subject) bool {
	return r.Eval(s) == Allow
}
