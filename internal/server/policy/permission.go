package policy

import "github.com/dmitrijs2005/cms/internal/server/models"

// ReadOnly allows read-class actions and abstains otherwise.
var ReadOnly = Rule{Name: "read-only", Eval: func(s Subject) Effect {
	if s.Action.IsRead() {
		return Allow
	}
	return Abstain
}}

// Authenticated allows authenticated actors and denies anonymous ones.
var Authenticated = Rule{Name: "authenticated", Eval: func(s Subject) Effect {
	if s.Actor.IsAuthenticated {
		return Allow
	}
	return Deny
}}

// AuthorOrReadOnly allows reads and lets only the owner write. Staff get no
// exemption here: object mutation stays author-scoped.
var AuthorOrReadOnly = Rule{Name: "author-or-read-only", Eval: func(s Subject) Effect {
	if s.Action.IsRead() {
		return Allow
	}
	if s.Object == nil || !s.Action.IsWrite() {
		return Abstain
	}
	if s.Actor.IsAuthenticated && s.Actor.ID != "" && s.Actor.ID == s.Object.Owner() {
		return Allow
	}
	return Deny
}}

// ObjectPermissions is the rule set applied to articles and comments.
var ObjectPermissions = All("object-permissions",
	Any("authenticated-or-read-only", ReadOnly, Authenticated),
	AuthorOrReadOnly,
)

// CanPerform reports whether actor may perform action on object. Pass a nil
// object for create.
func CanPerform(actor models.Actor, action Action, object models.Owned) bool {
	return Permits(ObjectPermissions, Subject{Actor: actor, Action: action, Object: object})
}

// AssignOwner returns the owner a newly created object must carry. Any
// owner supplied by the client is ignored.
func AssignOwner(actor models.Actor) string {
	return actor.ID
}
