package models

// Actor is the requester of an operation. The zero value is the anonymous
// actor: not authenticated and without an ID.
type Actor struct {
	ID              string
	IsAuthenticated bool
	IsStaff         bool
	IsVerified      bool

	// ClientKey is the network identity of the requester, used as the
	// throttle key when no ID is available.
	ClientKey string
}

// Anonymous returns an unauthenticated actor identified only by clientKey.
func Anonymous(clientKey string) Actor {
	return Actor{ClientKey: clientKey}
}

// ThrottleKey is the actor ID for authenticated actors and the client
// network identity otherwise.
func (a Actor) ThrottleKey() string {
	if a.IsAuthenticated && a.ID != "" {
		return a.ID
	}
	return a.ClientKey
}

// Owned is implemented by every entity that has an author.
type Owned interface {
	Owner() string
}
