package policy

import (
	"time"

	"github.com/dmitrijs2005/cms/internal/server/models"
)

// Live allows published articles whose creation time has been reached.
var Live = Rule{Name: "live", Eval: func(s Subject) Effect {
	if s.Item != nil && s.Item.Status == models.StatusPublished && !s.Item.CreatedAt.After(s.Now) {
		return Allow
	}
	return Abstain
}}

// ItemOwner allows the author of the item.
var ItemOwner = Rule{Name: "item-owner", Eval: func(s Subject) Effect {
	if s.Item != nil && s.Actor.IsAuthenticated && s.Actor.ID != "" && s.Actor.ID == s.Item.OwnerID {
		return Allow
	}
	return Abstain
}}

// Staff allows staff actors.
var Staff = Rule{Name: "staff", Eval: func(s Subject) Effect {
	if s.Actor.IsAuthenticated && s.Actor.IsStaff {
		return Allow
	}
	return Abstain
}}

// Visibility decides whether an article may be disclosed to an actor.
var Visibility = Any("visibility", Live, ItemOwner, Staff)

// IsVisible reports whether item may be disclosed to actor at now.
func IsVisible(actor models.Actor, item *models.Article, now time.Time) bool {
	return Permits(Visibility, Subject{Actor: actor, Action: ActionRead, Item: item, Now: now})
}

// HasOverride reports whether actor bypasses the published-only pre-filter
// on list and search queries.
func HasOverride(actor models.Actor) bool {
	return Permits(Staff, Subject{Actor: actor})
}

// ListFilter narrows f so that a list or search query only returns
// published, live articles unless actor has an override.
func ListFilter(actor models.Actor, now time.Time, f models.ArticleFilter) models.ArticleFilter {
	if !HasOverride(actor) {
		f.PublishedBefore = &now
	}
	return f
}
