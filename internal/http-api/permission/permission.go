// Package permission holds the pure authorization decision functions.
// Handlers and services ask; this package answers. No I/O here.
package permission

import "reviewhub/internal/http-api/models"

// Action classifies a request for authorization purposes.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// IsWrite reports whether the action mutates state.
func (a Action) IsWrite() bool {
	return a != ActionRead
}

// Collection identifies a top-level resource collection.
type Collection int

const (
	CollectionTitles Collection = iota
	CollectionCategories
	CollectionGenres
	CollectionReviews
	CollectionComments
	CollectionUsers
)

// Owned is implemented by objects with a single owning author
// (reviews and comments).
type Owned interface {
	OwnerID() string
}

// CanAccessCollection decides collection-level access. actor is nil for
// anonymous requests.
//
// Reads on the catalog and review graph are open to everyone. Writes on
// catalog collections need an admin or staff actor. The users collection is
// admin-only for every action, reads included.
func CanAccessCollection(actor *models.User, action Action, resource Collection) bool {
	if resource == CollectionUsers {
		return actor != nil && actor.IsAdmin()
	}

	if !action.IsWrite() {
		return true
	}

	switch resource {
	case CollectionTitles, CollectionCategories, CollectionGenres:
		return actor != nil && actor.IsAdmin()
	case CollectionReviews, CollectionComments:
		// Object-level checks refine create/update/delete further.
		return actor != nil
	}
	return false
}

// CanActOnObject decides object-level access for owned objects. Reads are
// open; creates need authentication; updates and deletes are reserved for
// the author, admins and moderators.
func CanActOnObject(actor *models.User, action Action, obj Owned) bool {
	if !action.IsWrite() {
		return true
	}
	if actor == nil {
		return false
	}
	if action == ActionCreate {
		return true
	}
	return actor.ID == obj.OwnerID() || actor.IsAdmin() || actor.IsModerator()
}
