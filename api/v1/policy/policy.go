// Package policy holds the ownership rules as a pure decision function so
// they can be tested in isolation from storage and transport.
package policy

type Kind string

const (
	KindUser    Kind = "user"
	KindArticle Kind = "article"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Allow decides whether the actor may perform action on a resource owned by
// ownerID. For users the owner is the target account itself. First match wins:
//   - reads, lists and creates are open to any authenticated actor
//   - updating an article or a user requires actor == owner
//   - deleting an article requires actor == owner
//   - deleting a user is allowed for any account except the actor's own
func Allow(actorID, ownerID int64, kind Kind, action Action) bool {
	switch action {
	case ActionRead, ActionCreate:
		return true
	case ActionUpdate:
		return actorID == ownerID
	case ActionDelete:
		if kind == KindArticle {
			return actorID == ownerID
		}
		return actorID != ownerID
	}
	return false
}
