// Package guard is the single place where "may this principal touch this
// resource" is decided. Handlers load the resource, describe it, and ask
// Authorize before mutating anything; repositories back the decision up with
// owner-scoped WHERE clauses but never make it themselves.
package guard

// Principal is the acting, possibly anonymous, user of a request.
type Principal struct {
	ID            uint64
	Role          string
	IsSuperuser   bool
	Authenticated bool
}

// Action enumerates what a principal is trying to do.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
	ActionModerate
)

// Resource describes the target of an action. OwnerUserID is the user behind
// the resource (landlord's user for a property, the user itself for profiles
// and locations); zero means unowned. Public resources are readable by
// anyone. Exists guards duplicate creation of 1:1 resources.
type Resource struct {
	Kind        string
	OwnerUserID uint64
	Public      bool
	Exists      bool
}

// Deny reasons, stable strings surfaced in error responses.
const (
	ReasonNotOwner        = "not_owner"
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
	ReasonAlreadyExists   = "already_exists"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with a reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Authorize applies the ownership rules. Superusers bypass every check.
func Authorize(p Principal, action Action, res Resource) Decision {
	if p.IsSuperuser {
		return Allow
	}

	switch action {
	case ActionRead:
		if res.Public {
			return Allow
		}
		if !p.Authenticated {
			return Deny(ReasonUnauthenticated)
		}
		if res.OwnerUserID != 0 && res.OwnerUserID != p.ID {
			return Deny(ReasonNotOwner)
		}
		return Allow

	case ActionCreate:
		// Anonymous submissions (contact messages, testimonials) are open.
		if res.Public {
			return Allow
		}
		if !p.Authenticated {
			return Deny(ReasonUnauthenticated)
		}
		if res.Exists {
			// 1:1 resources (profiles, locations) may exist only once.
			return Deny(ReasonAlreadyExists)
		}
		if res.OwnerUserID != 0 && res.OwnerUserID != p.ID {
			return Deny(ReasonNotOwner)
		}
		return Allow

	case ActionUpdate, ActionDelete:
		if !p.Authenticated {
			return Deny(ReasonUnauthenticated)
		}
		if res.OwnerUserID == 0 || res.OwnerUserID != p.ID {
			return Deny(ReasonNotOwner)
		}
		return Allow

	case ActionModerate:
		if !p.Authenticated {
			return Deny(ReasonUnauthenticated)
		}
		// Moderation is reserved for managers (and superusers, handled above).
		if p.Role != "MANAGER" {
			return Deny(ReasonForbidden)
		}
		return Allow
	}
	return Deny(ReasonForbidden)
}
