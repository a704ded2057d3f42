// Package authz centralizes authorization decisions for the back office.
// Handlers never perform ad-hoc role comparisons; they declare the resource
// class and action they protect and let the policy decide.
package authz

// Role is a privilege level, totally ordered VIEWER < EDITOR < ADMIN.
type Role string

const (
	RoleViewer Role = "VIEWER"
	RoleEditor Role = "EDITOR"
	RoleAdmin  Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// Valid reports whether the role is a known privilege level.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role meets the minimum in the total order.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// ParseRole maps a stored role string onto a Role, defaulting unknown
// values to the least-privileged level.
func ParseRole(s string) Role {
	r := Role(s)
	if !r.Valid() {
		return RoleViewer
	}
	return r
}

// ResourceClass names a category of protected operation.
type ResourceClass string

const (
	ResourceUsers         ResourceClass = "users"
	ResourceTeam          ResourceClass = "team"
	ResourceTestimonials  ResourceClass = "testimonials"
	ResourcePartners      ResourceClass = "partners"
	ResourceMedia         ResourceClass = "media"
	ResourceContact       ResourceClass = "contact"
	ResourceMessages      ResourceClass = "messages"
	ResourceAnalytics     ResourceClass = "analytics"
	ResourceActivity      ResourceClass = "activity"
	ResourcePixels        ResourceClass = "pixels"
	ResourceRegistrations ResourceClass = "registrations"
	ResourceNewsletter    ResourceClass = "newsletter"
)

// Action is one of the four protected operations.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Principal describes the authenticated actor as resolved from the session.
type Principal struct {
	ID       string
	Email    string
	Role     Role
	IsActive bool
}

// DenyReason classifies why a decision denied.
type DenyReason string

const (
	ReasonUnauthenticated     DenyReason = "unauthenticated"
	ReasonInactive            DenyReason = "inactive"
	ReasonInsufficientRole    DenyReason = "insufficient_role"
	ReasonSelfActionForbidden DenyReason = "self_action_forbidden"
	ReasonActionNotExposed    DenyReason = "action_not_exposed"
)

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Message string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason, message string) Decision {
	return Decision{Allowed: false, Reason: reason, Message: message}
}
