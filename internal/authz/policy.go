package authz

import "fmt"

// rules is the single declarative policy table: minimum role per
// (resource class, action). Absent entries mean the action is not exposed
// at all. Invariant, checked by tests: within a row, delete never requires
// less than update, and update never less than read.
var rules = map[ResourceClass]map[Action]Role{
	ResourceUsers: {
		ActionRead:   RoleAdmin,
		ActionCreate: RoleAdmin,
		ActionUpdate: RoleAdmin,
		ActionDelete: RoleAdmin,
	},
	ResourceTeam: {
		ActionRead:   RoleEditor,
		ActionCreate: RoleEditor,
		ActionUpdate: RoleEditor,
		ActionDelete: RoleAdmin,
	},
	ResourceTestimonials: {
		ActionRead:   RoleEditor,
		ActionCreate: RoleEditor,
		ActionUpdate: RoleEditor,
		ActionDelete: RoleAdmin,
	},
	ResourcePartners: {
		ActionRead:   RoleEditor,
		ActionCreate: RoleEditor,
		ActionUpdate: RoleEditor,
		ActionDelete: RoleEditor,
	},
	ResourceMedia: {
		ActionRead:   RoleEditor,
		ActionCreate: RoleEditor,
	},
	ResourceContact: {
		ActionRead:   RoleEditor,
		ActionUpdate: RoleAdmin,
	},
	ResourceMessages: {
		ActionRead:   RoleViewer,
		ActionUpdate: RoleEditor,
	},
	ResourceAnalytics: {
		ActionRead: RoleEditor,
	},
	ResourceActivity: {
		ActionRead: RoleAdmin,
	},
	ResourcePixels: {
		ActionRead:   RoleEditor,
		ActionCreate: RoleAdmin,
		ActionUpdate: RoleAdmin,
		ActionDelete: RoleAdmin,
	},
	ResourceRegistrations: {
		ActionRead:   RoleViewer,
		ActionCreate: RoleAdmin,
	},
	ResourceNewsletter: {
		ActionRead: RoleEditor,
	},
}

// Options carries identity context for overrides that compose with the
// role rule by logical AND.
type Options struct {
	// TargetID identifies the record the action operates on. Used by the
	// self-action override on users.delete.
	TargetID string
}

// Rules returns a copy of the policy table for introspection and tests.
func Rules() map[ResourceClass]map[Action]Role {
	out := make(map[ResourceClass]map[Action]Role, len(rules))
	for rc, row := range rules {
		cp := make(map[Action]Role, len(row))
		for a, r := range row {
			cp[a] = r
		}
		out[rc] = cp
	}
	return out
}

// MinRole returns the minimum role for a rule, and whether the action is
// exposed at all.
func MinRole(resource ResourceClass, action Action) (Role, bool) {
	row, ok := rules[resource]
	if !ok {
		return "", false
	}
	min, ok := row[action]
	return min, ok
}

// Authorize decides whether the principal may perform the action on the
// resource class. A nil principal is unauthenticated, which is decided
// before any role is considered. Identity overrides run after the role
// check passes.
func Authorize(p *Principal, resource ResourceClass, action Action, opts Options) Decision {
	if p == nil || p.ID == "" {
		return deny(ReasonUnauthenticated, MsgUnauthenticated)
	}
	if !p.IsActive {
		return deny(ReasonInactive, MsgInactive)
	}
	min, ok := MinRole(resource, action)
	if !ok {
		return deny(ReasonActionNotExposed, MsgForbidden)
	}
	if !p.Role.AtLeast(min) {
		return deny(ReasonInsufficientRole, denyMessage(min, action))
	}
	if resource == ResourceUsers && action == ActionDelete && opts.TargetID != "" && opts.TargetID == p.ID {
		return deny(ReasonSelfActionForbidden, MsgSelfDelete)
	}
	return allow()
}

// User-facing deny messages. The public site is French; these strings are
// part of the API contract.
const (
	MsgUnauthenticated = "Non authentifié"
	MsgInactive        = "Compte désactivé"
	MsgForbidden       = "Accès refusé"
	MsgSelfDelete      = "Vous ne pouvez pas supprimer votre propre compte"
)

var actionVerbs = map[Action]string{
	ActionRead:   "consulter",
	ActionCreate: "créer",
	ActionUpdate: "modifier",
	ActionDelete: "supprimer",
}

func denyMessage(min Role, action Action) string {
	verb := actionVerbs[action]
	switch min {
	case RoleAdmin:
		return fmt.Sprintf("Accès refusé. Seuls les administrateurs peuvent %s.", verb)
	case RoleEditor:
		return fmt.Sprintf("Accès refusé. Seuls les éditeurs et administrateurs peuvent %s.", verb)
	default:
		return MsgForbidden
	}
}
