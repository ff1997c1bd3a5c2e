package domain

import "strings"

// Role is the coarse permission level reported by the content API.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleSubscriber    Role = "subscriber"
	RoleOther         Role = "other"
)

// ParseRole normalizes a role name from the content API. Anything that is
// not an administrator or subscriber collapses to RoleOther.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "administrator":
		return RoleAdministrator
	case "subscriber", "":
		return RoleSubscriber
	default:
		return RoleOther
	}
}

// Identity represents the authenticated actor for one browsing session.
//
// Token is the opaque bearer credential issued by the content API. It must
// never reach rendering logic; the session manager hands it only to the
// content client's request layer.
type Identity struct {
	SubjectID   int64 // content API database id, 0 when unknown
	DisplayName string
	Email       string
	Role        Role
	AvatarURL   string
	Token       string
}

// HasToken reports whether the identity carries a usable credential.
func (i Identity) HasToken() bool { return i.Token != "" }

// Redacted returns a copy safe to hand to rendering and logging.
func (i Identity) Redacted() Identity {
	i.Token = ""
	return i
}

// IsAdmin reports whether the identity may change site-wide settings.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdministrator }
