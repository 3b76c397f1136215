// Package policy decides whether a request may proceed, given who is asking,
// what kind of resource is touched, and whether the request only reads.
//
// Every rule is a pure function of its inputs. Callers turn a denial into an
// HTTP response: 401 for anonymous requesters, 403 for everyone else.
package policy

import (
	"fmt"
	"net/http"
)

// Role is the moderation level of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role, lowest privilege first.
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

// ParseRole converts a stored or submitted role name into a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// MethodClass separates reads from writes.
type MethodClass int

const (
	Safe MethodClass = iota
	Unsafe
)

func (m MethodClass) String() string {
	if m == Safe {
		return "safe"
	}
	return "unsafe"
}

// ClassOf classifies an HTTP method. GET, HEAD and OPTIONS are safe.
func ClassOf(method string) MethodClass {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Safe
	default:
		return Unsafe
	}
}

// Resource groups endpoints that share one set of rules.
type Resource int

const (
	// Catalog covers categories, genres and titles.
	Catalog Resource = iota
	// Content covers reviews and comments.
	Content
	// Profile covers user records.
	Profile
)

func (r Resource) String() string {
	switch r {
	case Catalog:
		return "catalog"
	case Content:
		return "content"
	case Profile:
		return "profile"
	default:
		return fmt.Sprintf("resource(%d)", int(r))
	}
}

// Subject is the requester. The zero value is an anonymous visitor.
type Subject struct {
	Role          Role
	Authenticated bool
}

// Anonymous is the subject of a request without credentials.
var Anonymous = Subject{}

// IsAdmin reports whether the subject holds the admin role.
func (s Subject) IsAdmin() bool {
	return s.Authenticated && s.Role == RoleAdmin
}

// IsModerator reports whether the subject may moderate other users' content.
func (s Subject) IsModerator() bool {
	return s.Authenticated && (s.Role == RoleModerator || s.Role == RoleAdmin)
}

// Request is the input of Allowed. Owner is true when the subject authored the
// object being touched; for creation it is true, since the creator becomes the author.
type Request struct {
	Resource Resource
	Method   MethodClass
	Subject  Subject
	Owner    bool
}

// Allowed evaluates the rules in precedence order.
func Allowed(r Request) bool {
	switch r.Resource {
	case Catalog:
		if r.Method == Safe {
			return true
		}
		return r.Subject.IsAdmin()
	case Content:
		if r.Method == Safe {
			return true
		}
		if !r.Subject.Authenticated {
			return false
		}
		return r.Subject.IsModerator() || r.Owner
	case Profile:
		if !r.Subject.Authenticated {
			return false
		}
		return r.Owner || r.Subject.IsAdmin()
	default:
		return false
	}
}

// CanAssignRole reports whether the subject may write the role field of a profile.
func CanAssignRole(s Subject) bool {
	return s.IsAdmin()
}
