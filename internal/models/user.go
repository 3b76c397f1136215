package models

import (
	"time"

	"yamdb/internal/policy"
)

// User is a registered account. Username is the public identity; email is the
// unique address confirmation codes are sent to.
type User struct {
	ID               string      `json:"-" gorm:"primaryKey;type:varchar(36)"`
	Username         string      `json:"username" gorm:"uniqueIndex;type:varchar(150);not null"`
	Email            string      `json:"email" gorm:"uniqueIndex;type:varchar(254);not null"`
	FirstName        string      `json:"first_name" gorm:"type:varchar(150)"`
	LastName         string      `json:"last_name" gorm:"type:varchar(150)"`
	Bio              string      `json:"bio" gorm:"type:text"`
	Role             policy.Role `json:"role" gorm:"type:varchar(16);not null;default:user"`
	IsSuperuser      bool        `json:"-" gorm:"not null;default:false"`
	ConfirmationCode string      `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, empty once used
	CreatedAt        time.Time   `json:"-"`
	UpdatedAt        time.Time   `json:"-"`
}

// Subject returns the policy view of the user. Superusers act as admins.
func (u *User) Subject() policy.Subject {
	if u == nil {
		return policy.Anonymous
	}
	role := u.Role
	if u.IsSuperuser {
		role = policy.RoleAdmin
	}
	return policy.Subject{Role: role, Authenticated: true}
}
