// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                  int64      `db:"id"`
	FirstName           string     `db:"first_name"`
	LastName            string     `db:"last_name"`
	Email               string     `db:"email"`
	PasswordHash        string     `db:"password_hash"`
	PhoneNumber         *string    `db:"phone_number"`
	RoleID              int64      `db:"role_id"`
	IsSuspended         bool       `db:"is_suspended"`
	IsDeleted           bool       `db:"is_deleted"`
	ResetTokenHash      *string    `db:"reset_token_hash"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at"`
	AuthProvider        string     `db:"auth_provider"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
