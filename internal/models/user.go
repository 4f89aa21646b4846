package models

import (
	"time"
)

const (
	// UserRoleMember is the default role for every new account.
	UserRoleMember = "member"

	// UserRoleAdmin is granted to the creator of an organization and
	// unlocks organization-wide listings and analytics.
	UserRoleAdmin = "admin"
)

type User struct {
	ID             string     `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       *string    `db:"last_name" json:"last_name"`
	FullName       string     `db:"full_name" json:"full_name"`
	Email          string     `db:"email" json:"email"`
	AvatarURL      *string    `db:"avatar_url" json:"avatar_url"`
	Role           string     `db:"role" json:"role"`
	OrganizationID *string    `db:"organization_id" json:"organization_id"`
	// HashedPassword is empty for accounts provisioned through Google
	// login; such accounts can never authenticate with a password.
	HashedPassword string     `db:"hashed_password" json:"-"`
	VerifiedAt     *time.Time `db:"verified_at" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

func (u *User) IsVerified() bool {
	return u.VerifiedAt != nil
}

// Summary is the shape of the user object returned alongside issued
// tokens and from /auth/me.
type UserSummary struct {
	ID         string  `json:"id"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	AvatarURL  *string `json:"avatar_url"`
	Role       string  `json:"role"`
	OrgID      *string `json:"org_id"`
	IsVerified bool    `json:"is_verified"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		AvatarURL:  u.AvatarURL,
		Role:       u.Role,
		OrgID:      u.OrganizationID,
		IsVerified: u.IsVerified(),
	}
}

// FullNameOf joins first and last name the way the rest of the system
// stores it on the users table.
func FullNameOf(firstName string, lastName *string) string {
	if lastName != nil && *lastName != "" {
		return firstName + " " + *lastName
	}
	return firstName
}
