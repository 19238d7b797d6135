// Package models defines the server-side entities shared by the policy,
// service and persistence layers.
package models

import "time"

// User is a registered account. Email is the login identifier.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash []byte
	FirstName    string
	LastName     string
	OtherName    string
	Occupation   string
	Bio          string
	IsStaff      bool
	IsVerified   bool
	CreatedAt    time.Time
}

// Actor returns the authenticated Actor for u.
func (u *User) Actor() Actor {
	return Actor{
		ID:              u.ID,
		IsAuthenticated: true,
		IsStaff:         u.IsStaff,
		IsVerified:      u.IsVerified,
	}
}
