package models

import "time"

// Account holds the credentials of a registered user.
type Account struct {
	ID           string    `db:"id" json:"uid"`
	Email        string    `db:"email" json:"email"`
	DisplayName  string    `db:"display_name" json:"displayName"`
	PasswordHash []byte    `db:"password_hash" json:"passwordHash"`
	Role         string    `db:"role" json:"role"`
	Created      time.Time `db:"created" json:"created"`
}

// IsAdmin reports whether the account may use the administrative console.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
