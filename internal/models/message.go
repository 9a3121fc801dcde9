package models

import "time"

// ContactMessage is a message submitted through the contact form and kept in the admin inbox.
type ContactMessage struct {
	ID      string    `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Email   string    `db:"email" json:"email"`
	Subject string    `db:"subject" json:"subject"`
	Body    string    `db:"body" json:"body"`
	Read    bool      `db:"is_read" json:"read"`
	Created time.Time `db:"created" json:"created"`
}
