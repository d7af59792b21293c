package models

import "time"

// User is an account row. PasswordHash never leaves the server; the struct
// marshals without it so handlers can return users directly.
type User struct {
	ID           string    `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	LastName     string    `json:"lastname"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	AuditID      string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
