// Package models holds the server-side records of the story API.
package models

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
