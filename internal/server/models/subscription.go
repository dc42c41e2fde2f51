package models

import "time"

// PushSubscription is a web-push endpoint registered by a user.
type PushSubscription struct {
	UserID    string
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}
