package models

import "time"

// Story is a published story. PhotoKey is the object key in photo storage;
// the public URL is derived from it per request.
type Story struct {
	ID          string
	UserID      string
	Name        string
	Description string
	PhotoKey    string
	Lat         *float64
	Lon         *float64
	CreatedAt   time.Time
}
