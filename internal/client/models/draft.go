package models

import "time"

// OfflineDraft is a story captured while offline (or when the API could not
// be reached) waiting to be submitted. TempID is generated locally.
type OfflineDraft struct {
	TempID      string
	Description string
	Photo       []byte
	PhotoName   string
	Lat         *float64
	Lon         *float64
	CreatedAt   time.Time
	UserID      string
	UserName    string
	Synced      bool
}

// Input converts the draft back into a submission bundle.
func (d OfflineDraft) Input() StoryInput {
	return StoryInput{
		Description: d.Description,
		Photo:       d.Photo,
		PhotoName:   d.PhotoName,
		Lat:         d.Lat,
		Lon:         d.Lon,
	}
}

// StoryInput is the multi-part bundle handed over by the capture UI. Photo
// bytes are not interpreted by the core beyond optional downscaling.
type StoryInput struct {
	Description string
	Photo       []byte
	PhotoName   string
	Lat         *float64
	Lon         *float64
}
