package models

import "time"

// Cursor is a pointer position relative to the board canvas.
type Cursor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Presence is the ephemeral live state of a user viewing a project.
type Presence struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	Theme       string    `json:"theme"`
	Cursor      *Cursor   `json:"cursor"`
	SeenAt      time.Time `json:"seenAt"`
}
