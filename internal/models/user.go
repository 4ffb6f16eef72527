package models

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	DisplayName  string    `json:"displayName" gorm:"column:display_name;not null;index"`
	Email        string    `json:"email" gorm:"unique;not null"`
	PhotoURL     string    `json:"photoURL" gorm:"column:photo_url"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// Identity is the signed-in user as seen by the board core.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
}

// Identity returns the public identity of the user.
func (u User) Identity() Identity {
	return Identity{UID: u.ID, DisplayName: u.DisplayName, Email: u.Email, PhotoURL: u.PhotoURL}
}
