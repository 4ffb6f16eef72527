package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationAction is an actionable button attached to a notification.
type NotificationAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Target string `json:"target"`
}

// Notification is an append-only message addressed to one user.
type Notification struct {
	ID        string                                  `json:"id" gorm:"primaryKey"`
	UserID    string                                  `json:"userId" gorm:"column:user_id;not null;index"`
	Text      string                                  `json:"text" gorm:"not null"`
	Link      string                                  `json:"link"`
	Read      bool                                    `json:"read" gorm:"not null;default:false"`
	Actions   datatypes.JSONSlice[NotificationAction] `json:"actions,omitempty"`
	CreatedAt time.Time                               `json:"createdAt"`
}

// TableName specifies the table name for Notification Model
func (Notification) TableName() string {
	return "notifications"
}
