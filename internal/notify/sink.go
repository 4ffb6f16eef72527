// Package notify persists notifications for later delivery to their recipient.
package notify

import (
	"context"
	"fmt"
	"time"

	"kanban-board-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sink appends notifications to the notifications table.
type Sink struct {
	db *gorm.DB
}

func NewSink(db *gorm.DB) *Sink {
	return &Sink{db: db}
}

// Send implements board.Notifier.
func (s *Sink) Send(ctx context.Context, n models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// List returns the newest notifications of userID.
func (s *Sink) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkRead flags one of userID's notifications as read and reports whether it existed.
func (s *Sink) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark notification read: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
