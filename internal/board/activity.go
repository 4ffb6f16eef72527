package board

import (
	"time"

	"kanban-board-api/internal/models"

	"github.com/google/uuid"
)

// AddActivity returns t's activity list with one entry appended. The input
// slice is never modified.
func AddActivity(t models.Task, text, userID string, typ models.ActivityType, at time.Time) []models.Activity {
	if typ == "" {
		typ = models.ActivityLog
	}
	out := make([]models.Activity, len(t.Activity), len(t.Activity)+1)
	copy(out, t.Activity)
	return append(out, models.Activity{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: at,
		UserID:    userID,
		Type:      typ,
	})
}

// logTo appends a log entry to the task in place.
func logTo(t *models.Task, text, userID string, at time.Time) {
	t.Activity = AddActivity(*t, text, userID, models.ActivityLog, at)
}

func em(s string) string {
	return "**" + s + "**"
}
