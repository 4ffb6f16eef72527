package board

import (
	"context"
	"fmt"

	"kanban-board-api/internal/models"
)

// SweepArchive flags completed tasks in the terminal column as archived once
// their completion is older than the project's retention window. It writes
// nothing when no task qualifies.
func (s *Service) SweepArchive(ctx context.Context, actor models.Identity, projectID string) (int, error) {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return 0, err
	}
	period, ok := p.AutoArchivePeriod.Duration()
	if !ok {
		return 0, nil
	}
	now := s.now()
	cutoff := now.Add(-period)

	count := 0
	for ci := range p.Columns {
		if !p.Columns[ci].IsTerminal {
			continue
		}
		for ti := range p.Columns[ci].Tasks {
			t := &p.Columns[ci].Tasks[ti]
			if t.IsArchived || t.CompletedAt == nil || !t.CompletedAt.Before(cutoff) {
				continue
			}
			t.IsArchived = true
			t.UpdatedAt = now
			logTo(t, "archived this task automatically", actor.UID, now)
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	if err := s.writeBoard(ctx, "archive sweep", &p); err != nil {
		return 0, err
	}
	s.notify(ctx, models.Notification{
		UserID: actor.UID,
		Text:   fmt.Sprintf("%d completed task(s) in %s were archived", count, em(p.Name)),
		Link:   projectLink(projectID),
	})
	return count, nil
}
