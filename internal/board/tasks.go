package board

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"kanban-board-api/internal/models"
)

// NewTask carries the fields of a task being created.
type NewTask struct {
	Title       string
	Description string
	Priority    models.Priority
	Assignees   []string
	Deadline    *time.Time
	ParentID    string
	LabelIDs    []string
}

// AddTask appends a task to a column. Fields switched off by the project's
// feature flags are dropped. Tasks created in the terminal column start complete.
func (s *Service) AddTask(ctx context.Context, actor models.Identity, projectID, columnID string, in NewTask) (models.Task, error) {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return models.Task{}, err
	}
	ci := p.Column(columnID)
	if ci < 0 {
		return models.Task{}, notFound("column")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, invalid("task title is required")
	}

	flags := p.Flags()
	if !flags.Deadlines {
		in.Deadline = nil
	}
	if !flags.Labels {
		in.LabelIDs = nil
	}
	if !flags.Subtasks {
		in.ParentID = ""
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return models.Task{}, invalid("unknown priority")
	}

	var parent *models.Task
	if in.ParentID != "" {
		pc, pi, ok := p.FindTask(in.ParentID)
		if !ok {
			return models.Task{}, notFound("parent task")
		}
		parent = &p.Columns[pc].Tasks[pi]
		if parent.IsSubtask() {
			return models.Task{}, invalid("sub-tasks cannot have sub-tasks")
		}
		if in.Deadline != nil && parent.Deadline != nil && in.Deadline.After(*parent.Deadline) {
			return models.Task{}, warning("deadline_after_parent", "A sub-task's deadline cannot be later than its parent's deadline")
		}
	}

	now := s.now()
	t := models.Task{
		ID:          s.ids.next(title, now),
		Title:       title,
		Description: in.Description,
		Priority:    in.Priority,
		Assignees:   members(p, in.Assignees),
		Deadline:    in.Deadline,
		ParentID:    in.ParentID,
		LabelIDs:    knownLabels(p, in.LabelIDs),
		Attachments: []models.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	logTo(&t, "created this task", actor.UID, now)

	col := &p.Columns[ci]
	if col.IsTerminal {
		t.CompletedAt = &now
		logTo(&t, "marked this as complete", actor.UID, now)
	}
	if parent != nil {
		logTo(parent, "added a sub-task: "+em(title), actor.UID, now)
		parent.UpdatedAt = now
	}
	col.Tasks = append(col.Tasks, t)

	if err := s.writeBoard(ctx, "add task", &p); err != nil {
		return models.Task{}, err
	}
	if col.IsTerminal {
		s.celebrate(actor.UID)
	}
	s.notifyAssigned(ctx, actor, p.ID, t, t.Assignees)
	return t, nil
}

// MoveTask moves a task between or within columns. toIndex is the naive drop
// index in the destination list as rendered before the move.
func (s *Service) MoveTask(ctx context.Context, actor models.Identity, projectID, taskID, fromColumnID, toColumnID string, toIndex int) error {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return err
	}
	fi, ti := p.Column(fromColumnID), p.Column(toColumnID)
	if fi < 0 || ti < 0 {
		return notFound("column")
	}
	src := slices.IndexFunc(p.Columns[fi].Tasks, func(t models.Task) bool { return t.ID == taskID })
	if src < 0 {
		return notFound("task")
	}

	if fi == ti {
		p.Columns[fi].Tasks = Reorder(p.Columns[fi].Tasks, src, toIndex)
		return s.writeBoard(ctx, "reorder task", &p)
	}

	from, to := &p.Columns[fi], &p.Columns[ti]
	t := from.Tasks[src]
	now := s.now()
	completing := to.IsTerminal && !from.IsTerminal
	reopening := from.IsTerminal && !to.IsTerminal

	if completing {
		for _, sub := range p.Subtasks(t.ID) {
			if sub.CompletedAt == nil {
				return warning("incomplete_subtasks", "Complete all sub-tasks before moving this task to "+to.Title)
			}
		}
	}

	logTo(&t, fmt.Sprintf("moved this task from %s to %s", em(from.Title), em(to.Title)), actor.UID, now)
	switch {
	case completing:
		t.CompletedAt = &now
		logTo(&t, "marked this as complete", actor.UID, now)
	case reopening:
		t.CompletedAt = nil
		logTo(&t, "marked this as incomplete", actor.UID, now)
	}
	t.UpdatedAt = now

	from.Tasks = slices.Delete(from.Tasks, src, src+1)
	to.Tasks = insertAt(to.Tasks, toIndex, t)

	if t.IsSubtask() && (completing || reopening) {
		logSubtaskCompletion(&p, t, completing, actor.UID, now)
	}

	if err := s.writeBoard(ctx, "move task", &p); err != nil {
		return err
	}
	if completing {
		s.celebrate(actor.UID)
	}
	return nil
}

func logSubtaskCompletion(p *models.Project, sub models.Task, done bool, uid string, now time.Time) {
	pc, pi, ok := p.FindTask(sub.ParentID)
	if !ok {
		return
	}
	text := "marked a sub-task as incomplete: " + em(sub.Title)
	if done {
		text = "completed a sub-task: " + em(sub.Title)
	}
	parent := &p.Columns[pc].Tasks[pi]
	logTo(parent, text, uid, now)
	parent.UpdatedAt = now
}

// TaskPatch is a sparse update. Nil fields are left alone.
type TaskPatch struct {
	Title         *string
	Description   *string
	Assignees     *[]string
	Priority      *models.Priority
	Deadline      *time.Time
	ClearDeadline bool
	Completed     *bool
	LabelIDs      *[]string
	Archived      *bool
	Attachments   *[]models.Attachment
}

// UpdateTask applies patch and logs one activity entry per changed field
// (one per label for label changes).
func (s *Service) UpdateTask(ctx context.Context, actor models.Identity, projectID, taskID string, in TaskPatch) error {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return err
	}
	ci, ti, ok := p.FindTask(taskID)
	if !ok {
		return notFound("task")
	}
	flags := p.Flags()
	now := s.now()
	t := &p.Columns[ci].Tasks[ti]
	before := t.Clone()
	changed := false
	log := func(text string) {
		logTo(t, text, actor.UID, now)
		changed = true
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return invalid("task title is required")
		}
		if title != t.Title {
			log(fmt.Sprintf("changed the title from %s to %s", em(t.Title), em(title)))
			t.Title = title
		}
	}
	if in.Description != nil && *in.Description != t.Description {
		log("updated the description")
		t.Description = *in.Description
	}

	var added []string
	if in.Assignees != nil {
		next := members(p, *in.Assignees)
		if !sameSet(next, t.Assignees) {
			for _, uid := range next {
				if !slices.Contains(t.Assignees, uid) {
					added = append(added, uid)
				}
			}
			if len(next) == 0 {
				log("removed all assignees")
			} else {
				log("changed the assignees to " + em(s.names(ctx, next)))
			}
			t.Assignees = next
		}
	}

	if in.Priority != nil && *in.Priority != t.Priority {
		if !in.Priority.Valid() {
			return invalid("unknown priority")
		}
		log(fmt.Sprintf("changed the priority from %s to %s", em(string(t.Priority)), em(string(*in.Priority))))
		t.Priority = *in.Priority
	}

	if flags.Deadlines && (in.Deadline != nil || in.ClearDeadline) {
		if err := s.changeDeadline(&p, t, in, log); err != nil {
			return err
		}
	}

	toggled := false
	if in.Completed != nil && *in.Completed != (t.CompletedAt != nil) {
		if *in.Completed {
			t.CompletedAt = &now
			log("marked this as complete")
		} else {
			t.CompletedAt = nil
			log("marked this as incomplete")
		}
		toggled = true
	}

	if flags.Labels && in.LabelIDs != nil {
		next := knownLabels(p, *in.LabelIDs)
		for _, id := range next {
			if !slices.Contains(t.LabelIDs, id) {
				l, _ := p.Label(id)
				log("added the label " + em(l.Name))
			}
		}
		for _, id := range t.LabelIDs {
			if !slices.Contains(next, id) {
				name := id
				if l, ok := p.Label(id); ok {
					name = l.Name
				}
				log("removed the label " + em(name))
			}
		}
		t.LabelIDs = next
	}

	if in.Archived != nil && *in.Archived != t.IsArchived {
		if *in.Archived {
			log("archived this task")
		} else {
			log("restored this task from the archive")
		}
		t.IsArchived = *in.Archived
	}

	if in.Attachments != nil {
		changeAttachments(t, *in.Attachments, now, log)
	}

	if !changed {
		return nil
	}
	t.UpdatedAt = now
	done := t.CompletedAt != nil
	snapshotTask := *t
	if toggled && before.IsSubtask() {
		logSubtaskCompletion(&p, snapshotTask, done, actor.UID, now)
	}

	if err := s.writeBoard(ctx, "update task", &p); err != nil {
		return err
	}
	s.notifyAssigned(ctx, actor, p.ID, snapshotTask, added)
	return nil
}

func (s *Service) changeDeadline(p *models.Project, t *models.Task, in TaskPatch, log func(string)) error {
	if in.ClearDeadline {
		if t.Deadline != nil {
			log("removed the deadline")
			t.Deadline = nil
		}
		return nil
	}
	next := *in.Deadline
	if t.Deadline != nil && t.Deadline.Equal(next) {
		return nil
	}
	if t.IsSubtask() {
		if pc, pi, ok := p.FindTask(t.ParentID); ok {
			if pd := p.Columns[pc].Tasks[pi].Deadline; pd != nil && next.After(*pd) {
				return warning("deadline_after_parent", "A sub-task's deadline cannot be later than its parent's deadline")
			}
		}
	}
	for _, sub := range p.Subtasks(t.ID) {
		if sub.Deadline != nil && sub.Deadline.After(next) {
			return warning("deadline_before_subtask", fmt.Sprintf("Sub-task %q is due after this date", sub.Title))
		}
	}
	log("set the deadline to " + em(next.Format("Jan 2, 2006")))
	t.Deadline = &next
	return nil
}

func changeAttachments(t *models.Task, next []models.Attachment, now time.Time, log func(string)) {
	has := func(list []models.Attachment, id string) bool {
		return slices.ContainsFunc(list, func(a models.Attachment) bool { return a.ID == id })
	}
	for i := range next {
		if !has(t.Attachments, next[i].ID) {
			if next[i].CreatedAt.IsZero() {
				next[i].CreatedAt = now
			}
			log("attached " + em(next[i].Name))
		}
	}
	for _, a := range t.Attachments {
		if !has(next, a.ID) {
			log("removed the attachment " + em(a.Name))
		}
	}
	t.Attachments = next
}

// DeleteTask removes the task and all of its sub-tasks in one write.
func (s *Service) DeleteTask(ctx context.Context, actor models.Identity, projectID, taskID string) error {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return err
	}
	ci, ti, ok := p.FindTask(taskID)
	if !ok {
		return notFound("task")
	}
	victim := p.Columns[ci].Tasks[ti]

	closure := map[string]bool{taskID: true}
	for _, sub := range p.Subtasks(taskID) {
		closure[sub.ID] = true
	}
	for i := range p.Columns {
		p.Columns[i].Tasks = slices.DeleteFunc(p.Columns[i].Tasks, func(t models.Task) bool {
			return closure[t.ID]
		})
	}
	if victim.IsSubtask() {
		if pc, pi, ok := p.FindTask(victim.ParentID); ok {
			now := s.now()
			logTo(&p.Columns[pc].Tasks[pi], "deleted a sub-task: "+em(victim.Title), actor.UID, now)
		}
	}
	return s.writeBoard(ctx, "delete task", &p)
}

// AddComment appends a comment entry to a task's activity.
func (s *Service) AddComment(ctx context.Context, actor models.Identity, projectID, taskID, text string) (models.Activity, error) {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return models.Activity{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Activity{}, invalid("comment cannot be empty")
	}
	ci, ti, ok := p.FindTask(taskID)
	if !ok {
		return models.Activity{}, notFound("task")
	}
	t := &p.Columns[ci].Tasks[ti]
	t.Activity = AddActivity(*t, text, actor.UID, models.ActivityComment, s.now())
	entry := t.Activity[len(t.Activity)-1]
	return entry, s.writeBoard(ctx, "add comment", &p)
}

func (s *Service) notifyAssigned(ctx context.Context, actor models.Identity, projectID string, t models.Task, uids []string) {
	for _, uid := range uids {
		if uid == actor.UID {
			continue
		}
		s.notify(ctx, models.Notification{
			UserID: uid,
			Text:   fmt.Sprintf("%s assigned you to %s", actor.DisplayName, em(t.Title)),
			Link:   taskLink(projectID, t.ID),
		})
	}
}

// names renders user ids as display names, falling back to the id.
func (s *Service) names(ctx context.Context, uids []string) string {
	out := make([]string, 0, len(uids))
	for _, uid := range uids {
		name := uid
		if s.users != nil {
			if u, err := s.users.ByID(ctx, uid); err == nil && u.DisplayName != "" {
				name = u.DisplayName
			}
		}
		out = append(out, name)
	}
	return strings.Join(out, ", ")
}

// members keeps the ids that belong to the project, deduplicated, in order.
func members(p models.Project, uids []string) []string {
	out := []string{}
	for _, uid := range uids {
		if p.IsMember(uid) && !slices.Contains(out, uid) {
			out = append(out, uid)
		}
	}
	return out
}

func knownLabels(p models.Project, ids []string) []string {
	out := []string{}
	for _, id := range ids {
		if _, ok := p.Label(id); ok && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}
