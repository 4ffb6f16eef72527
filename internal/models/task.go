package models

import (
	"fmt"
	"time"
)

// Priority of a task
type Priority string

const (
	PriorityUrgent Priority = "Urgent"
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ActivityType distinguishes generated log lines from user comments.
type ActivityType string

const (
	ActivityLog     ActivityType = "log"
	ActivityComment ActivityType = "comment"
)

// Activity is an immutable entry in a task's history. Text may carry **emphasis**.
type Activity struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Timestamp time.Time    `json:"timestamp"`
	UserID    string       `json:"userId"`
	Type      ActivityType `json:"type"`
}

// Attachment metadata. The file itself lives in external storage.
type Attachment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a unit of work embedded in a column.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    Priority     `json:"priority"`
	Assignees   []string     `json:"assignees"`
	Deadline    *time.Time   `json:"deadline"`
	ParentID    string       `json:"parentId,omitempty"`
	LabelIDs    []string     `json:"labelIds"`
	Attachments []Attachment `json:"attachments"`
	CompletedAt *time.Time   `json:"completedAt"`
	IsArchived  bool         `json:"isArchived"`
	Activity    []Activity   `json:"activity"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// IsSubtask reports whether the task has a parent.
func (t Task) IsSubtask() bool {
	return t.ParentID != ""
}

func (t Task) String() string {
	return fmt.Sprintf("task %s (%q)", t.ID, t.Title)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.Assignees = append([]string(nil), t.Assignees...)
	out.LabelIDs = append([]string(nil), t.LabelIDs...)
	out.Attachments = append([]Attachment(nil), t.Attachments...)
	out.Activity = append([]Activity(nil), t.Activity...)
	if t.Deadline != nil {
		d := *t.Deadline
		out.Deadline = &d
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		out.CompletedAt = &c
	}
	return out
}
