package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ArchivePeriod is the retention window after which completed tasks are archived.
type ArchivePeriod string

const (
	ArchiveOneDay   ArchivePeriod = "1-day"
	ArchiveOneWeek  ArchivePeriod = "1-week"
	ArchiveOneMonth ArchivePeriod = "1-month"
	ArchiveNever    ArchivePeriod = "never"
)

// Duration returns the retention window, or false for ArchiveNever and unknown values.
func (p ArchivePeriod) Duration() (time.Duration, bool) {
	switch p {
	case ArchiveOneDay:
		return 24 * time.Hour, true
	case ArchiveOneWeek:
		return 7 * 24 * time.Hour, true
	case ArchiveOneMonth:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Valid reports whether p is one of the known periods.
func (p ArchivePeriod) Valid() bool {
	switch p {
	case ArchiveOneDay, ArchiveOneWeek, ArchiveOneMonth, ArchiveNever:
		return true
	}
	return false
}

// Features toggles optional board capabilities. Absent flags decode as true.
type Features struct {
	Subtasks  bool `json:"enableSubtasks"`
	Deadlines bool `json:"enableDeadlines"`
	Labels    bool `json:"enableLabels"`
	Dashboard bool `json:"enableDashboard"`
}

// DefaultFeatures has every flag enabled.
func DefaultFeatures() Features {
	return Features{Subtasks: true, Deadlines: true, Labels: true, Dashboard: true}
}

func (f *Features) UnmarshalJSON(data []byte) error {
	raw := struct {
		Subtasks  *bool `json:"enableSubtasks"`
		Deadlines *bool `json:"enableDeadlines"`
		Labels    *bool `json:"enableLabels"`
		Dashboard *bool `json:"enableDashboard"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = DefaultFeatures()
	if raw.Subtasks != nil {
		f.Subtasks = *raw.Subtasks
	}
	if raw.Deadlines != nil {
		f.Deadlines = *raw.Deadlines
	}
	if raw.Labels != nil {
		f.Labels = *raw.Labels
	}
	if raw.Dashboard != nil {
		f.Dashboard = *raw.Dashboard
	}
	return nil
}

// Label is a project-scoped tag.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Invitation is a pending membership offer from the owner to a user.
type Invitation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	InvitedAt   time.Time `json:"invitedAt"`
}

// Column is an ordered bucket of tasks. Tasks are embedded in the column.
type Column struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	IsTerminal bool      `json:"isTerminal"`
	Tasks      []Task    `json:"tasks"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Project is the board document. Columns, labels, members and invitations live
// inside the row as JSON so a single write replaces them atomically.
type Project struct {
	ID                string                          `json:"id" gorm:"primaryKey"`
	Name              string                          `json:"name" gorm:"not null"`
	Description       string                          `json:"description"`
	OwnerID           string                          `json:"ownerId" gorm:"column:owner_id;not null;index"`
	Members           datatypes.JSONSlice[string]     `json:"members"`
	PendingMembers    datatypes.JSONSlice[Invitation] `json:"pendingMembers" gorm:"column:pending_members"`
	Columns           datatypes.JSONSlice[Column]     `json:"columns"`
	Labels            datatypes.JSONSlice[Label]      `json:"labels"`
	Features          datatypes.JSONType[Features]    `json:"features"`
	AutoArchivePeriod ArchivePeriod                   `json:"autoArchivePeriod" gorm:"column:auto_archive_period;not null;default:'never'"`
	CreatedAt         time.Time                       `json:"createdAt"`
	UpdatedAt         time.Time                       `json:"updatedAt"`
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}

// Flags returns the project's feature flags.
func (p Project) Flags() Features {
	return p.Features.Data()
}

// IsMember reports whether uid belongs to the project.
func (p Project) IsMember(uid string) bool {
	for _, m := range p.Members {
		if m == uid {
			return true
		}
	}
	return false
}

// Invitation returns the pending invitation with the given id.
func (p Project) Invitation(id string) (Invitation, bool) {
	for _, inv := range p.PendingMembers {
		if inv.ID == id {
			return inv, true
		}
	}
	return Invitation{}, false
}

// IsPending reports whether uid has an outstanding invitation.
func (p Project) IsPending(uid string) bool {
	for _, inv := range p.PendingMembers {
		if inv.UserID == uid {
			return true
		}
	}
	return false
}

// Column returns the index of the column with the given id, or -1.
func (p Project) Column(id string) int {
	for i := range p.Columns {
		if p.Columns[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTask locates a task by id across all columns.
func (p Project) FindTask(id string) (col, idx int, ok bool) {
	for c := range p.Columns {
		for t := range p.Columns[c].Tasks {
			if p.Columns[c].Tasks[t].ID == id {
				return c, t, true
			}
		}
	}
	return -1, -1, false
}

// Subtasks returns every task whose parent is parentID.
func (p Project) Subtasks(parentID string) []Task {
	var out []Task
	for _, c := range p.Columns {
		for _, t := range c.Tasks {
			if t.ParentID == parentID {
				out = append(out, t)
			}
		}
	}
	return out
}

// Label returns the label with the given id.
func (p Project) Label(id string) (Label, bool) {
	for _, l := range p.Labels {
		if l.ID == id {
			return l, true
		}
	}
	return Label{}, false
}

// Clone returns a deep copy so callers can compute a new document without
// touching a shared snapshot.
func (p Project) Clone() Project {
	out := p
	out.Members = append(datatypes.JSONSlice[string](nil), p.Members...)
	out.PendingMembers = append(datatypes.JSONSlice[Invitation](nil), p.PendingMembers...)
	out.Labels = append(datatypes.JSONSlice[Label](nil), p.Labels...)
	out.Columns = make(datatypes.JSONSlice[Column], len(p.Columns))
	for i, c := range p.Columns {
		nc := c
		nc.Tasks = make([]Task, len(c.Tasks))
		for j, t := range c.Tasks {
			nc.Tasks[j] = t.Clone()
		}
		out.Columns[i] = nc
	}
	return out
}
