// Package docstore is the remote document store the board core writes to.
// A project is one document; writes are last-writer-wins at document
// granularity and every committed change is pushed to the watchers of the
// project's members.
package docstore

import (
	"context"
	"errors"
	"slices"
	"time"

	"kanban-board-api/internal/models"
)

// ErrNotFound is returned when the addressed document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrPreconditionFailed is returned when a patch's requirement no longer
// holds on the stored document. Nothing is written.
var ErrPreconditionFailed = errors.New("document precondition failed")

// ChangeKind describes what happened to a project from a watcher's view.
type ChangeKind string

const (
	ChangeUpsert  ChangeKind = "upsert"
	ChangeRemoved ChangeKind = "removed"
)

// Change is delivered to watchers after a write commits.
type Change struct {
	Kind      ChangeKind
	ProjectID string
	Project   *models.Project // nil for ChangeRemoved
}

// Patch is a partial update of a project document. Pointer fields replace the
// stored value when set. Member and invitation fields are set-like
// primitives applied against the stored value, not the caller's snapshot.
type Patch struct {
	Name              *string
	Description       *string
	Columns           []models.Column
	Labels            []models.Label
	ReplaceColumns    bool
	ReplaceLabels     bool
	Features          *models.Features
	AutoArchivePeriod *models.ArchivePeriod

	AddMembers        []string
	RemoveMembers     []string
	AddInvitations    []models.Invitation
	RemoveInvitations []string

	// RequireInvitation, when set, fails the update with ErrPreconditionFailed
	// unless the stored document still holds this invitation.
	RequireInvitation string
}

// Board replaces the whole columns and labels arrays.
func Board(columns []models.Column, labels []models.Label) Patch {
	return Patch{Columns: columns, Labels: labels, ReplaceColumns: true, ReplaceLabels: true}
}

// Batch groups writes that commit atomically.
type Batch interface {
	Update(projectID string, patch Patch) error
	Notify(n models.Notification) error
}

// Store is the document API consumed by the board core.
type Store interface {
	Create(ctx context.Context, p *models.Project) error
	Get(ctx context.Context, id string) (models.Project, error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
	Batch(ctx context.Context, fn func(Batch) error) error
	// Watch streams every project uid is a member of, first as an initial
	// load and then on each committed change, until cancel is called.
	Watch(ctx context.Context, uid string, fn func(Change)) (cancel func(), err error)
	PendingFor(ctx context.Context, uid string) ([]models.Project, error)
}

// Apply writes the patch onto doc.
func (p Patch) Apply(doc *models.Project, now time.Time) {
	if p.Name != nil {
		doc.Name = *p.Name
	}
	if p.Description != nil {
		doc.Description = *p.Description
	}
	if p.ReplaceColumns {
		doc.Columns = p.Columns
	}
	if p.ReplaceLabels {
		doc.Labels = p.Labels
	}
	if p.Features != nil {
		doc.Features = newFeatures(*p.Features)
	}
	if p.AutoArchivePeriod != nil {
		doc.AutoArchivePeriod = *p.AutoArchivePeriod
	}

	for _, uid := range p.AddMembers {
		if !slices.Contains(doc.Members, uid) {
			doc.Members = append(doc.Members, uid)
		}
	}
	if len(p.RemoveMembers) > 0 {
		doc.Members = slices.DeleteFunc(doc.Members, func(uid string) bool {
			return slices.Contains(p.RemoveMembers, uid)
		})
	}
	for _, inv := range p.AddInvitations {
		if _, ok := doc.Invitation(inv.ID); !ok {
			doc.PendingMembers = append(doc.PendingMembers, inv)
		}
	}
	if len(p.RemoveInvitations) > 0 {
		doc.PendingMembers = slices.DeleteFunc(doc.PendingMembers, func(inv models.Invitation) bool {
			return slices.Contains(p.RemoveInvitations, inv.ID)
		})
	}
	doc.UpdatedAt = now
}
