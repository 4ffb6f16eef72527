// Package board holds the project aggregate: every mutation reads the caller's
// last-seen snapshot, computes the new document and submits it as one write.
// The caller's snapshot only changes when the store echoes the write back.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kanban-board-api/internal/docstore"
	"kanban-board-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Snapshots serves the in-memory project documents of a signed-in user.
type Snapshots interface {
	Project(uid, projectID string) (models.Project, bool)
}

// Signals receives UI side signals raised by mutations.
type Signals interface {
	Celebrate(uid string)
}

// Directory resolves users for membership flows.
type Directory interface {
	ByID(ctx context.Context, id string) (models.User, error)
	SearchPrefix(ctx context.Context, field, prefix string, limit int) ([]models.User, error)
}

// Notifier delivers notifications outside of a batch.
type Notifier interface {
	Send(ctx context.Context, n models.Notification) error
}

// Service is the project aggregate mutator.
type Service struct {
	store   docstore.Store
	snaps   Snapshots
	signals Signals
	users   Directory
	notes   Notifier
	logger  *slog.Logger
	now     func() time.Time
	ids     taskIDs
}

// Deps bundles the collaborators of Service.
type Deps struct {
	Store     docstore.Store
	Snapshots Snapshots
	Signals   Signals
	Users     Directory
	Notifier  Notifier
	Logger    *slog.Logger
	Clock     func() time.Time
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return &Service{
		store:   d.Store,
		snaps:   d.Snapshots,
		signals: d.Signals,
		users:   d.Users,
		notes:   d.Notifier,
		logger:  d.Logger,
		now:     d.Clock,
	}
}

// snapshot returns a private copy of the actor's view of the project.
func (s *Service) snapshot(actor models.Identity, projectID string) (models.Project, error) {
	p, ok := s.snaps.Project(actor.UID, projectID)
	if !ok || !p.IsMember(actor.UID) {
		return models.Project{}, notFound("project")
	}
	return p.Clone(), nil
}

func (s *Service) ownedSnapshot(actor models.Identity, projectID string) (models.Project, error) {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return p, err
	}
	if p.OwnerID != actor.UID {
		return p, forbidden("only the project owner can do this")
	}
	return p, nil
}

// write submits patch and logs remote failures at the mutation boundary.
func (s *Service) write(ctx context.Context, op, projectID string, patch docstore.Patch) error {
	if err := s.store.Update(ctx, projectID, patch); err != nil {
		return s.remoteFailure(op, projectID, err)
	}
	return nil
}

func (s *Service) batch(ctx context.Context, op, projectID string, fn func(docstore.Batch) error) error {
	if err := s.store.Batch(ctx, fn); err != nil {
		return s.remoteFailure(op, projectID, err)
	}
	return nil
}

func (s *Service) remoteFailure(op, projectID string, err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return notFound("project")
	}
	s.logger.Error("document write failed", "op", op, "project", projectID, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) writeBoard(ctx context.Context, op string, p *models.Project) error {
	return s.write(ctx, op, p.ID, docstore.Board(p.Columns, p.Labels))
}

func (s *Service) celebrate(uid string) {
	if s.signals != nil {
		s.signals.Celebrate(uid)
	}
}

func (s *Service) notify(ctx context.Context, n models.Notification) {
	if s.notes == nil || n.UserID == "" {
		return
	}
	if err := s.notes.Send(ctx, n); err != nil {
		s.logger.Warn("notification not delivered", "user", n.UserID, "error", err)
	}
}

func projectLink(projectID string) string {
	return "/projects/" + projectID
}

func taskLink(projectID, taskID string) string {
	return projectLink(projectID) + "?task=" + taskID
}

// NewProject describes a project to create.
type NewProject struct {
	Name              string
	Description       string
	Features          *models.Features
	AutoArchivePeriod models.ArchivePeriod
}

// CreateProject makes actor the owner and sole member of a new board seeded
// with To Do, In Progress and a terminal Done column.
func (s *Service) CreateProject(ctx context.Context, actor models.Identity, in NewProject) (models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Project{}, invalid("project name is required")
	}
	period := in.AutoArchivePeriod
	if period == "" {
		period = models.ArchiveNever
	}
	if !period.Valid() {
		return models.Project{}, invalid("unknown auto-archive period")
	}
	features := models.DefaultFeatures()
	if in.Features != nil {
		features = *in.Features
	}

	now := s.now()
	column := func(title string, terminal bool) models.Column {
		return models.Column{ID: uuid.NewString(), Title: title, IsTerminal: terminal, Tasks: []models.Task{}, CreatedAt: now, UpdatedAt: now}
	}
	p := models.Project{
		Name:              name,
		Description:       strings.TrimSpace(in.Description),
		OwnerID:           actor.UID,
		Members:           datatypes.JSONSlice[string]{actor.UID},
		PendingMembers:    datatypes.JSONSlice[models.Invitation]{},
		Columns:           datatypes.JSONSlice[models.Column]{column("To Do", false), column("In Progress", false), column("Done", true)},
		Labels:            datatypes.JSONSlice[models.Label]{},
		Features:          datatypes.NewJSONType(features),
		AutoArchivePeriod: period,
	}
	if err := s.store.Create(ctx, &p); err != nil {
		return models.Project{}, s.remoteFailure("create project", "", err)
	}
	return p, nil
}

// ProjectPatch carries the editable project settings.
type ProjectPatch struct {
	Name              *string
	Description       *string
	Features          *models.Features
	AutoArchivePeriod *models.ArchivePeriod
}

// UpdateProject changes settings. Owner only.
func (s *Service) UpdateProject(ctx context.Context, actor models.Identity, projectID string, in ProjectPatch) error {
	if _, err := s.ownedSnapshot(actor, projectID); err != nil {
		return err
	}
	patch := docstore.Patch{
		Description:       in.Description,
		Features:          in.Features,
		AutoArchivePeriod: in.AutoArchivePeriod,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return invalid("project name is required")
		}
		patch.Name = &name
	}
	if in.AutoArchivePeriod != nil && !in.AutoArchivePeriod.Valid() {
		return invalid("unknown auto-archive period")
	}
	return s.write(ctx, "update project", projectID, patch)
}

// DeleteProject destroys the document with everything embedded in it. Owner only.
func (s *Service) DeleteProject(ctx context.Context, actor models.Identity, projectID string) error {
	if _, err := s.ownedSnapshot(actor, projectID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, projectID); err != nil {
		return s.remoteFailure("delete project", projectID, err)
	}
	return nil
}

// AddColumn appends a non-terminal column.
func (s *Service) AddColumn(ctx context.Context, actor models.Identity, projectID, title string) (models.Column, error) {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return models.Column{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Column{}, invalid("column title is required")
	}
	now := s.now()
	c := models.Column{ID: uuid.NewString(), Title: title, Tasks: []models.Task{}, CreatedAt: now, UpdatedAt: now}
	p.Columns = append(p.Columns, c)
	return c, s.writeBoard(ctx, "add column", &p)
}

// UpdateColumnTitle renames a column. The terminal role is unaffected by its title.
func (s *Service) UpdateColumnTitle(ctx context.Context, actor models.Identity, projectID, columnID, title string) error {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return err
	}
	ci := p.Column(columnID)
	if ci < 0 {
		return notFound("column")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid("column title is required")
	}
	if p.Columns[ci].Title == title {
		return nil
	}
	p.Columns[ci].Title = title
	p.Columns[ci].UpdatedAt = s.now()
	return s.writeBoard(ctx, "rename column", &p)
}

// DeleteColumn removes an empty, non-terminal column.
func (s *Service) DeleteColumn(ctx context.Context, actor models.Identity, projectID, columnID string) error {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return err
	}
	ci := p.Column(columnID)
	if ci < 0 {
		return notFound("column")
	}
	if n := len(p.Columns[ci].Tasks); n > 0 {
		return warning("column_not_empty", fmt.Sprintf("Move or delete the %d task(s) in %q before deleting it", n, p.Columns[ci].Title))
	}
	if p.Columns[ci].IsTerminal {
		return warning("terminal_column", "The completion column cannot be deleted")
	}
	p.Columns = append(p.Columns[:ci], p.Columns[ci+1:]...)
	return s.writeBoard(ctx, "delete column", &p)
}

// MoveColumn reinserts draggedID at targetID's current position.
func (s *Service) MoveColumn(ctx context.Context, actor models.Identity, projectID, draggedID, targetID string) error {
	if draggedID == targetID {
		return nil
	}
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return err
	}
	from, to := p.Column(draggedID), p.Column(targetID)
	if from < 0 || to < 0 {
		return notFound("column")
	}
	p.Columns = MoveBefore(p.Columns, from, to)
	return s.writeBoard(ctx, "move column", &p)
}

// CreateLabel adds a label to the project.
func (s *Service) CreateLabel(ctx context.Context, actor models.Identity, projectID, name, color string) (models.Label, error) {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return models.Label{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Label{}, invalid("label name is required")
	}
	l := models.Label{ID: uuid.NewString(), Name: name, Color: color}
	p.Labels = append(p.Labels, l)
	return l, s.writeBoard(ctx, "create label", &p)
}

// UpdateLabel edits a label's name or color.
func (s *Service) UpdateLabel(ctx context.Context, actor models.Identity, projectID, labelID string, name, color *string) error {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return err
	}
	for i := range p.Labels {
		if p.Labels[i].ID != labelID {
			continue
		}
		if name != nil {
			n := strings.TrimSpace(*name)
			if n == "" {
				return invalid("label name is required")
			}
			p.Labels[i].Name = n
		}
		if color != nil {
			p.Labels[i].Color = *color
		}
		return s.writeBoard(ctx, "update label", &p)
	}
	return notFound("label")
}

// DeleteLabel removes the label and strips it from every task in the same write.
func (s *Service) DeleteLabel(ctx context.Context, actor models.Identity, projectID, labelID string) error {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return err
	}
	if _, ok := p.Label(labelID); !ok {
		return notFound("label")
	}
	labels := p.Labels[:0]
	for _, l := range p.Labels {
		if l.ID != labelID {
			labels = append(labels, l)
		}
	}
	p.Labels = labels
	for ci := range p.Columns {
		for ti := range p.Columns[ci].Tasks {
			t := &p.Columns[ci].Tasks[ti]
			t.LabelIDs = without(t.LabelIDs, labelID)
		}
	}
	return s.writeBoard(ctx, "delete label", &p)
}

func without(ids []string, drop string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
