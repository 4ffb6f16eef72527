package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"kanban-board-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	memberOfClause = "EXISTS (SELECT 1 FROM json_each(projects.members) WHERE json_each.value = ?)"
	pendingClause  = "EXISTS (SELECT 1 FROM json_each(projects.pending_members) WHERE json_extract(json_each.value, '$.userId') = ?)"
)

// GormStore keeps project documents in SQLite through gorm and fans committed
// changes out to in-process watchers.
type GormStore struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	seq      uint64
	watchers map[string]map[uint64]func(Change)
}

// NewGormStore wraps an open, migrated database.
func NewGormStore(db *gorm.DB, logger *slog.Logger) *GormStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormStore{
		db:       db,
		logger:   logger,
		now:      time.Now,
		watchers: make(map[string]map[uint64]func(Change)),
	}
}

func newFeatures(f models.Features) datatypes.JSONType[models.Features] {
	return datatypes.NewJSONType(f)
}

// Create inserts p, generating an id when p.ID is empty.
func (s *GormStore) Create(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	s.publish(ctx, []string{p.ID}, nil)
	return nil
}

// Get loads a single project by id.
func (s *GormStore) Get(ctx context.Context, id string) (models.Project, error) {
	return load(s.db.WithContext(ctx), id)
}

func load(db *gorm.DB, id string) (models.Project, error) {
	var p models.Project
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, fmt.Errorf("load project %s: %w", id, err)
	}
	return p, nil
}

// Update applies patch to one project in its own transaction.
func (s *GormStore) Update(ctx context.Context, id string, patch Patch) error {
	return s.Batch(ctx, func(b Batch) error {
		return b.Update(id, patch)
	})
}

// Delete removes the project document, which cascades its columns, tasks and labels.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	s.publish(ctx, []string{id}, map[string][]string{id: p.Members})
	return nil
}

// Batch runs fn inside one transaction. Nothing is published unless it commits.
func (s *GormStore) Batch(ctx context.Context, fn func(Batch) error) error {
	b := &gormBatch{now: s.now(), before: make(map[string][]string)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b.tx = tx
		return fn(b)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, b.touched, b.before)
	return nil
}

// PendingFor lists projects holding an invitation for uid.
func (s *GormStore) PendingFor(ctx context.Context, uid string) ([]models.Project, error) {
	var out []models.Project
	if err := s.db.WithContext(ctx).Where(pendingClause, uid).Order("created_at").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query pending invitations: %w", err)
	}
	return out, nil
}

// Watch registers fn for uid and replays the current projects of uid.
func (s *GormStore) Watch(ctx context.Context, uid string, fn func(Change)) (func(), error) {
	s.mu.Lock()
	s.seq++
	id := s.seq
	if s.watchers[uid] == nil {
		s.watchers[uid] = make(map[uint64]func(Change))
	}
	s.watchers[uid][id] = fn
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers[uid], id)
		if len(s.watchers[uid]) == 0 {
			delete(s.watchers, uid)
		}
	}

	var initial []models.Project
	if err := s.db.WithContext(ctx).Where(memberOfClause, uid).Order("created_at").Find(&initial).Error; err != nil {
		cancel()
		return nil, fmt.Errorf("query projects for %s: %w", uid, err)
	}
	for i := range initial {
		fn(Change{Kind: ChangeUpsert, ProjectID: initial[i].ID, Project: &initial[i]})
	}
	return cancel, nil
}

// publish reloads each touched project and notifies current members, plus
// former members that lost access.
func (s *GormStore) publish(ctx context.Context, ids []string, before map[string][]string) {
	db := s.db.WithContext(context.WithoutCancel(ctx))
	for _, id := range ids {
		p, err := load(db, id)
		if errors.Is(err, ErrNotFound) {
			s.fanOut(before[id], Change{Kind: ChangeRemoved, ProjectID: id})
			continue
		}
		if err != nil {
			s.logger.Error("reload after write failed", "project", id, "error", err)
			continue
		}
		for _, uid := range p.Members {
			cp := p.Clone()
			s.fanOut([]string{uid}, Change{Kind: ChangeUpsert, ProjectID: id, Project: &cp})
		}
		gone := slices.DeleteFunc(slices.Clone(before[id]), p.IsMember)
		s.fanOut(gone, Change{Kind: ChangeRemoved, ProjectID: id})
	}
}

func (s *GormStore) fanOut(uids []string, c Change) {
	var fns []func(Change)
	s.mu.RLock()
	for _, uid := range uids {
		for _, fn := range s.watchers[uid] {
			fns = append(fns, fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}

type gormBatch struct {
	tx      *gorm.DB
	now     time.Time
	touched []string
	before  map[string][]string
}

func (b *gormBatch) Update(projectID string, patch Patch) error {
	p, err := load(b.tx, projectID)
	if err != nil {
		return err
	}
	if id := patch.RequireInvitation; id != "" {
		if _, ok := p.Invitation(id); !ok {
			return fmt.Errorf("invitation %s: %w", id, ErrPreconditionFailed)
		}
	}
	if _, seen := b.before[projectID]; !seen {
		b.before[projectID] = slices.Clone([]string(p.Members))
		b.touched = append(b.touched, projectID)
	}
	patch.Apply(&p, b.now)
	if err := b.tx.Save(&p).Error; err != nil {
		return fmt.Errorf("update project %s: %w", projectID, err)
	}
	return nil
}

func (b *gormBatch) Notify(n models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now
	}
	if err := b.tx.Create(&n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
