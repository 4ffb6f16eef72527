package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kanban-board-api/internal/board"
	"kanban-board-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEmailTaken is returned when registering an address that already exists.
var ErrEmailTaken = errors.New("email already registered")

// prefixEnd bounds a prefix range scan: every string starting with p sorts
// below p + prefixEnd.
const prefixEnd = "\uf8ff"

// Repo is the gorm-backed user directory.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Create stores a new user with an already hashed password.
func (r *Repo) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ByID implements board.Directory.
func (r *Repo) ByID(ctx context.Context, id string) (models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// ByEmail looks a user up by login address.
func (r *Repo) ByEmail(ctx context.Context, email string) (models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *Repo) first(ctx context.Context, query string, arg string) (models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, board.ErrUnknownUser
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// SearchPrefix implements board.Directory as a range scan on field, which must
// be display_name or email. Display names match case-sensitively; emails are
// stored lower-cased, so the prefix is lower-cased for them.
func (r *Repo) SearchPrefix(ctx context.Context, field, prefix string, limit int) ([]models.User, error) {
	switch field {
	case "display_name":
	case "email":
		prefix = strings.ToLower(prefix)
	default:
		return nil, fmt.Errorf("unsupported search field %q", field)
	}
	var out []models.User
	err := r.db.WithContext(ctx).
		Where(field+" >= ? AND "+field+" < ?", prefix, prefix+prefixEnd).
		Order(field).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return out, nil
}
