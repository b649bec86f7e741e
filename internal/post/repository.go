package post

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Repository defines persistence operations for posts and categories. All
// implementations treat Save as an upsert keyed by id (last write wins) and
// return nil, nil for lookups that find nothing.
type Repository interface {
	GetAll(ctx context.Context) ([]Post, error)
	GetPublished(ctx context.Context) ([]Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	Save(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error

	GetAllCategories(ctx context.Context) ([]Category, error)
	SaveCategory(ctx context.Context, c *Category) error
}

// GormRepository persists posts using a Gorm database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: db, logger: logger}, nil
}

var _ Repository = (*GormRepository)(nil)

// GetAll returns every post, drafts included, most recently created first.
func (r *GormRepository) GetAll(ctx context.Context) ([]Post, error) {
	var posts []Post

	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error; err != nil {
		r.logError(nil, err, "listing posts")
		return nil, eris.Wrap(err, "listing posts")
	}

	return posts, nil
}

// GetPublished returns published posts sorted by publish time, most recent
// first.
func (r *GormRepository) GetPublished(ctx context.Context) ([]Post, error) {
	var posts []Post

	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("published_at DESC").
		Find(&posts).Error
	if err != nil {
		r.logError(nil, err, "listing published posts")
		return nil, eris.Wrap(err, "listing published posts")
	}

	return posts, nil
}

// GetBySlug returns the post for the provided slug or nil when not found.
// Slugs are not unique by construction; when titles collide the most
// recently created post wins the lookup.
func (r *GormRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}

	var p Post
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&p, "slug = ?", trimmed).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"slug": trimmed}, err, "fetching post by slug")
		return nil, eris.Wrapf(err, "fetching post by slug: %s", trimmed)
	}

	return &p, nil
}

// GetByID returns the post for the provided id or nil when not found.
func (r *GormRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, eris.New("post id is required")
	}

	var p Post
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"post_id": id}, err, "fetching post by id")
		return nil, eris.Wrapf(err, "fetching post by id: %s", id)
	}

	return &p, nil
}

// Save stores the post, inserting or overwriting the row at its id.
func (r *GormRepository) Save(ctx context.Context, p *Post) error {
	if p == nil {
		return eris.New("post is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return eris.New("post id is required")
	}

	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		r.logError(logrus.Fields{"post_id": p.ID}, err, "saving post")
		return eris.Wrapf(err, "saving post: %s", p.ID)
	}

	return nil
}

// Delete removes the post at id. Deleting a missing id is not an error.
func (r *GormRepository) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return eris.New("post id is required")
	}

	if err := r.db.WithContext(ctx).Delete(&Post{}, "id = ?", id).Error; err != nil {
		r.logError(logrus.Fields{"post_id": id}, err, "deleting post")
		return eris.Wrapf(err, "deleting post: %s", id)
	}

	return nil
}

// GetAllCategories returns every category ordered by name.
func (r *GormRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category

	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		r.logError(nil, err, "listing categories")
		return nil, eris.Wrap(err, "listing categories")
	}

	return categories, nil
}

// SaveCategory stores the category, inserting or updating the row as needed.
func (r *GormRepository) SaveCategory(ctx context.Context, c *Category) error {
	if c == nil {
		return eris.New("category is nil")
	}
	if strings.TrimSpace(c.ID) == "" {
		return eris.New("category id is required")
	}

	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		r.logError(logrus.Fields{"category": c.Name}, err, "saving category")
		return eris.Wrapf(err, "saving category: %s", c.Name)
	}

	return nil
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
