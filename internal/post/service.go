package post

import (
	"context"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"gerbier/site/internal/slug"
)

// Service defines higher-level post operations built on top of the
// repository: save semantics (slug derivation, publish transitions),
// category management and the public read paths.
type Service interface {
	GetAllPosts(ctx context.Context) ([]Post, error)
	GetPublishedPosts(ctx context.Context) ([]Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	GetPostByID(ctx context.Context, id string) (*Post, error)
	SavePost(ctx context.Context, p *Post) (*Post, error)
	DeletePost(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name string) (*Category, error)
}

type service struct {
	repo      Repository
	validate  *validator.Validate
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	now       func() time.Time
}

var _ Service = (*service)(nil)

// NewService wires the post service with its dependencies.
func NewService(repo Repository, logger *logrus.Logger, hub *sentry.Hub) (Service, error) {
	if repo == nil {
		return nil, eris.New("post repository is required")
	}

	return &service{
		repo:      repo,
		validate:  validator.New(),
		logger:    logger,
		sentryHub: hub,
		now:       time.Now,
	}, nil
}

func (s *service) GetAllPosts(ctx context.Context) ([]Post, error) {
	posts, err := s.repo.GetAll(ctx)
	if err != nil {
		s.recordError(nil, err, "listing all posts")
		return nil, eris.Wrap(err, "listing all posts")
	}
	return posts, nil
}

func (s *service) GetPublishedPosts(ctx context.Context) ([]Post, error) {
	posts, err := s.repo.GetPublished(ctx)
	if err != nil {
		s.recordError(nil, err, "listing published posts")
		return nil, eris.Wrap(err, "listing published posts")
	}
	return posts, nil
}

func (s *service) GetPostBySlug(ctx context.Context, postSlug string) (*Post, error) {
	trimmed := strings.TrimSpace(postSlug)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}

	p, err := s.repo.GetBySlug(ctx, trimmed)
	if err != nil {
		s.recordError(logrus.Fields{"slug": trimmed}, err, "fetching post by slug")
		return nil, eris.Wrapf(err, "fetching post by slug: %s", trimmed)
	}
	return p, nil
}

func (s *service) GetPostByID(ctx context.Context, id string) (*Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.recordError(logrus.Fields{"post_id": id}, err, "fetching post by id")
		return nil, eris.Wrapf(err, "fetching post by id: %s", id)
	}
	return p, nil
}

// SavePost upserts a post. The slug is re-derived from the title at every
// save; CreatedAt is fixed at first save and preserved across edits;
// PublishedAt is set only when Published transitions to true and cleared
// when the post is unpublished. Save failures propagate so the editor can
// show a save-failed state.
func (s *service) SavePost(ctx context.Context, p *Post) (*Post, error) {
	if p == nil {
		return nil, eris.New("post is nil")
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ContentType == "" {
		p.ContentType = ContentTypeMarkdown
	}
	p.Slug = slug.Slugify(p.Title)

	if err := s.validate.Struct(p); err != nil {
		return nil, eris.Wrap(err, "validating post")
	}

	prior, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		s.recordError(logrus.Fields{"post_id": p.ID}, err, "loading prior post state")
		return nil, eris.Wrapf(err, "loading prior post state: %s", p.ID)
	}

	now := s.now()
	if prior != nil {
		p.CreatedAt = prior.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	switch {
	case p.Published && (prior == nil || !prior.Published):
		p.PublishedAt = &now
	case p.Published && prior != nil:
		p.PublishedAt = prior.PublishedAt
	default:
		p.PublishedAt = nil
	}

	s.warnOnSlugCollision(ctx, p)

	if err := s.repo.Save(ctx, p); err != nil {
		s.recordError(logrus.Fields{"post_id": p.ID}, err, "saving post")
		return nil, eris.Wrapf(err, "saving post: %s", p.ID)
	}

	return p, nil
}

func (s *service) DeletePost(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return eris.New("post id is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.recordError(logrus.Fields{"post_id": id}, err, "deleting post")
		return eris.Wrapf(err, "deleting post: %s", id)
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.GetAllCategories(ctx)
	if err != nil {
		s.recordError(nil, err, "listing categories")
		return nil, eris.Wrap(err, "listing categories")
	}
	return categories, nil
}

// CreateCategory upserts a category by its slug so that creating the same
// name twice converges on one row.
func (s *service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, eris.New("category name is required")
	}

	categorySlug := slug.Slugify(trimmed)

	existing, err := s.repo.GetAllCategories(ctx)
	if err != nil {
		s.recordError(logrus.Fields{"category": trimmed}, err, "listing categories for upsert")
		return nil, eris.Wrap(err, "listing categories for upsert")
	}

	c := &Category{ID: uuid.NewString(), Name: trimmed, Slug: categorySlug}
	for _, candidate := range existing {
		if candidate.Slug == categorySlug {
			c.ID = candidate.ID
			break
		}
	}

	if err := s.repo.SaveCategory(ctx, c); err != nil {
		s.recordError(logrus.Fields{"category": trimmed}, err, "saving category")
		return nil, eris.Wrapf(err, "saving category: %s", trimmed)
	}

	return c, nil
}

// warnOnSlugCollision makes silent slug shadowing observable. Saves are not
// rejected: lookups resolve to the most recently created post.
func (s *service) warnOnSlugCollision(ctx context.Context, p *Post) {
	if s.logger == nil || p.Slug == "" {
		return
	}

	existing, err := s.repo.GetBySlug(ctx, p.Slug)
	if err != nil || existing == nil || existing.ID == p.ID {
		return
	}

	s.logger.WithFields(logrus.Fields{
		"slug":     p.Slug,
		"post_id":  p.ID,
		"other_id": existing.ID,
	}).Warn("slug collides with an existing post")
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
