package post

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
)

// MemoryRepository is an in-memory Repository for tests and offline use. It
// mirrors the Gorm implementation's contract: upsert by id, nil for missing
// lookups, published posts sorted by publish time descending.
type MemoryRepository struct {
	mu         sync.RWMutex
	posts      map[string]Post
	categories map[string]Category
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:      make(map[string]Post),
		categories: make(map[string]Category),
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) GetAll(_ context.Context) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r *MemoryRepository) GetPublished(_ context.Context) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var posts []Post
	for _, p := range r.posts {
		if p.Published {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		left, right := posts[i].PublishedAt, posts[j].PublishedAt
		if left == nil {
			return false
		}
		if right == nil {
			return true
		}
		return left.After(*right)
	})
	return posts, nil
}

func (r *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Post, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *Post
	for _, p := range r.posts {
		if p.Slug != trimmed {
			continue
		}
		if found == nil || p.CreatedAt.After(found.CreatedAt) {
			copied := p
			found = &copied
		}
	}
	return found, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, eris.New("post id is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := p
	return &copied, nil
}

func (r *MemoryRepository) Save(_ context.Context, p *Post) error {
	if p == nil {
		return eris.New("post is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return eris.New("post id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts[p.ID] = *p
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return eris.New("post id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts, id)
	return nil
}

func (r *MemoryRepository) GetAllCategories(_ context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *MemoryRepository) SaveCategory(_ context.Context, c *Category) error {
	if c == nil {
		return eris.New("category is nil")
	}
	if strings.TrimSpace(c.ID) == "" {
		return eris.New("category id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.categories[c.ID] = *c
	return nil
}
