package post

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gerbier/site/internal/db"
)

func setupRepository(t *testing.T) *GormRepository {
	t.Helper()

	conn, err := db.Open(db.Options{Path: filepath.Join(t.TempDir(), "posts.db")})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(conn); closeErr != nil {
			t.Errorf("closing database: %v", closeErr)
		}
	})

	if err := Migrate(context.Background(), conn, nil); err != nil {
		t.Fatalf("migrating schema: %v", err)
	}

	repo, err := NewRepository(conn, nil)
	if err != nil {
		t.Fatalf("building repository: %v", err)
	}
	return repo
}

func TestNewRepositoryRequiresDatabase(t *testing.T) {
	t.Parallel()

	if _, err := NewRepository(nil, nil); err == nil {
		t.Fatal("expected error when database is nil")
	}
}

func TestSaveAndGetByIDRoundTrip(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	original := &Post{
		ID:          "p1",
		Slug:        "economie-societe",
		Title:       "Économie & Société",
		Excerpt:     "An excerpt.",
		Content:     "# Body",
		ContentType: ContentTypeMarkdown,
		Author:      "B. Gerbier",
		Tags:        []string{"Droit", "Anthropologie"},
		Category:    "Essais",
		Published:   true,
		PublishedAt: &now,
		CreatedAt:   now,
	}

	if err := repo.Save(ctx, original); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	stored, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if stored == nil {
		t.Fatal("expected stored post")
	}
	if stored.Title != original.Title || stored.Slug != original.Slug {
		t.Fatalf("post fields changed: %#v", stored)
	}
	if len(stored.Tags) != 2 || stored.Tags[0] != "Droit" {
		t.Fatalf("tags not preserved: %v", stored.Tags)
	}
	if stored.PublishedAt == nil || !stored.PublishedAt.Equal(now) {
		t.Fatalf("publishedAt not preserved: %v", stored.PublishedAt)
	}
}

func TestGetByIDReturnsNilForMissingPost(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	p, err := repo.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil for missing post, got %#v", p)
	}
}

func TestGetBySlugReturnsMostRecentOnCollision(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	older := &Post{ID: "a", Slug: "shared", Title: "Shared", Author: "x", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &Post{ID: "b", Slug: "shared", Title: "Shared", Author: "x", CreatedAt: time.Now()}
	for _, p := range []*Post{older, newer} {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}

	found, err := repo.GetBySlug(ctx, "shared")
	if err != nil {
		t.Fatalf("GetBySlug returned error: %v", err)
	}
	if found == nil || found.ID != "b" {
		t.Fatalf("expected most recent post to win lookup, got %#v", found)
	}
}

func TestGetPublishedFiltersAndSortsDescending(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	posts := []*Post{
		{ID: "draft", Slug: "draft", Title: "Draft", Author: "x", Published: false},
		{ID: "old", Slug: "old", Title: "Old", Author: "x", Published: true, PublishedAt: &early},
		{ID: "new", Slug: "new", Title: "New", Author: "x", Published: true, PublishedAt: &late},
	}
	for _, p := range posts {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}

	published, err := repo.GetPublished(ctx)
	if err != nil {
		t.Fatalf("GetPublished returned error: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published posts, got %d", len(published))
	}
	if published[0].ID != "new" || published[1].ID != "old" {
		t.Fatalf("expected publishedAt descending order, got %s then %s", published[0].ID, published[1].ID)
	}
}

func TestDeleteRemovesPost(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, &Post{ID: "gone", Slug: "gone", Title: "Gone", Author: "x"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := repo.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	p, err := repo.GetByID(ctx, "gone")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if p != nil {
		t.Fatal("expected post to be deleted")
	}

	// Deleting a missing id is not an error.
	if err := repo.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete of missing id returned error: %v", err)
	}
}

func TestCategoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	for _, c := range []*Category{
		{ID: "c2", Name: "Société", Slug: "societe"},
		{ID: "c1", Name: "Droit", Slug: "droit"},
	} {
		if err := repo.SaveCategory(ctx, c); err != nil {
			t.Fatalf("SaveCategory returned error: %v", err)
		}
	}

	categories, err := repo.GetAllCategories(ctx)
	if err != nil {
		t.Fatalf("GetAllCategories returned error: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "Droit" {
		t.Fatalf("expected name order, got %s first", categories[0].Name)
	}
}
