package post

import "time"

// Content types a post can carry.
const (
	ContentTypeMarkdown = "markdown"
	ContentTypePDF      = "pdf"
)

// Post is a published or draft article. Content holds the composite encoded
// string produced by the content codec; PDFData is only present for PDF
// posts. FeaturedImage is an inline payload independent of the side table.
type Post struct {
	ID            string     `gorm:"primaryKey;size:64" json:"id,omitempty" validate:"required"`
	Slug          string     `gorm:"size:255;index:idx_posts_slug" json:"slug,omitempty"`
	Title         string     `gorm:"size:512;not null" json:"title" validate:"required"`
	Excerpt       string     `gorm:"type:text" json:"excerpt,omitempty"`
	Content       string     `gorm:"type:text" json:"content,omitempty"`
	ContentType   string     `gorm:"size:16;default:markdown" json:"contentType,omitempty" validate:"omitempty,oneof=markdown pdf"`
	PDFData       string     `gorm:"type:text" json:"pdfData,omitempty"`
	FeaturedImage string     `gorm:"type:text" json:"featuredImage,omitempty"`
	Author        string     `gorm:"size:255;not null" json:"author" validate:"required"`
	Tags          []string   `gorm:"serializer:json" json:"tags,omitempty"`
	Category      string     `gorm:"size:255" json:"category,omitempty"`
	Published     bool       `json:"published"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
	UpdatedAt     time.Time  `json:"-"`
}

// TableName defines the table name for the Post model.
func (Post) TableName() string {
	return "posts"
}

// Category groups posts by a name-matched label. A post whose category
// string matches no Category row is treated as uncategorized.
type Category struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
	Slug string `gorm:"size:255;uniqueIndex:idx_categories_slug" json:"slug"`
}

// TableName defines the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}
