package templates

// PostCard is the summary view of a post on the home and publications pages.
type PostCard struct {
	Title         string
	Slug          string
	Excerpt       string
	Category      string
	Tags          []string
	PublishedDate string
	FeaturedImage string
	IsPDF         bool
}

// HomePageData contains dynamic values rendered on the landing page.
type HomePageData struct {
	Author string
	Recent []PostCard
}

// BioPageData contains the values for the biography page.
type BioPageData struct {
	Author string
}

// CategoryChip is a clickable category filter on the publications page.
type CategoryChip struct {
	Name     string
	Slug     string
	Selected bool
}

// PublicationsPageData bundles template data for the publications list.
type PublicationsPageData struct {
	Categories []CategoryChip
	Selected   string
	Posts      []PostCard
}

// PostPageData contains the dynamic values for a single article view.
type PostPageData struct {
	Title         string
	Author        string
	PublishedDate string
	Tags          []string
	Category      string
	FeaturedImage string
	HTML          string
}

// PDFPageData contains the values for the PDF article view, which embeds the
// document and offers a download link.
type PDFPageData struct {
	Title       string
	Author      string
	DocumentURL string
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	StatusLabel string
	Message     string
}
