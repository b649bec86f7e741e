// Package templates holds the site's HTML components, written directly
// against templ's component API.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Layout wraps page content in the shared document shell with the site
// navigation and footer.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>%s</title>
<link rel="icon" href="/favicon.ico"/>
</head>
<body>
<header class="site-header">
<nav>
<a href="/">Accueil</a>
<a href="/bio">Bio</a>
<a href="/publications">Publications</a>
</nav>
</header>
<main>
`, esc(title)); err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `
</main>
<footer class="site-footer">
<p>Portfolio &amp; publications.</p>
</footer>
</body>
</html>
`)
		return err
	})
}

// HomePage renders the landing page with the most recent publications.
func HomePage(data HomePageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="hero">
<h1>%s</h1>
<p>Portfolio professionnel et publications.</p>
</section>
<section class="recent-posts">
<h2>Publications r&eacute;centes</h2>
`, esc(data.Author)); err != nil {
			return err
		}

		if len(data.Recent) == 0 {
			if _, err := io.WriteString(w, `<p class="empty">Aucune publication pour le moment.</p>`); err != nil {
				return err
			}
		}
		for _, card := range data.Recent {
			if err := postCard(card).Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "\n</section>")
		return err
	})

	return Layout(data.Author, body)
}

// BioPage renders the biography page.
func BioPage(data BioPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<article class="bio">
<h1>%s</h1>
<p>Avocat et anthropologue du droit. Parcours, recherches et engagements.</p>
</article>`, esc(data.Author))
		return err
	})

	return Layout("Bio • "+data.Author, body)
}

// PublicationsPage renders the filterable publications directory.
func PublicationsPage(data PublicationsPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Publications</h1>
<div class="category-filter">
<a href="/publications" class="`+chipClass(data.Selected == "")+`">Toutes</a>
`); err != nil {
			return err
		}

		for _, chip := range data.Categories {
			if _, err := fmt.Fprintf(w, `<a href="/publications?category=%s" class="%s">%s</a>
`, esc(chip.Slug), chipClass(chip.Selected), esc(chip.Name)); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `</div>
<div class="post-list">
`); err != nil {
			return err
		}

		if len(data.Posts) == 0 {
			if _, err := io.WriteString(w, `<p class="empty">Aucune publication dans cette cat&eacute;gorie.</p>`); err != nil {
				return err
			}
		}
		for _, card := range data.Posts {
			if err := postCard(card).Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "\n</div>")
		return err
	})

	return Layout("Publications", body)
}

// PostPage renders a markdown article. data.HTML must already be sanitized.
func PostPage(data PostPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<article class="post">
<a href="/publications" class="back">&larr; Retour aux publications</a>
`); err != nil {
			return err
		}

		if data.FeaturedImage != "" {
			if _, err := fmt.Fprintf(w, `<img class="featured" src="%s" alt="%s"/>
`, esc(data.FeaturedImage), esc(data.Title)); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, `<header>
<h1>%s</h1>
<p class="byline">%s — %s</p>
`, esc(data.Title), esc(data.Author), esc(data.PublishedDate)); err != nil {
			return err
		}

		if len(data.Tags) > 0 {
			tags := make([]string, 0, len(data.Tags))
			for _, tag := range data.Tags {
				tags = append(tags, `<span class="tag">`+esc(tag)+`</span>`)
			}
			if _, err := fmt.Fprintf(w, `<div class="tags">%s</div>
`, strings.Join(tags, " ")); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "</header>\n<div class=\"content\">\n"); err != nil {
			return err
		}

		if err := RawHTML(data.HTML).Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, "\n</div>\n</article>")
		return err
	})

	return Layout(data.Title, body)
}

// PDFPage renders a PDF article: an embedded viewer plus a download link.
func PDFPage(data PDFPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<article class="post pdf">
<a href="/publications" class="back">&larr; Retour aux publications</a>
<header>
<h1>%[1]s</h1>
<p class="byline">%[2]s</p>
</header>
<object data="%[3]s" type="application/pdf" class="pdf-viewer">
<p>Votre navigateur ne peut pas afficher le PDF. <a href="%[3]s" download>T&eacute;l&eacute;charger le document</a>.</p>
</object>
<a href="%[3]s" download class="download">T&eacute;l&eacute;charger le PDF</a>
</article>`, esc(data.Title), esc(data.Author), esc(data.DocumentURL))
		return err
	})

	return Layout(data.Title, body)
}

// ErrorPage renders a user-facing failure notice.
func ErrorPage(data ErrorPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<section class="error">
<h1>%s</h1>
<p>%s</p>
<a href="/">Retour &agrave; l'accueil</a>
</section>`, esc(data.StatusLabel), esc(data.Message))
		return err
	})

	return Layout(data.StatusLabel, body)
}

func postCard(card PostCard) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<article class="post-card">
<h3><a href="/posts/%s">%s</a></h3>
`, esc(card.Slug), esc(card.Title)); err != nil {
			return err
		}

		if card.Category != "" {
			if _, err := fmt.Fprintf(w, `<span class="category">%s</span>
`, esc(card.Category)); err != nil {
				return err
			}
		}
		if card.IsPDF {
			if _, err := io.WriteString(w, `<span class="badge">PDF</span>
`); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w, `<p>%s</p>
<p class="date">%s</p>
</article>
`, esc(card.Excerpt), esc(card.PublishedDate))
		return err
	})
}

func chipClass(selected bool) string {
	if selected {
		return "chip chip-selected"
	}
	return "chip"
}
