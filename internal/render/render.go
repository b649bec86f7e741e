// Package render converts stored post content into sanitized display HTML.
package render

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"gerbier/site/internal/content"
)

// Renderer prepares composite content for display: placeholders are
// rehydrated through the codec, the result is rendered as GFM markdown
// and the HTML is sanitized before it reaches a browser.
type Renderer struct {
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewRenderer builds the markdown pipeline used by the public views.
func NewRenderer() *Renderer {
	markdown := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
			gmhtml.WithUnsafe(),
		),
	)

	sanitizer := bluemonday.UGCPolicy()
	// Inline payloads are data URLs, which the default policy strips.
	sanitizer.AllowDataURIImages()

	return &Renderer{markdown: markdown, sanitizer: sanitizer}
}

// PrepareContent rehydrates a composite content string for rendering.
// Legacy content with no side table passes through unchanged, and
// placeholders with missing entries stay literal.
func (r *Renderer) PrepareContent(full string) string {
	return content.TransformForRendering(content.Parse(full))
}

// RenderHTML produces sanitized display HTML for stored post content.
func (r *Renderer) RenderHTML(full string) (string, error) {
	prepared := r.PrepareContent(full)

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(prepared), &buf); err != nil {
		return "", eris.Wrap(err, "converting markdown")
	}

	return r.sanitizer.Sanitize(buf.String()), nil
}

// PlainExcerpt strips markup from rendered HTML and truncates the text to at
// most max characters on a word boundary. List views use it when a post has
// no authored excerpt.
func PlainExcerpt(renderedHTML string, max int) string {
	var b strings.Builder

	tokenizer := html.NewTokenizer(strings.NewReader(renderedHTML))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
			if b.Len() > max {
				break
			}
		}
	}

	excerpt := b.String()
	if len(excerpt) <= max {
		return excerpt
	}

	excerpt = excerpt[:max]
	if lastSpace := strings.LastIndexAny(excerpt, " \t"); lastSpace > 0 {
		excerpt = excerpt[:lastSpace]
	}
	return excerpt + "..."
}
