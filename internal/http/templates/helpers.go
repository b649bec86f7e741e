package templates

import (
	"context"
	"html"
	"io"

	"github.com/a-h/templ"
)

// RawHTML returns a templ component that writes the provided HTML without
// escaping. Callers must only pass sanitized markup.
func RawHTML(markup string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, err := io.WriteString(w, markup)
		return err
	})
}

// esc escapes a value for interpolation into markup.
func esc(value string) string {
	return html.EscapeString(value)
}
