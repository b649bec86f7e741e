// Package editor implements the authoring surface over a composite content
// document: cursor-relative markdown insertion and image insertion through
// the compressor and codec. Every mutation re-serializes from the full
// in-memory state, so no operation can corrupt the side table.
package editor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"gerbier/site/internal/content"
	"gerbier/site/internal/imaging"
)

// ImageCompressor is the capability the editor needs from the imaging layer.
type ImageCompressor interface {
	Compress(ctx context.Context, data []byte, kind imaging.Kind) (string, error)
}

// Document is an editable post body: visible markdown, the image side table
// and the current selection. Selection indices are rune offsets into the
// visible text; when start equals end the selection is a bare caret.
type Document struct {
	visible    []rune
	images     map[string]string
	selStart   int
	selEnd     int
	compressor ImageCompressor
}

// NewDocument builds an editable document from persisted composite content.
func NewDocument(full string, compressor ImageCompressor) *Document {
	parsed := content.Parse(full)
	return &Document{
		visible:    []rune(parsed.Visible),
		images:     parsed.Images,
		compressor: compressor,
	}
}

// Visible returns the author-visible text.
func (d *Document) Visible() string {
	return string(d.visible)
}

// ImageCount reports the number of side-table entries.
func (d *Document) ImageCount() int {
	return len(d.images)
}

// Selection returns the current selection bounds as rune offsets.
func (d *Document) Selection() (start, end int) {
	return d.selStart, d.selEnd
}

// SetSelection positions the selection, clamping it to the document bounds.
func (d *Document) SetSelection(start, end int) {
	length := len(d.visible)
	start = clamp(start, 0, length)
	end = clamp(end, 0, length)
	if end < start {
		start, end = end, start
	}
	d.selStart = start
	d.selEnd = end
}

// SetCursor collapses the selection to a caret at the given offset.
func (d *Document) SetCursor(pos int) {
	d.SetSelection(pos, pos)
}

// InsertAtCursor wraps the current selection with before and after. When
// nothing is selected the placeholder text is wrapped instead. The caret
// lands immediately after the wrapped text, matching toolbar behaviour.
func (d *Document) InsertAtCursor(before, after, placeholder string) {
	selected := string(d.visible[d.selStart:d.selEnd])
	if selected == "" {
		selected = placeholder
	}

	inserted := []rune(before + selected + after)
	next := make([]rune, 0, len(d.visible)-(d.selEnd-d.selStart)+len(inserted))
	next = append(next, d.visible[:d.selStart]...)
	next = append(next, inserted...)
	next = append(next, d.visible[d.selEnd:]...)
	d.visible = next

	caret := d.selStart + len([]rune(before)) + len([]rune(selected))
	d.selStart = caret
	d.selEnd = caret
}

// InsertImage compresses the upload, registers it in the side table and
// inserts a placeholder at the caret. On compression failure the document is
// left untouched and the error is returned for user-visible handling.
func (d *Document) InsertImage(ctx context.Context, filename string, data []byte) error {
	if d.compressor == nil {
		return eris.New("no image compressor configured")
	}

	payload, err := d.compressor.Compress(ctx, data, imaging.Inline)
	if err != nil {
		return eris.Wrap(err, "compressing image")
	}

	id := content.NewImageID()
	d.images[id] = payload

	alt := strings.TrimSuffix(filename, filepath.Ext(filename))
	d.InsertAtCursor("\n"+content.Placeholder(alt, id)+"\n", "", "")
	return nil
}

// Content serializes the document back into its persisted composite form.
func (d *Document) Content() (string, error) {
	full, err := content.Serialize(content.Document{Visible: string(d.visible), Images: d.images})
	if err != nil {
		return "", eris.Wrap(err, "serializing document")
	}
	return full, nil
}

// Rendered returns the visible text with placeholders rehydrated, as the
// preview pane shows it.
func (d *Document) Rendered() string {
	return content.TransformForRendering(content.Document{Visible: string(d.visible), Images: d.images})
}

// Toolbar actions. Placeholders match the editor's insertion affordances.

func (d *Document) Bold() { d.InsertAtCursor("**", "**", "bold text") }

func (d *Document) Italic() { d.InsertAtCursor("*", "*", "italic text") }

func (d *Document) Heading1() { d.InsertAtCursor("\n# ", "\n", "Main heading") }

func (d *Document) Heading2() { d.InsertAtCursor("\n## ", "\n", "Subheading") }

func (d *Document) BulletList() { d.InsertAtCursor("\n- ", "\n", "list item") }

func (d *Document) NumberedList() { d.InsertAtCursor("\n1. ", "\n", "numbered item") }

func (d *Document) Quote() { d.InsertAtCursor("\n> ", "\n", "quotation") }

func (d *Document) Code() { d.InsertAtCursor("`", "`", "code") }

func (d *Document) Link() { d.InsertAtCursor("[", "](https://)", "link text") }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
