// Package content implements the composite content codec. A post body is
// stored as a single string: the author-visible markdown, optionally
// followed by a delimited side table mapping short image ids to inline
// payloads. Keeping the payloads out of the visible text keeps the editable
// document human-scale while still persisting everything in one field.
package content

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Delimiter separates visible text from the image side table in persisted
// content. Content without it is treated entirely as visible text.
const Delimiter = "\n\n<!-- IMAGE_DATA -->\n"

const sideTableMarker = "<!-- IMAGE_DATA -->"

// Document is the decoded form of a composite content string.
type Document struct {
	Visible string
	Images  map[string]string
}

var (
	entryPattern       = regexp.MustCompile(`^\[image:([a-z0-9]+)\]: (.+)$`)
	placeholderPattern = regexp.MustCompile(`!\[([^\]]*)\]\(image:([a-z0-9]+)\)`)
)

// Parse splits a composite content string into visible text and its image
// side table. Only the first delimiter occurrence marks the boundary. Lines
// after the delimiter that do not match the entry shape are skipped. Parse
// never fails; legacy content with no delimiter yields an empty map.
func Parse(full string) Document {
	doc := Document{Visible: full, Images: map[string]string{}}

	idx := strings.Index(full, Delimiter)
	if idx < 0 {
		return doc
	}

	doc.Visible = full[:idx]
	for _, line := range strings.Split(full[idx+len(Delimiter):], "\n") {
		match := entryPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		doc.Images[match[1]] = match[2]
	}

	return doc
}

// Serialize produces the composite content string for a document. When the
// image map is empty the visible text is returned verbatim so that plain
// markdown posts keep their legacy on-disk form. Visible text that already
// contains the side-table marker cannot be represented without corrupting
// the format on the next parse, so it is rejected.
func Serialize(doc Document) (string, error) {
	if len(doc.Images) == 0 {
		return doc.Visible, nil
	}

	if strings.Contains(doc.Visible, sideTableMarker) {
		return "", eris.New("visible text contains the image side-table marker")
	}

	ids := make([]string, 0, len(doc.Images))
	for id := range doc.Images {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString(doc.Visible)
	b.WriteString(Delimiter)
	for i, id := range ids {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[image:%s]: %s", id, doc.Images[id])
	}

	return b.String(), nil
}

// TransformForRendering replaces image placeholders in the visible text with
// direct inline references to their payloads. Placeholders whose id has no
// side-table entry are left as literal text rather than treated as errors.
func TransformForRendering(doc Document) string {
	if len(doc.Images) == 0 {
		return doc.Visible
	}

	return placeholderPattern.ReplaceAllStringFunc(doc.Visible, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		payload, ok := doc.Images[parts[2]]
		if !ok {
			return match
		}
		return fmt.Sprintf("![%s](%s)", parts[1], payload)
	})
}

// Placeholder builds the in-text marker for an image id.
func Placeholder(alt, id string) string {
	return fmt.Sprintf("![%s](image:%s)", alt, id)
}

// NewImageID produces a short id for a side-table entry: a base36 millisecond
// timestamp plus a random suffix. Ids only need to be unique within one
// document's side table, so collision probability is treated as negligible.
func NewImageID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + strconv.FormatInt(int64(rand.Intn(36*36*36*36)), 36)
}
