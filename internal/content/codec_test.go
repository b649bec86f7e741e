package content

import (
	"strings"
	"testing"
)

func TestParseLegacyContentIsAllVisible(t *testing.T) {
	t.Parallel()

	legacy := "# Introduction\n\nPlain markdown with an old direct image ![x](data:image/jpeg;base64,abc)."
	doc := Parse(legacy)

	if doc.Visible != legacy {
		t.Fatalf("expected visible text to equal input, got %q", doc.Visible)
	}
	if len(doc.Images) != 0 {
		t.Fatalf("expected empty image map, got %v", doc.Images)
	}
}

func TestSerializeWithoutImagesRoundTripsByteForByte(t *testing.T) {
	t.Parallel()

	visible := "# Title\n\nSome text with *emphasis*.\n"
	out, err := Serialize(Document{Visible: visible, Images: map[string]string{}})
	if err != nil {
		t.Fatalf("Serialize returned error: %v", err)
	}
	if out != visible {
		t.Fatalf("expected verbatim visible text, got %q", out)
	}

	doc := Parse(out)
	if doc.Visible != visible || len(doc.Images) != 0 {
		t.Fatalf("round trip altered document: %#v", doc)
	}
}

func TestSerializeParseRoundTripPreservesMap(t *testing.T) {
	t.Parallel()

	original := Document{
		Visible: "Before\n\n![chart](image:abc123)\n\nAfter",
		Images: map[string]string{
			"abc123": "data:image/jpeg;base64,AAAA",
			"zzz999": "data:image/jpeg;base64,BBBB",
		},
	}

	full, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize returned error: %v", err)
	}

	doc := Parse(full)
	if doc.Visible != original.Visible {
		t.Fatalf("visible text changed: %q", doc.Visible)
	}
	if len(doc.Images) != len(original.Images) {
		t.Fatalf("expected %d entries, got %d", len(original.Images), len(doc.Images))
	}
	for id, payload := range original.Images {
		if doc.Images[id] != payload {
			t.Errorf("entry %q: got %q, want %q", id, doc.Images[id], payload)
		}
	}
}

func TestSerializeRejectsMarkerInVisibleText(t *testing.T) {
	t.Parallel()

	doc := Document{
		Visible: "text that mentions <!-- IMAGE_DATA --> literally",
		Images:  map[string]string{"abc": "data:image/jpeg;base64,AA"},
	}

	if _, err := Serialize(doc); err == nil {
		t.Fatal("expected error when visible text contains the side-table marker")
	}
}

func TestParseSkipsMalformedSideTableLines(t *testing.T) {
	t.Parallel()

	full := "Visible" + Delimiter + "[image:good1]: data:image/jpeg;base64,AA\nnot an entry\n[image:]: missing id\n[image:good2]: data:image/png;base64,BB"
	doc := Parse(full)

	if doc.Visible != "Visible" {
		t.Fatalf("unexpected visible text %q", doc.Visible)
	}
	if len(doc.Images) != 2 {
		t.Fatalf("expected 2 parsed entries, got %d: %v", len(doc.Images), doc.Images)
	}
	if doc.Images["good1"] != "data:image/jpeg;base64,AA" || doc.Images["good2"] != "data:image/png;base64,BB" {
		t.Fatalf("unexpected entries: %v", doc.Images)
	}
}

func TestTransformForRenderingSubstitutesKnownIDs(t *testing.T) {
	t.Parallel()

	doc := Document{
		Visible: "Intro\n![figure one](image:abc123)\nOutro",
		Images:  map[string]string{"abc123": "data:image/jpeg;base64,AAAA"},
	}

	out := TransformForRendering(doc)
	want := "Intro\n![figure one](data:image/jpeg;base64,AAAA)\nOutro"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestTransformForRenderingLeavesMissingIDsLiteral(t *testing.T) {
	t.Parallel()

	doc := Document{
		Visible: "![gone](image:missing1) and ![here](image:abc123)",
		Images:  map[string]string{"abc123": "PAYLOAD"},
	}

	out := TransformForRendering(doc)
	want := "![gone](image:missing1) and ![here](PAYLOAD)"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestOrphanedSideTableEntriesSurviveReserialization(t *testing.T) {
	t.Parallel()

	// The author deleted the only placeholder; the entry stays behind.
	doc := Document{
		Visible: "No placeholders remain.",
		Images:  map[string]string{"orphan1": "data:image/jpeg;base64,AA"},
	}

	full, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize returned error: %v", err)
	}

	reparsed := Parse(full)
	if reparsed.Visible != doc.Visible {
		t.Fatalf("visible text changed: %q", reparsed.Visible)
	}
	if reparsed.Images["orphan1"] != "data:image/jpeg;base64,AA" {
		t.Fatalf("orphan entry lost: %v", reparsed.Images)
	}
}

func TestNewImageIDShapeAndUniqueness(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for range 64 {
		id := NewImageID()
		if id == "" {
			t.Fatal("empty image id")
		}
		if !entryPattern.MatchString("[image:" + id + "]: x") {
			t.Fatalf("id %q does not fit the side-table entry shape", id)
		}
		if strings.Contains(id, " ") {
			t.Fatalf("id %q contains whitespace", id)
		}
		seen[id] = true
	}

	if len(seen) < 2 {
		t.Fatalf("expected random suffixes to vary, got %d distinct ids", len(seen))
	}
}
