package slug

import "testing"

func TestSlugifyLowercasesAndHyphenates(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Hello":           "hello",
		"Hello World":     "hello-world",
		"Hello! @World#":  "hello-world",
		" - Hello - ":     "hello",
		"":                "",
		"already-a-slug":  "already-a-slug",
		"Multiple   Gaps": "multiple-gaps",
		"Tome 2, Vol. 3":  "tome-2-vol-3",
	}

	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSlugifyFoldsDiacritics(t *testing.T) {
	t.Parallel()

	if got := Slugify("Économie & Société"); got != "economie-societe" {
		t.Errorf("Slugify folded to %q, want %q", got, "economie-societe")
	}

	if got := Slugify("À la carte"); got != "a-la-carte" {
		t.Errorf("Slugify folded to %q, want %q", got, "a-la-carte")
	}
}

func TestSlugifyIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Économie & Société", "Hello World", "", " - Hello - ", "déjà vu"}
	for _, input := range inputs {
		once := Slugify(input)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}
