package catalog

import (
	"bytes"
	"strings"
	"testing"
)

const samplePO = `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"
"Language: de\n"

#: app/routes.py:10 templates/base.html:5
msgid "Save"
msgstr "Speichern"

#, fuzzy
msgid "Cancel"
msgstr "Abbrechen"

msgctxt "verb"
msgid "Book"
msgstr "Buchen"

msgid "Delete"
msgstr ""

#~ msgid "Old entry"
#~ msgstr "Alter Eintrag"
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(samplePO), "de")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if c.Header["Language"] != "de" {
		t.Errorf("Language header = %q, want %q", c.Header["Language"], "de")
	}
	if c.Len() != 5 {
		t.Fatalf("Len = %d, want 5", c.Len())
	}

	save := c.Get("Save")
	if save == nil {
		t.Fatal("entry 'Save' missing")
	}
	if save.Translation != "Speichern" {
		t.Errorf("Save translation = %q", save.Translation)
	}
	if len(save.Locations) != 2 {
		t.Fatalf("Save locations = %d, want 2", len(save.Locations))
	}
	if save.Locations[0].File != "app/routes.py" || save.Locations[0].Line != 10 {
		t.Errorf("unexpected first location: %+v", save.Locations[0])
	}

	cancel := c.Get("Cancel")
	if cancel == nil || !cancel.Fuzzy {
		t.Error("entry 'Cancel' should be fuzzy")
	}

	book := c.Get("Book")
	if book == nil || book.Context != "verb" {
		t.Error("entry 'Book' should carry msgctxt 'verb'")
	}

	old := c.Get("Old entry")
	if old == nil || !old.Obsolete {
		t.Error("entry 'Old entry' should be obsolete")
	}
}

func TestParse_InsertionOrderPreserved(t *testing.T) {
	c, err := Parse(strings.NewReader(samplePO), "de")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var ids []string
	for _, e := range c.Entries() {
		ids = append(ids, e.ID)
	}
	want := []string{"Save", "Cancel", "Book", "Delete", "Old entry"}
	if len(ids) != len(want) {
		t.Fatalf("got %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestWritePO_RoundTrip(t *testing.T) {
	c, err := Parse(strings.NewReader(samplePO), "de")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var buf bytes.Buffer
	if err := c.WritePO(&buf); err != nil {
		t.Fatalf("WritePO failed: %v", err)
	}

	again, err := Parse(bytes.NewReader(buf.Bytes()), "de")
	if err != nil {
		t.Fatalf("re-Parse failed: %v", err)
	}

	if again.Len() != c.Len() {
		t.Fatalf("round trip lost entries: %d != %d", again.Len(), c.Len())
	}
	for _, e := range c.Entries() {
		got := again.Get(e.ID)
		if got == nil {
			t.Fatalf("round trip lost %q", e.ID)
		}
		if got.Translation != e.Translation || got.Fuzzy != e.Fuzzy || got.Obsolete != e.Obsolete || got.Context != e.Context {
			t.Errorf("round trip changed %q: %+v != %+v", e.ID, got, e)
		}
	}

	// Serialization must be deterministic.
	var buf2 bytes.Buffer
	if err := again.WritePO(&buf2); err != nil {
		t.Fatalf("second WritePO failed: %v", err)
	}
	if buf.String() != buf2.String() {
		t.Error("serialization is not deterministic")
	}
}

func TestParse_EscapedStrings(t *testing.T) {
	src := `msgid ""
msgstr ""

msgid "Line one\nLine two \"quoted\""
msgstr "Zeile eins\nZeile zwei \"zitiert\""
`
	c, err := Parse(strings.NewReader(src), "de")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	e := c.Get("Line one\nLine two \"quoted\"")
	if e == nil {
		t.Fatal("escaped msgid not found")
	}
	if e.Translation != "Zeile eins\nZeile zwei \"zitiert\"" {
		t.Errorf("unexpected translation %q", e.Translation)
	}
}

func TestParse_Corrupt(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"msgstr without msgid", "msgstr \"orphan\"\n"},
		{"unterminated string", "msgid \"broken\nmsgstr \"x\"\n"},
		{"stray continuation", "\"floating\"\n"},
		{"garbage directive", "msgwat \"x\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.src), "de")
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !IsCorrupt(err) {
				t.Errorf("expected CorruptError, got %T: %v", err, err)
			}
		})
	}
}

func TestSet_FuzzyRequiresTranslation(t *testing.T) {
	c := New("de")
	c.Set(&Entry{ID: "Save", Fuzzy: true})
	if c.Get("Save").Fuzzy {
		t.Error("fuzzy flag should be cleared on untranslated entries")
	}
}
