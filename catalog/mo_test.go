package catalog

import (
	"bytes"
	"testing"
)

func TestWriteMO(t *testing.T) {
	c := New("de")
	c.Set(&Entry{ID: "Save", Translation: "Speichern"})
	c.Set(&Entry{ID: "Cancel", Translation: "Abbrechen"})
	c.Set(&Entry{ID: "Fuzzy", Translation: "Unsicher", Fuzzy: true})
	c.Set(&Entry{ID: "Empty"})
	c.Set(&Entry{ID: "Dead", Translation: "Tot", Obsolete: true})

	var buf bytes.Buffer
	if err := c.WriteMO(&buf); err != nil {
		t.Fatalf("WriteMO failed: %v", err)
	}

	n, err := ReadMOCount(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadMOCount failed: %v", err)
	}
	// Header plus the two reviewed translations; fuzzy, empty, and
	// obsolete entries are not compiled.
	if n != 3 {
		t.Errorf("string count = %d, want 3", n)
	}
}

func TestReadMOCount_Invalid(t *testing.T) {
	if _, err := ReadMOCount([]byte("short")); err == nil {
		t.Error("expected error for truncated artifact")
	}
	bad := make([]byte, 28)
	if _, err := ReadMOCount(bad); err == nil {
		t.Error("expected error for bad magic")
	}
}
