package extract

import (
	"errors"
	"testing"
)

const sampleHTML = `<html>
<body>
  <h1>Welcome</h1>
  <p>Save</p>
  <p data-no-translate>INTERNAL</p>
  <script>var x = "not text";</script>
  <div><span>Save</span></div>
</body>
</html>`

const sampleGo = `package main

import "fmt"

func main() {
	fmt.Println("Welcome back, %(name)s!")
	path := "/etc/passwd"
	_ = path
	const mode = "READONLY"
}
`

func TestHTMLScanner(t *testing.T) {
	s := NewHTMLScanner()
	literals, err := s.Scan(SourceUnit{Name: "base.html", Format: FormatHTML, Content: []byte(sampleHTML)})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	byText := make(map[string]Literal)
	for _, l := range literals {
		byText[l.Text] = l
	}

	if _, ok := byText["Welcome"]; !ok {
		t.Error("expected 'Welcome' to be extracted")
	}
	if _, ok := byText["Save"]; !ok {
		t.Error("expected 'Save' to be extracted")
	}
	if _, ok := byText["INTERNAL"]; ok {
		t.Error("data-no-translate content must be skipped")
	}
	if _, ok := byText[`var x = "not text";`]; ok {
		t.Error("script content must be skipped")
	}
	// Duplicate text nodes are extracted once per unit.
	if len(literals) != 2 {
		t.Errorf("got %d literals, want 2: %+v", len(literals), literals)
	}
	if byText["Welcome"].Location.File != "base.html" {
		t.Errorf("location file = %q", byText["Welcome"].Location.File)
	}
	if byText["Welcome"].Location.Line != 3 {
		t.Errorf("'Welcome' line = %d, want 3", byText["Welcome"].Location.Line)
	}
}

func TestGoScanner(t *testing.T) {
	s := NewGoScanner()
	literals, err := s.Scan(SourceUnit{Name: "main.go", Format: FormatGo, Content: []byte(sampleGo)})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	byText := make(map[string]Literal)
	for _, l := range literals {
		byText[l.Text] = l
	}

	lit, ok := byText["Welcome back, %(name)s!"]
	if !ok {
		t.Fatalf("expected user-facing literal, got %+v", literals)
	}
	if lit.Location.Line != 6 {
		t.Errorf("line = %d, want 6", lit.Location.Line)
	}
	if _, ok := byText["/etc/passwd"]; ok {
		t.Error("paths must be filtered out")
	}
	if _, ok := byText["READONLY"]; ok {
		t.Error("uppercase constants must be filtered out")
	}
	if _, ok := byText["fmt"]; ok {
		t.Error("import paths must be filtered out")
	}
}

func TestGoScanner_ParseError(t *testing.T) {
	s := NewGoScanner()
	_, err := s.Scan(SourceUnit{Name: "broken.go", Format: FormatGo, Content: []byte("func {")})
	if err == nil {
		t.Fatal("expected parse error")
	}
	var se *ScanError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScanError, got %T", err)
	}
	if se.Unit != "broken.go" {
		t.Errorf("Unit = %q, want broken.go", se.Unit)
	}
}

func TestExtract_MergesLocationsAcrossUnits(t *testing.T) {
	x := NewExtractor(nil, nil)

	units := []SourceUnit{
		{Name: "a.html", Format: FormatHTML, Content: []byte("<p>Save</p>")},
		{Name: "b.html", Format: FormatHTML, Content: []byte("<p>Save</p><p>Cancel</p>")},
	}
	tmpl, err := x.Extract(units)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if tmpl.Len() != 2 {
		t.Fatalf("template entries = %d, want 2", tmpl.Len())
	}
	save := tmpl.Get("Save")
	if save == nil {
		t.Fatal("template lost 'Save'")
	}
	if len(save.Locations) != 2 {
		t.Errorf("'Save' locations = %d, want 2 (one per unit)", len(save.Locations))
	}
	if save.Locations[0].File != "a.html" || save.Locations[1].File != "b.html" {
		t.Errorf("unexpected location order: %+v", save.Locations)
	}
}

func TestExtract_UnknownFormat(t *testing.T) {
	x := NewExtractor(nil, nil)
	_, err := x.Extract([]SourceUnit{{Name: "x.bin", Format: "binary"}})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}
