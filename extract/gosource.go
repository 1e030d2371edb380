package extract

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

// GoScanner extracts user-facing string literals from Go source.
type GoScanner struct {
	includeComments bool
}

// GoScannerOption configures the Go scanner.
type GoScannerOption func(*GoScanner)

// WithComments enables extraction of comments as translatable text.
func WithComments(enabled bool) GoScannerOption {
	return func(p *GoScanner) {
		p.includeComments = enabled
	}
}

// NewGoScanner creates a Go source scanner. Comments are skipped by
// default; only string literals that look user-facing are extracted.
func NewGoScanner(opts ...GoScannerOption) *GoScanner {
	p := &GoScanner{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Format returns FormatGo.
func (p *GoScanner) Format() Format {
	return FormatGo
}

// Scan parses the unit as a Go file and returns translatable literals
// with exact line positions.
func (p *GoScanner) Scan(unit SourceUnit) ([]Literal, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, unit.Name, unit.Content, parser.ParseComments)
	if err != nil {
		return nil, &ScanError{Unit: unit.Name, Format: FormatGo, Cause: err}
	}

	var literals []Literal
	seen := make(map[string]bool)
	add := func(text, context string, pos token.Pos) {
		if seen[text] {
			return
		}
		seen[text] = true
		literals = append(literals, Literal{
			Text:    text,
			Context: context,
			Location: catalog.Location{
				File: unit.Name,
				Line: fset.Position(pos).Line,
			},
		})
	}

	if p.includeComments {
		for _, cg := range file.Comments {
			for _, c := range cg.List {
				text := commentText(c.Text)
				if text != "" {
					add(text, "Go source comment", c.Pos())
				}
			}
		}
	}

	importPos := make(map[token.Pos]bool, len(file.Imports))
	for _, imp := range file.Imports {
		importPos[imp.Path.Pos()] = true
	}

	ast.Inspect(file, func(n ast.Node) bool {
		lit, ok := n.(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING || importPos[lit.Pos()] {
			return true
		}
		text := strings.Trim(lit.Value, "`\"")
		if text == "" || !isTranslatable(text) {
			return true
		}
		add(text, "Go string literal", lit.Pos())
		return true
	})

	return literals, nil
}

func commentText(comment string) string {
	if strings.HasPrefix(comment, "//") {
		return strings.TrimSpace(comment[2:])
	}
	if strings.HasPrefix(comment, "/*") && strings.HasSuffix(comment, "*/") {
		return strings.TrimSpace(comment[2 : len(comment)-2])
	}
	return ""
}

// isTranslatable filters out strings that are clearly not user-facing:
// paths, format specifiers, constants, and letterless tokens.
func isTranslatable(s string) bool {
	if len(s) < 2 {
		return false
	}
	if strings.Contains(s, "/") && !strings.Contains(s, " ") {
		return false
	}
	if strings.HasPrefix(s, "%") && len(s) < 5 {
		return false
	}
	if s == strings.ToUpper(s) && !strings.Contains(s, " ") {
		return false
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
