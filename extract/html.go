package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pilipandr770/sekretar-sub006/catalog"
)

// ignoredTags contains HTML tags whose content is never translatable.
var ignoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// HTMLScanner extracts text nodes from HTML templates.
type HTMLScanner struct {
	ignoredTags map[string]bool
}

// NewHTMLScanner creates an HTML scanner with the default ignored tags.
func NewHTMLScanner() *HTMLScanner {
	return &HTMLScanner{ignoredTags: ignoredTags}
}

// NewHTMLScannerWithIgnoredTags creates an HTML scanner with custom
// ignored tags.
func NewHTMLScannerWithIgnoredTags(tags []string) *HTMLScanner {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLScanner{ignoredTags: ignored}
}

// Format returns FormatHTML.
func (p *HTMLScanner) Format() Format {
	return FormatHTML
}

// Scan parses the unit as HTML and returns each distinct text node.
// Elements under ignored tags or carrying data-no-translate are skipped.
func (p *HTMLScanner) Scan(unit SourceUnit) ([]Literal, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(unit.Content))
	if err != nil {
		return nil, &ScanError{Unit: unit.Name, Format: FormatHTML, Cause: err}
	}

	var literals []Literal
	seen := make(map[string]bool)

	var walk func(*html.Node, string)
	walk = func(n *html.Node, parentTag string) {
		if n.Type == html.ElementNode {
			if p.ignoredTags[strings.ToLower(n.Data)] {
				return
			}
			for _, attr := range n.Attr {
				if attr.Key == "data-no-translate" {
					return
				}
			}
			parentTag = n.Data
		}

		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" && !seen[trimmed] {
				seen[trimmed] = true
				literals = append(literals, Literal{
					Text:    trimmed,
					Context: htmlContext(parentTag),
					Location: catalog.Location{
						File: unit.Name,
						Line: lineOf(unit.Content, trimmed),
					},
				})
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, parentTag)
		}
	}

	doc.Each(func(i int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			walk(n, "")
		}
	})

	return literals, nil
}

func htmlContext(parentTag string) string {
	if parentTag == "" {
		return ""
	}
	return "inside <" + parentTag + ">"
}

// lineOf locates the first occurrence of text in the raw content and
// returns its 1-based line. The parser does not expose positions, so this
// is a best-effort mapping; unknown positions report line 1.
func lineOf(content []byte, text string) int {
	idx := bytes.Index(content, []byte(text))
	if idx < 0 {
		return 1
	}
	return bytes.Count(content[:idx], []byte("\n")) + 1
}
