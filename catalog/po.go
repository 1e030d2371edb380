package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads a PO-format catalog. A parse failure returns a CorruptError;
// the caller must treat the locale as degraded rather than crash.
func Parse(r io.Reader, locale string) (*Catalog, error) {
	c := newEmpty(locale)
	p := &poParser{catalog: c, locale: locale}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		p.lineNo++
		if err := p.feed(strings.TrimRight(sc.Text(), "\r")); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &CorruptError{Locale: locale, Line: p.lineNo, Reason: "read failed", Cause: err}
	}
	if err := p.flush(); err != nil {
		return nil, err
	}
	return c, nil
}

// poParser is a line-oriented state machine over PO directives.
type poParser struct {
	catalog *Catalog
	locale  string
	lineNo  int

	section  string // "", "msgctxt", "msgid", "msgstr"
	msgctxt  strings.Builder
	msgid    strings.Builder
	msgstr   strings.Builder
	fuzzy    bool
	obsolete bool
	locs     []Location
	open     bool // an entry is being accumulated
}

func (p *poParser) corrupt(reason string) error {
	return &CorruptError{Locale: p.locale, Line: p.lineNo, Reason: reason}
}

func (p *poParser) feed(line string) error {
	obsolete := false
	if strings.HasPrefix(line, "#~") {
		obsolete = true
		line = strings.TrimPrefix(strings.TrimPrefix(line, "#~"), " ")
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return p.flush()
	}

	switch {
	case strings.HasPrefix(trimmed, "#,"):
		if strings.Contains(trimmed, "fuzzy") {
			p.fuzzy = true
			p.open = true
		}
		return nil
	case strings.HasPrefix(trimmed, "#:"):
		p.locs = append(p.locs, parseLocations(strings.TrimPrefix(trimmed, "#:"))...)
		p.open = true
		return nil
	case strings.HasPrefix(trimmed, "#"):
		// Translator and extracted comments are not modeled.
		return nil
	}

	if obsolete {
		p.obsolete = true
	}

	switch {
	case strings.HasPrefix(trimmed, "msgctxt "):
		if p.section == "msgstr" || p.section == "msgctxt" {
			if err := p.flush(); err != nil {
				return err
			}
		}
		return p.begin("msgctxt", strings.TrimPrefix(trimmed, "msgctxt "))
	case strings.HasPrefix(trimmed, "msgid "):
		if p.section == "msgstr" {
			if err := p.flush(); err != nil {
				return err
			}
		}
		return p.begin("msgid", strings.TrimPrefix(trimmed, "msgid "))
	case strings.HasPrefix(trimmed, "msgstr "):
		if p.section != "msgid" {
			return p.corrupt("msgstr without msgid")
		}
		return p.begin("msgstr", strings.TrimPrefix(trimmed, "msgstr "))
	case strings.HasPrefix(trimmed, `"`):
		if p.section == "" {
			return p.corrupt("string continuation outside an entry")
		}
		return p.append(trimmed)
	}

	return p.corrupt(fmt.Sprintf("unrecognized directive %q", firstWord(trimmed)))
}

func (p *poParser) begin(section, quoted string) error {
	p.section = section
	p.open = true
	return p.append(quoted)
}

func (p *poParser) append(quoted string) error {
	text, err := poUnquote(quoted)
	if err != nil {
		return p.corrupt(err.Error())
	}
	switch p.section {
	case "msgctxt":
		p.msgctxt.WriteString(text)
	case "msgid":
		p.msgid.WriteString(text)
	case "msgstr":
		p.msgstr.WriteString(text)
	}
	return nil
}

// flush finalizes the accumulated entry, routing the empty-msgid entry
// into the header map.
func (p *poParser) flush() error {
	if !p.open {
		return nil
	}
	if p.section != "msgstr" {
		return p.corrupt("entry without msgstr")
	}

	id := p.msgid.String()
	if id == "" {
		p.parseHeader(p.msgstr.String())
	} else {
		p.catalog.Set(&Entry{
			ID:          id,
			Translation: p.msgstr.String(),
			Fuzzy:       p.fuzzy,
			Obsolete:    p.obsolete,
			Context:     p.msgctxt.String(),
			Locations:   p.locs,
		})
	}

	p.section = ""
	p.msgctxt.Reset()
	p.msgid.Reset()
	p.msgstr.Reset()
	p.fuzzy = false
	p.obsolete = false
	p.locs = nil
	p.open = false
	return nil
}

func (p *poParser) parseHeader(block string) {
	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		p.catalog.SetHeader(strings.TrimSpace(key), strings.TrimSpace(value))
	}
}

// WritePO serializes the catalog in PO format: header block first, then
// entries in insertion order, obsolete entries prefixed with "#~".
func (c *Catalog) WritePO(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "msgid \"\"\nmsgstr \"\"\n")
	for _, key := range c.headerOrder {
		fmt.Fprintf(bw, "\"%s\"\n", poEscape(key+": "+c.Header[key]+"\n"))
	}

	for _, e := range c.Entries() {
		bw.WriteByte('\n')
		prefix := ""
		if e.Obsolete {
			prefix = "#~ "
		}
		if len(e.Locations) > 0 && !e.Obsolete {
			bw.WriteString("#:")
			for _, loc := range e.Locations {
				fmt.Fprintf(bw, " %s:%d", loc.File, loc.Line)
			}
			bw.WriteByte('\n')
		}
		if e.Fuzzy {
			fmt.Fprintf(bw, "%s#, fuzzy\n", prefix)
		}
		if e.Context != "" {
			fmt.Fprintf(bw, "%smsgctxt \"%s\"\n", prefix, poEscape(e.Context))
		}
		fmt.Fprintf(bw, "%smsgid \"%s\"\n", prefix, poEscape(e.ID))
		fmt.Fprintf(bw, "%smsgstr \"%s\"\n", prefix, poEscape(e.Translation))
	}

	return bw.Flush()
}

// newEmpty creates a catalog without the default header fields; used by
// the parser so file headers keep their own order.
func newEmpty(locale string) *Catalog {
	return &Catalog{
		Locale:  locale,
		Header:  make(map[string]string),
		entries: make(map[string]*Entry),
	}
}

func parseLocations(s string) []Location {
	var locs []Location
	for _, field := range strings.Fields(s) {
		idx := strings.LastIndex(field, ":")
		if idx <= 0 {
			continue
		}
		line, err := strconv.Atoi(field[idx+1:])
		if err != nil {
			continue
		}
		locs = append(locs, Location{File: field[:idx], Line: line})
	}
	return locs
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	return s
}

func poUnquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("malformed string %q", s)
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			if ch == '"' {
				return "", fmt.Errorf("unescaped quote in %q", s)
			}
			b.WriteByte(ch)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape in %q", s)
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}

func poEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
