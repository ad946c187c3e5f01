package processor

import (
	"fmt"
	"iter"
	"regexp"
	"sort"
	"strings"

	"github.com/ZaguanLabs/modtl/textenc"
)

var poCharset = regexp.MustCompile(`(charset=)([A-Za-z0-9_.:-]+)`)

// poEntry is one blank-line separated block of a catalog. Blocks that are
// never replaced are written back from raw.
type poEntry struct {
	raw      []string // Original lines, without newlines
	comments []string // "#" lines, kept verbatim on rewrite
	obsolete bool

	msgctxt     string
	hasCtxt     bool
	msgid       string
	msgidPlural string
	msgstr      string
	plural      map[int]string // msgstr[N]; non-nil only for plural entries

	changed bool
}

func (e *poEntry) isPlural() bool {
	return e.plural != nil
}

// untranslated reports whether every translation form is blank.
func (e *poEntry) untranslated() bool {
	if e.isPlural() {
		for _, v := range e.plural {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(e.msgstr) == ""
}

func (e *poEntry) candidate() bool {
	return !e.obsolete && strings.TrimSpace(e.msgid) != "" && e.untranslated()
}

// poChunk is either a run of separator lines or an entry.
type poChunk struct {
	blank string
	entry *poEntry
}

// PODocument is a parsed gettext catalog.
type PODocument struct {
	chunks []poChunk
	dirty  bool
	slots  slots
}

// POProcessor handles gettext .po and .pot catalogs. Only entries whose
// translation is empty are candidates; existing translations are never
// overwritten.
type POProcessor struct{}

// NewPOProcessor creates a new catalog processor.
func NewPOProcessor() *POProcessor {
	return &POProcessor{}
}

// Parse decodes data using the header charset (or detection) and splits it
// into entries.
func (p *POProcessor) Parse(data []byte) (Document, error) {
	label := textenc.DetectBytes(data)
	if m := poCharset.FindSubmatch(data); m != nil && textenc.Known(string(m[2])) {
		label = string(m[2])
	}
	utf8Data, err := textenc.Decode(data, label)
	if err != nil {
		return nil, parseError("po", err)
	}

	text := strings.ReplaceAll(string(utf8Data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	doc := &PODocument{}
	var block []string
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		e, err := parsePOEntry(block)
		if err != nil {
			return err
		}
		doc.chunks = append(doc.chunks, poChunk{entry: e})
		block = nil
		return nil
	}

	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			if err := flush(); err != nil {
				return nil, parseError("po", fmt.Errorf("entry ending at line %d: %w", i, err))
			}
			doc.chunks = append(doc.chunks, poChunk{blank: l})
			continue
		}
		block = append(block, l)
	}
	if err := flush(); err != nil {
		return nil, parseError("po", fmt.Errorf("entry ending at line %d: %w", len(lines), err))
	}
	return doc, nil
}

func parsePOEntry(block []string) (*poEntry, error) {
	e := &poEntry{raw: block}
	var last *string
	form := -1 // msgstr[N] receiving continuation lines

	for _, l := range block {
		if strings.HasPrefix(l, "#~") {
			e.obsolete = true
			continue
		}
		if strings.HasPrefix(l, "#") {
			e.comments = append(e.comments, l)
			continue
		}

		field := true
		switch {
		case strings.HasPrefix(l, "msgctxt "):
			e.hasCtxt = true
			e.msgctxt = unquotePO(strings.TrimPrefix(l, "msgctxt "))
			last = &e.msgctxt
		case strings.HasPrefix(l, "msgid_plural "):
			e.msgidPlural = unquotePO(strings.TrimPrefix(l, "msgid_plural "))
			last = &e.msgidPlural
			if e.plural == nil {
				e.plural = make(map[int]string)
			}
		case strings.HasPrefix(l, "msgid "):
			e.msgid = unquotePO(strings.TrimPrefix(l, "msgid "))
			last = &e.msgid
		case strings.HasPrefix(l, "msgstr["):
			var idx int
			if n, err := fmt.Sscanf(l, "msgstr[%d]", &idx); err != nil || n != 1 {
				return nil, fmt.Errorf("invalid msgstr index: %s", l)
			}
			if e.plural == nil {
				e.plural = make(map[int]string)
			}
			e.plural[idx] = unquotePO(l[strings.Index(l, "]")+1:])
			last, form = nil, idx
			field = false
		case strings.HasPrefix(l, "msgstr "):
			e.msgstr = unquotePO(strings.TrimPrefix(l, "msgstr "))
			last = &e.msgstr
		case strings.HasPrefix(strings.TrimSpace(l), `"`):
			switch {
			case form >= 0:
				e.plural[form] += unquotePO(l)
			case last != nil:
				*last += unquotePO(l)
			default:
				return nil, fmt.Errorf("continuation without field: %s", l)
			}
			continue
		default:
			return nil, fmt.Errorf("unexpected line: %s", l)
		}
		if field {
			form = -1
		}
	}

	if e.isPlural() && !e.obsolete && len(e.plural) == 0 {
		e.plural[0], e.plural[1] = "", ""
	}
	return e, nil
}

// Leaves yields msgid for untranslated entries. For plural entries msgid
// fills msgstr[0] and msgid_plural fills every other form.
func (d *PODocument) Leaves() iter.Seq2[Position, string] {
	return func(yield func(Position, string) bool) {
		d.slots.reset()
		n := 0
		for _, c := range d.chunks {
			e := c.entry
			if e == nil {
				continue
			}
			n++
			if !e.candidate() {
				continue
			}
			path := fmt.Sprintf("entry %d", n)

			if !e.isPlural() {
				pos := d.slots.add(path+"/msgstr", func(text string) {
					e.msgstr = text
					d.touch(e)
				})
				if !yield(pos, e.msgid) {
					return
				}
				continue
			}

			pos := d.slots.add(path+"/msgstr[0]", func(text string) {
				e.plural[0] = text
				d.touch(e)
			})
			if !yield(pos, e.msgid) {
				return
			}
			if len(e.plural) < 2 || strings.TrimSpace(e.msgidPlural) == "" {
				continue
			}
			pos = d.slots.add(path+"/msgstr[n]", func(text string) {
				for idx := range e.plural {
					if idx > 0 {
						e.plural[idx] = text
					}
				}
				d.touch(e)
			})
			if !yield(pos, e.msgidPlural) {
				return
			}
		}
	}
}

func (d *PODocument) touch(e *poEntry) {
	e.changed = true
	d.dirty = true
}

// Replace implements Document.
func (d *PODocument) Replace(pos Position, text string) error {
	return d.slots.replace(pos, text, "po")
}

// Dirty reports whether any entry was filled in.
func (d *PODocument) Dirty() bool {
	return d.dirty
}

// Marshal writes the catalog as UTF-8. Unchanged entries keep their original
// lines; the header charset is set to UTF-8.
func (p *POProcessor) Marshal(doc Document) ([]byte, error) {
	d, ok := doc.(*PODocument)
	if !ok {
		return nil, wrongDocument(doc, "po")
	}

	var b strings.Builder
	for _, c := range d.chunks {
		e := c.entry
		switch {
		case e == nil:
			b.WriteString(c.blank)
			b.WriteByte('\n')
		case e.changed:
			writePOEntry(&b, e)
		case isPOHeader(e):
			for _, l := range e.raw {
				b.WriteString(poCharset.ReplaceAllString(l, "${1}UTF-8"))
				b.WriteByte('\n')
			}
		default:
			for _, l := range e.raw {
				b.WriteString(l)
				b.WriteByte('\n')
			}
		}
	}
	return []byte(b.String()), nil
}

// ContentType returns "po".
func (p *POProcessor) ContentType() string {
	return "po"
}

// Extensions returns the file extensions handled.
func (p *POProcessor) Extensions() []string {
	return []string{".po", ".pot"}
}

func isPOHeader(e *poEntry) bool {
	return !e.obsolete && !e.hasCtxt && e.msgid == "" && strings.Contains(e.msgstr, "Content-Type:")
}

func writePOEntry(b *strings.Builder, e *poEntry) {
	for _, c := range e.comments {
		b.WriteString(c)
		b.WriteByte('\n')
	}
	if e.hasCtxt {
		writeQuotedField(b, "msgctxt", e.msgctxt)
	}
	writeQuotedField(b, "msgid", e.msgid)
	if !e.isPlural() {
		writeQuotedField(b, "msgstr", e.msgstr)
		return
	}
	writeQuotedField(b, "msgid_plural", e.msgidPlural)
	indices := make([]int, 0, len(e.plural))
	for idx := range e.plural {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		writeQuotedField(b, fmt.Sprintf("msgstr[%d]", idx), e.plural[idx])
	}
}

// writeQuotedField writes a field, splitting multiline values after each \n.
func writeQuotedField(b *strings.Builder, field, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(b, "%s %s\n", field, quotePO(value))
		return
	}

	fmt.Fprintf(b, "%s \"\"\n", field)
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if i < len(parts)-1 {
			b.WriteString(quotePO(part + "\n"))
			b.WriteByte('\n')
		} else if part != "" {
			b.WriteString(quotePO(part))
			b.WriteByte('\n')
		}
	}
}

// poEscapes maps control characters to their C escape letter.
var poEscapes = map[byte]byte{
	'\a': 'a', '\b': 'b', '\t': 't', '\n': 'n', '\v': 'v', '\f': 'f', '\r': 'r',
	'\\': '\\', '"': '"',
}

func quotePO(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 2)
	out.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if esc, ok := poEscapes[c]; ok {
			out.WriteByte('\\')
			out.WriteByte(esc)
			continue
		}
		if c < 0x20 || c == 0x7f {
			fmt.Fprintf(&out, "\\%03o", c)
			continue
		}
		out.WriteByte(c)
	}
	out.WriteByte('"')
	return out.String()
}

// unquotePO strips the quotes of a PO string and decodes C escapes,
// including octal and \x hex forms. Unknown escapes are kept verbatim.
func unquotePO(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			out.WriteByte(s[i])
			continue
		}
		c := s[i+1]
		switch {
		case c == 'a':
			out.WriteByte('\a')
		case c == 'b':
			out.WriteByte('\b')
		case c == 'f':
			out.WriteByte('\f')
		case c == 'n':
			out.WriteByte('\n')
		case c == 'r':
			out.WriteByte('\r')
		case c == 't':
			out.WriteByte('\t')
		case c == 'v':
			out.WriteByte('\v')
		case c == '\\' || c == '"' || c == '\'' || c == '?':
			out.WriteByte(c)
		case c >= '0' && c <= '7':
			n, j := 0, i+1
			for ; j < len(s) && j < i+4 && s[j] >= '0' && s[j] <= '7'; j++ {
				n = n*8 + int(s[j]-'0')
			}
			out.WriteByte(byte(n))
			i = j - 1
			continue
		case c == 'x' && i+2 < len(s) && isHexDigit(s[i+2]):
			n, j := 0, i+2
			for ; j < len(s) && j < i+4 && isHexDigit(s[j]); j++ {
				n = n*16 + hexValue(s[j])
			}
			out.WriteByte(byte(n))
			i = j - 1
			continue
		default:
			out.WriteByte(s[i])
			continue
		}
		i++
	}
	return out.String()
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexValue(c byte) int {
	switch {
	case c >= 'a':
		return int(c-'a') + 10
	case c >= 'A':
		return int(c-'A') + 10
	}
	return int(c - '0')
}
