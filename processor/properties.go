package processor

import (
	"iter"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/modtl/textenc"
)

// line is one physical line of a line-oriented file. Lines that carry no
// candidate are written back from raw.
type line struct {
	raw       string // Original text including its newline, if any
	prefix    string // Written before value (e.g. "key=")
	value     string
	candidate bool
}

// LineDocument is a parsed line-oriented file (.properties, .txt).
type LineDocument struct {
	lines []line
	slots slots
}

// splitLines decodes data and splits it into lines, reading CRLF as LF.
func splitLines(data []byte) ([]string, error) {
	utf8Data, _, err := textenc.DecodeAuto(data)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(utf8Data), "\r\n", "\n")
	if text == "" {
		return nil, nil
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts, nil
}

// Leaves yields the candidate value of each line, keyed by 1-based line number.
func (d *LineDocument) Leaves() iter.Seq2[Position, string] {
	return func(yield func(Position, string) bool) {
		d.slots.reset()
		for i := range d.lines {
			l := &d.lines[i]
			if !l.candidate {
				continue
			}
			pos := d.slots.add("line "+strconv.Itoa(i+1), func(text string) { l.value = text })
			if !yield(pos, l.value) {
				return
			}
		}
	}
}

func (d *LineDocument) bytes() []byte {
	var b strings.Builder
	for _, l := range d.lines {
		if !l.candidate {
			b.WriteString(l.raw)
			continue
		}
		b.WriteString(l.prefix)
		b.WriteString(l.value)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// PropertiesProcessor handles key=value .properties files. Comment lines
// (first non-blank character '#') and lines without '=' are kept verbatim;
// otherwise everything after the first '=' is the candidate and the line is
// rewritten as key + "=" + value + "\n".
type PropertiesProcessor struct{}

// NewPropertiesProcessor creates a new .properties processor.
func NewPropertiesProcessor() *PropertiesProcessor {
	return &PropertiesProcessor{}
}

// Parse implements ContentProcessor.
func (p *PropertiesProcessor) Parse(data []byte) (Document, error) {
	raw, err := splitLines(data)
	if err != nil {
		return nil, parseError("properties", err)
	}

	doc := &LineDocument{lines: make([]line, 0, len(raw))}
	for _, r := range raw {
		key, val, ok := strings.Cut(r, "=")
		if strings.HasPrefix(strings.TrimSpace(r), "#") || !ok {
			doc.lines = append(doc.lines, line{raw: r})
			continue
		}
		doc.lines = append(doc.lines, line{
			raw:       r,
			prefix:    key + "=",
			value:     strings.TrimSuffix(val, "\n"),
			candidate: true,
		})
	}
	return doc, nil
}

// Replace implements Document.
func (d *LineDocument) Replace(pos Position, text string) error {
	return d.slots.replace(pos, text, "lines")
}

// Marshal implements ContentProcessor.
func (p *PropertiesProcessor) Marshal(doc Document) ([]byte, error) {
	d, ok := doc.(*LineDocument)
	if !ok {
		return nil, wrongDocument(doc, "properties")
	}
	return d.bytes(), nil
}

// ContentType returns "properties".
func (p *PropertiesProcessor) ContentType() string {
	return "properties"
}

// Extensions returns the file extensions handled.
func (p *PropertiesProcessor) Extensions() []string {
	return []string{".properties"}
}

var _ ContentProcessor = (*PropertiesProcessor)(nil)
