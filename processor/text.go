package processor

import (
	"strings"
)

// TextProcessor handles plain .txt files: every non-blank line is a
// candidate, blank lines pass through unchanged.
type TextProcessor struct{}

// NewTextProcessor creates a new plain text processor.
func NewTextProcessor() *TextProcessor {
	return &TextProcessor{}
}

// Parse implements ContentProcessor.
func (p *TextProcessor) Parse(data []byte) (Document, error) {
	raw, err := splitLines(data)
	if err != nil {
		return nil, parseError("text", err)
	}

	doc := &LineDocument{lines: make([]line, 0, len(raw))}
	for _, r := range raw {
		value := strings.TrimSuffix(r, "\n")
		doc.lines = append(doc.lines, line{
			raw:       r,
			value:     value,
			candidate: strings.TrimSpace(value) != "",
		})
	}
	return doc, nil
}

// Marshal implements ContentProcessor.
func (p *TextProcessor) Marshal(doc Document) ([]byte, error) {
	d, ok := doc.(*LineDocument)
	if !ok {
		return nil, wrongDocument(doc, "text")
	}
	return d.bytes(), nil
}

// ContentType returns "text".
func (p *TextProcessor) ContentType() string {
	return "text"
}

// Extensions returns the file extensions handled.
func (p *TextProcessor) Extensions() []string {
	return []string{".txt"}
}

var _ ContentProcessor = (*TextProcessor)(nil)
