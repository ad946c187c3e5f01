package processor

import (
	"bytes"
	"iter"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/modtl"
	"github.com/ZaguanLabs/modtl/textenc"
	"golang.org/x/net/html"
)

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// TranslatableAttrs contains attributes whose values are user-visible text.
var TranslatableAttrs = map[string]bool{
	"title":       true,
	"alt":         true,
	"placeholder": true,
	"aria-label":  true,
}

// HTMLProcessor handles .html and .htm files.
type HTMLProcessor struct {
	ignoredTags map[string]bool
	targetLang  string
}

// HTMLOption is a functional option for configuring the HTMLProcessor.
type HTMLOption func(*HTMLProcessor)

// WithTargetLang sets the lang and dir attributes written on <html>.
func WithTargetLang(lang string) HTMLOption {
	return func(p *HTMLProcessor) {
		p.targetLang = lang
	}
}

// WithIgnoredTags replaces the default ignored tags.
func WithIgnoredTags(tags []string) HTMLOption {
	return func(p *HTMLProcessor) {
		ignored := make(map[string]bool)
		for _, tag := range tags {
			ignored[strings.ToLower(tag)] = true
		}
		p.ignoredTags = ignored
	}
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor(opts ...HTMLOption) *HTMLProcessor {
	p := &HTMLProcessor{
		ignoredTags: IgnoredTags,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HTMLDocument is a parsed HTML file.
type HTMLDocument struct {
	doc       *goquery.Document
	ignored   map[string]bool
	transcode bool // Source was not UTF-8
	slots     slots
}

// Parse decodes data (honouring <meta charset>) and builds the DOM.
func (p *HTMLProcessor) Parse(data []byte) (Document, error) {
	label := textenc.DetectHTML(data)
	utf8Data, err := textenc.Decode(data, label)
	if err != nil {
		return nil, parseError("html", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8Data))
	if err != nil {
		return nil, &modtl.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	return &HTMLDocument{
		doc:       doc,
		ignored:   p.ignoredTags,
		transcode: label != textenc.UTF8,
	}, nil
}

// Leaves yields text nodes and translatable attributes outside ignored tags
// and data-no-translate subtrees.
func (d *HTMLDocument) Leaves() iter.Seq2[Position, string] {
	return func(yield func(Position, string) bool) {
		d.slots.reset()
		for _, n := range d.doc.Nodes {
			if !d.walk(n, "", yield) {
				return
			}
		}
	}
}

func (d *HTMLDocument) walk(n *html.Node, path string, yield func(Position, string) bool) bool {
	switch n.Type {
	case html.ElementNode:
		// Skip ignored tags
		if d.ignored[strings.ToLower(n.Data)] {
			return true
		}

		// Skip elements with data-no-translate attribute
		for _, attr := range n.Attr {
			if attr.Key == "data-no-translate" {
				return true
			}
		}

		path += "/" + n.Data
		for i := range n.Attr {
			attr := &n.Attr[i]
			if !TranslatableAttrs[strings.ToLower(attr.Key)] || strings.TrimSpace(attr.Val) == "" {
				continue
			}
			pos := d.slots.add(path+"/@"+attr.Key, func(text string) { attr.Val = text })
			if !yield(pos, attr.Val) {
				return false
			}
		}
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return true
		}
		node := n
		pos := d.slots.add(path, func(text string) { node.Data = text })
		return yield(pos, n.Data)
	}

	// Recurse into children
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		i++
		childPath := path
		if c.Type == html.TextNode {
			childPath = path + "/text()[" + strconv.Itoa(i) + "]"
		}
		if !d.walk(c, childPath, yield) {
			return false
		}
	}
	return true
}

// Replace implements Document.
func (d *HTMLDocument) Replace(pos Position, text string) error {
	return d.slots.replace(pos, text, "html")
}

// Marshal renders the DOM as UTF-8, setting lang and dir on <html> when a
// target language is configured.
func (p *HTMLProcessor) Marshal(doc Document) ([]byte, error) {
	d, ok := doc.(*HTMLDocument)
	if !ok {
		return nil, wrongDocument(doc, "html")
	}

	if p.targetLang != "" {
		htmlTag := d.doc.Find("html")
		if htmlTag.Length() > 0 {
			htmlTag.SetAttr("lang", modtl.ToHTMLLang(p.targetLang))
			htmlTag.SetAttr("dir", modtl.GetDirection(p.targetLang))
		}
	}
	if d.transcode {
		d.doc.Find("meta[charset]").SetAttr("charset", "utf-8")
		d.doc.Find("meta[http-equiv]").Each(func(_ int, s *goquery.Selection) {
			if equiv, _ := s.Attr("http-equiv"); strings.EqualFold(strings.TrimSpace(equiv), "content-type") {
				s.SetAttr("content", "text/html; charset=utf-8")
			}
		})
	}

	out, err := d.doc.Html()
	if err != nil {
		return nil, &modtl.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	return []byte(out), nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// Extensions returns the file extensions handled.
func (p *HTMLProcessor) Extensions() []string {
	return []string{".html", ".htm"}
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
