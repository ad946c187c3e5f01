package processor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/modtl/textenc"
)

// XMLProcessor handles .xml files. Element text and attribute values are
// translatable; names, comments, processing instructions and directives are
// written back unchanged.
type XMLProcessor struct{}

// NewXMLProcessor creates a new XML processor.
func NewXMLProcessor() *XMLProcessor {
	return &XMLProcessor{}
}

type xmlKind int

const (
	xmlElement xmlKind = iota
	xmlText
	xmlComment
	xmlProcInst
	xmlDirective
)

// xmlNode is one node of the parsed markup tree. Names keep their raw
// prefix in Space.
type xmlNode struct {
	kind     xmlKind
	name     xml.Name
	attrs    []xml.Attr
	children []*xmlNode
	data     string // text, comment, directive or instruction body
}

// XMLDocument is a parsed XML file.
type XMLDocument struct {
	nodes []*xmlNode // Top-level nodes, including the root element
	slots slots
}

var xmlDeclEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// Parse decodes data using the declared encoding, or the detected one when
// the declaration is missing or unknown.
func (p *XMLProcessor) Parse(data []byte) (Document, error) {
	label := ""
	// Declarations are ASCII; skip a UTF-8 BOM before matching.
	head := bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if m := xmlDeclEncoding.FindSubmatch(head); m != nil && textenc.Known(string(m[1])) {
		label = string(m[1])
	}
	if label == "" || bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		label = textenc.DetectBytes(data)
	}

	utf8Data, err := textenc.Decode(data, label)
	if err != nil {
		return nil, parseError("xml", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(utf8Data))
	// Input is already UTF-8 whatever the declaration says.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	doc := &XMLDocument{}
	var stack []*xmlNode
	roots := 0

	appendNode := func(n *xmlNode) {
		if len(stack) == 0 {
			doc.nodes = append(doc.nodes, n)
			return
		}
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, n)
	}

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError("xml", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				roots++
				if roots > 1 {
					return nil, parseError("xml", errors.New("multiple root elements"))
				}
			}
			n := &xmlNode{kind: xmlElement, name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			appendNode(n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].name != t.Name {
				return nil, parseError("xml", fmt.Errorf("unexpected end element </%s>", rawName(t.Name)))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 && strings.TrimSpace(string(t)) != "" {
				return nil, parseError("xml", errors.New("text outside the root element"))
			}
			appendNode(&xmlNode{kind: xmlText, data: string(t)})
		case xml.Comment:
			appendNode(&xmlNode{kind: xmlComment, data: string(t)})
		case xml.ProcInst:
			// The declaration is rewritten on output.
			if t.Target == "xml" {
				continue
			}
			appendNode(&xmlNode{kind: xmlProcInst, name: xml.Name{Local: t.Target}, data: string(t.Inst)})
		case xml.Directive:
			appendNode(&xmlNode{kind: xmlDirective, data: string(t)})
		}
	}

	if len(stack) > 0 {
		return nil, parseError("xml", fmt.Errorf("unclosed element <%s>", rawName(stack[len(stack)-1].name)))
	}
	if roots == 0 {
		return nil, parseError("xml", errors.New("no root element"))
	}

	return doc, nil
}

func rawName(n xml.Name) string {
	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

func isNamespaceDecl(a xml.Attr) bool {
	return (a.Name.Space == "" && a.Name.Local == "xmlns") || a.Name.Space == "xmlns"
}

// Leaves yields, for each element in document order, its attribute values
// (namespace declarations excluded) and then its non-blank text.
func (d *XMLDocument) Leaves() iter.Seq2[Position, string] {
	return func(yield func(Position, string) bool) {
		d.slots.reset()
		for _, n := range d.nodes {
			if n.kind == xmlElement {
				if !d.walk(n, "/"+rawName(n.name), yield) {
					return
				}
			}
		}
	}
}

func (d *XMLDocument) walk(el *xmlNode, path string, yield func(Position, string) bool) bool {
	for i := range el.attrs {
		if isNamespaceDecl(el.attrs[i]) {
			continue
		}
		attr := &el.attrs[i]
		pos := d.slots.add(path+"/@"+rawName(attr.Name), func(text string) { attr.Value = text })
		if !yield(pos, attr.Value) {
			return false
		}
	}

	seen := make(map[string]int)
	texts := 0
	for _, c := range el.children {
		switch c.kind {
		case xmlText:
			texts++
			if strings.TrimSpace(c.data) == "" {
				continue
			}
			node := c
			pos := d.slots.add(path+"/text()["+strconv.Itoa(texts)+"]", func(text string) { node.data = text })
			if !yield(pos, c.data) {
				return false
			}
		case xmlElement:
			name := rawName(c.name)
			seen[name]++
			childPath := path + "/" + name
			if seen[name] > 1 {
				childPath += "[" + strconv.Itoa(seen[name]) + "]"
			}
			if !d.walk(c, childPath, yield) {
				return false
			}
		}
	}
	return true
}

// Replace implements Document.
func (d *XMLDocument) Replace(pos Position, text string) error {
	return d.slots.replace(pos, text, "xml")
}

var (
	xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#13;")
	xmlAttrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
)

// Marshal writes the document as UTF-8 with a fresh declaration.
func (p *XMLProcessor) Marshal(doc Document) ([]byte, error) {
	d, ok := doc.(*XMLDocument)
	if !ok {
		return nil, wrongDocument(doc, "xml")
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	for i, n := range d.nodes {
		// Whitespace between the old declaration and the first node is dropped.
		if i == 0 && n.kind == xmlText {
			continue
		}
		writeXMLNode(&buf, n)
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func writeXMLNode(buf *bytes.Buffer, n *xmlNode) {
	switch n.kind {
	case xmlElement:
		name := rawName(n.name)
		buf.WriteByte('<')
		buf.WriteString(name)
		for _, a := range n.attrs {
			buf.WriteByte(' ')
			buf.WriteString(rawName(a.Name))
			buf.WriteString(`="`)
			xmlAttrEscaper.WriteString(buf, a.Value)
			buf.WriteByte('"')
		}
		if len(n.children) == 0 {
			buf.WriteString(" />")
			return
		}
		buf.WriteByte('>')
		for _, c := range n.children {
			writeXMLNode(buf, c)
		}
		buf.WriteString("</")
		buf.WriteString(name)
		buf.WriteByte('>')
	case xmlText:
		xmlTextEscaper.WriteString(buf, n.data)
	case xmlComment:
		buf.WriteString("<!--")
		buf.WriteString(n.data)
		buf.WriteString("-->")
	case xmlProcInst:
		buf.WriteString("<?")
		buf.WriteString(n.name.Local)
		if n.data != "" {
			buf.WriteByte(' ')
			buf.WriteString(n.data)
		}
		buf.WriteString("?>")
	case xmlDirective:
		buf.WriteString("<!")
		buf.WriteString(n.data)
		buf.WriteByte('>')
	}
}

// ContentType returns "xml".
func (p *XMLProcessor) ContentType() string {
	return "xml"
}

// Extensions returns the file extensions handled.
func (p *XMLProcessor) Extensions() []string {
	return []string{".xml"}
}

// Verify XMLProcessor implements ContentProcessor
var _ ContentProcessor = (*XMLProcessor)(nil)
