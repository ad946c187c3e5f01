package processor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ZaguanLabs/modtl"
	"github.com/ZaguanLabs/modtl/textenc"
)

// JSONProcessor handles .json files.
type JSONProcessor struct{}

// NewJSONProcessor creates a new JSON processor.
func NewJSONProcessor() *JSONProcessor {
	return &JSONProcessor{}
}

// JSONDocument is a parsed JSON file.
type JSONDocument struct {
	treeDocument
}

// Replace implements Document.
func (d *JSONDocument) Replace(pos Position, text string) error {
	return d.replace(pos, text, "json")
}

// Parse decodes data into a tree, keeping key order and number literals.
func (p *JSONProcessor) Parse(data []byte) (Document, error) {
	utf8Data, _, err := textenc.DecodeAuto(data)
	if err != nil {
		return nil, parseError("json", err)
	}

	dec := json.NewDecoder(bytes.NewReader(utf8Data))
	dec.UseNumber()

	root, err := decodeJSONValue(dec)
	if err != nil {
		return nil, parseError("json", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, parseError("json", errors.New("unexpected data after top-level value"))
	}

	return &JSONDocument{treeDocument{root: root}}, nil
}

func decodeJSONValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			n := &Node{Kind: KindMap}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				item, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				n.Keys = append(n.Keys, &Node{Kind: KindString, Value: key})
				n.Items = append(n.Items, item)
			}
			if _, err := dec.Token(); err != nil { // '}'
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: KindSequence}
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, item)
			}
			if _, err := dec.Token(); err != nil { // ']'
				return nil, err
			}
			return n, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case string:
		return &Node{Kind: KindString, Value: v}, nil
	case json.Number:
		return &Node{Kind: KindNumber, Value: v.String()}, nil
	case bool:
		if v {
			return &Node{Kind: KindBool, Value: "true"}, nil
		}
		return &Node{Kind: KindBool, Value: "false"}, nil
	case nil:
		return &Node{Kind: KindNull, Value: "null"}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// Marshal writes the tree with two-space indentation, non-ASCII characters
// literal, no HTML escaping and a trailing newline.
func (p *JSONProcessor) Marshal(doc Document) ([]byte, error) {
	d, ok := doc.(*JSONDocument)
	if !ok {
		return nil, wrongDocument(doc, "json")
	}

	var buf bytes.Buffer
	if err := writeJSONNode(&buf, d.root, 0); err != nil {
		return nil, &modtl.ProcessorError{Message: "failed to serialize JSON", Cause: err, ContentType: "json"}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeJSONNode(buf *bytes.Buffer, n *Node, depth int) error {
	switch n.Kind {
	case KindMap:
		if len(n.Items) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, item := range n.Items {
			writeIndent(buf, depth+1)
			if err := writeJSONString(buf, n.Keys[i].Value); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := writeJSONNode(buf, item, depth+1); err != nil {
				return err
			}
			if i < len(n.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte('}')
	case KindSequence:
		if len(n.Items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range n.Items {
			writeIndent(buf, depth+1)
			if err := writeJSONNode(buf, item, depth+1); err != nil {
				return err
			}
			if i < len(n.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte(']')
	case KindString:
		return writeJSONString(buf, n.Value)
	case KindNumber, KindBool, KindNull:
		buf.WriteString(n.Value)
	default:
		return fmt.Errorf("cannot write %s node as JSON", n.Kind)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.WriteString(strings.TrimSuffix(tmp.String(), "\n"))
	return nil
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

// ContentType returns "json".
func (p *JSONProcessor) ContentType() string {
	return "json"
}

// Extensions returns the file extensions handled.
func (p *JSONProcessor) Extensions() []string {
	return []string{".json"}
}

// Verify JSONProcessor implements ContentProcessor
var _ ContentProcessor = (*JSONProcessor)(nil)
