package processor

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ZaguanLabs/modtl"
	"github.com/ZaguanLabs/modtl/textenc"
	"gopkg.in/yaml.v3"
)

// YAMLProcessor handles .yml and .yaml files.
type YAMLProcessor struct{}

// NewYAMLProcessor creates a new YAML processor.
func NewYAMLProcessor() *YAMLProcessor {
	return &YAMLProcessor{}
}

// YAMLDocument is a parsed YAML file. An empty file has a nil root.
type YAMLDocument struct {
	treeDocument
}

// Replace implements Document.
func (d *YAMLDocument) Replace(pos Position, text string) error {
	return d.replace(pos, text, "yaml")
}

// Parse decodes a single-document YAML stream. Aliases are expanded.
func (p *YAMLProcessor) Parse(data []byte) (Document, error) {
	utf8Data, _, err := textenc.DecodeAuto(data)
	if err != nil {
		return nil, parseError("yaml", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(utf8Data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &YAMLDocument{}, nil
		}
		return nil, parseError("yaml", err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("multiple documents in one file are not supported")
		}
		return nil, parseError("yaml", err)
	}

	budget := maxYAMLNodes
	root, err := fromYAML(&doc, 0, &budget)
	if err != nil {
		return nil, parseError("yaml", err)
	}
	return &YAMLDocument{treeDocument{root: root}}, nil
}

// maxAliasDepth bounds alias nesting; maxYAMLNodes bounds the expanded tree.
const (
	maxAliasDepth = 64
	maxYAMLNodes  = 1_000_000
)

// fromYAML converts y, charging every node it produces against budget so
// that repeated aliases cannot expand beyond maxYAMLNodes.
func fromYAML(y *yaml.Node, depth int, budget *int) (*Node, error) {
	if depth > maxAliasDepth {
		return nil, errors.New("aliases nested too deeply")
	}
	if y.Kind != yaml.DocumentNode && y.Kind != yaml.AliasNode {
		if *budget <= 0 {
			return nil, errors.New("document expands to too many nodes")
		}
		*budget--
	}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return nil, nil
		}
		return fromYAML(y.Content[0], depth, budget)
	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, errors.New("unresolved alias")
		}
		return fromYAML(y.Alias, depth+1, budget)
	case yaml.MappingNode:
		n := &Node{Kind: KindMap}
		for i := 0; i+1 < len(y.Content); i += 2 {
			key, err := fromYAML(y.Content[i], depth, budget)
			if err != nil {
				return nil, err
			}
			item, err := fromYAML(y.Content[i+1], depth, budget)
			if err != nil {
				return nil, err
			}
			n.Keys = append(n.Keys, key)
			n.Items = append(n.Items, item)
		}
		return n, nil
	case yaml.SequenceNode:
		n := &Node{Kind: KindSequence}
		for _, c := range y.Content {
			item, err := fromYAML(c, depth, budget)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, item)
		}
		return n, nil
	case yaml.ScalarNode:
		switch y.ShortTag() {
		case "!!str":
			return &Node{Kind: KindString, Value: y.Value}, nil
		case "!!int", "!!float":
			return &Node{Kind: KindNumber, Value: y.Value, Tag: y.ShortTag()}, nil
		case "!!bool":
			return &Node{Kind: KindBool, Value: y.Value}, nil
		case "!!null":
			return &Node{Kind: KindNull, Value: y.Value}, nil
		default:
			return &Node{Kind: KindOpaque, Value: y.Value, Tag: y.Tag}, nil
		}
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", y.Kind)
	}
}

func toYAML(n *Node) *yaml.Node {
	switch n.Kind {
	case KindMap:
		y := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, item := range n.Items {
			y.Content = append(y.Content, toYAML(n.Keys[i]), toYAML(item))
		}
		return y
	case KindSequence:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items {
			y.Content = append(y.Content, toYAML(item))
		}
		return y
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Value}
	case KindNumber:
		tag := n.Tag
		if tag == "" {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.Value}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: n.Value}
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: n.Value}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: n.Tag, Value: n.Value}
	}
}

// Marshal writes the tree with two-space indentation in source key order.
func (p *YAMLProcessor) Marshal(doc Document) ([]byte, error) {
	d, ok := doc.(*YAMLDocument)
	if !ok {
		return nil, wrongDocument(doc, "yaml")
	}
	if d.root == nil {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(d.root)); err != nil {
		return nil, &modtl.ProcessorError{Message: "failed to serialize YAML", Cause: err, ContentType: "yaml"}
	}
	if err := enc.Close(); err != nil {
		return nil, &modtl.ProcessorError{Message: "failed to serialize YAML", Cause: err, ContentType: "yaml"}
	}
	return buf.Bytes(), nil
}

// ContentType returns "yaml".
func (p *YAMLProcessor) ContentType() string {
	return "yaml"
}

// Extensions returns the file extensions handled.
func (p *YAMLProcessor) Extensions() []string {
	return []string{".yml", ".yaml"}
}

// Verify YAMLProcessor implements ContentProcessor
var _ ContentProcessor = (*YAMLProcessor)(nil)
