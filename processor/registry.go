package processor

import (
	"path/filepath"
	"sort"
	"strings"
)

// Registry maps file extensions to processors.
type Registry struct {
	byExt map[string]ContentProcessor
}

// NewRegistry creates a registry holding the given processors.
func NewRegistry(processors ...ContentProcessor) *Registry {
	r := &Registry{byExt: make(map[string]ContentProcessor)}
	for _, p := range processors {
		r.Register(p)
	}
	return r
}

// DefaultRegistry returns a registry with every built-in format. targetLang
// is written into HTML documents.
func DefaultRegistry(targetLang string) *Registry {
	return NewRegistry(
		NewJSONProcessor(),
		NewYAMLProcessor(),
		NewXMLProcessor(),
		NewHTMLProcessor(WithTargetLang(targetLang)),
		NewPropertiesProcessor(),
		NewTextProcessor(),
		NewPOProcessor(),
	)
}

// Register adds p for each of its extensions, replacing earlier entries.
func (r *Registry) Register(p ContentProcessor) {
	for _, ext := range p.Extensions() {
		r.byExt[strings.ToLower(ext)] = p
	}
}

// For returns the processor for path's extension (case-insensitive).
func (r *Registry) For(path string) (ContentProcessor, bool) {
	p, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// Extensions returns the registered extensions in lexical order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
