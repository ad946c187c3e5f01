package processor

import (
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry("ja")

	tests := []struct {
		path        string
		contentType string
	}{
		{"mod/strings.json", "json"},
		{"mod/config.YML", "yaml"},
		{"mod/config.yaml", "yaml"},
		{"mod/defs.xml", "xml"},
		{"site/index.HTM", "html"},
		{"site/about.html", "html"},
		{"lang/en.properties", "properties"},
		{"readme.txt", "text"},
		{"po/ja.po", "po"},
		{"po/messages.pot", "po"},
	}

	for _, tt := range tests {
		p, ok := r.For(tt.path)
		if !ok {
			t.Errorf("%s: no processor", tt.path)
			continue
		}
		if p.ContentType() != tt.contentType {
			t.Errorf("%s: expected %s, got %s", tt.path, tt.contentType, p.ContentType())
		}
	}

	if _, ok := r.For("image.png"); ok {
		t.Error("image.png should have no processor")
	}
	if _, ok := r.For("Makefile"); ok {
		t.Error("files without extension should have no processor")
	}
}

func TestRegistry_Extensions(t *testing.T) {
	r := NewRegistry(NewTextProcessor(), NewJSONProcessor())

	exts := r.Extensions()
	if len(exts) != 2 || exts[0] != ".json" || exts[1] != ".txt" {
		t.Errorf("unexpected extensions %v", exts)
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry(NewTextProcessor())
	r.Register(NewPropertiesProcessor())

	p, ok := r.For("a.properties")
	if !ok || p.ContentType() != "properties" {
		t.Errorf("expected properties processor, got %v", p)
	}
}
