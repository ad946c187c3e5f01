package modtl

import (
	"regexp"
	"testing"
)

func TestPreview_NothingCached(t *testing.T) {
	p := NewPolicy(&stubProvider{}, "EN", "JA")
	doc := &sliceDocument{texts: []string{"Hello", "World"}}

	preview := p.Preview(doc)

	if !preview.HasWork() {
		t.Error("Expected work for untranslated content")
	}
	if len(preview.Pending) != 2 {
		t.Errorf("Expected 2 pending, got %d", len(preview.Pending))
	}
}

func TestPreview_DoesNotCallProvider(t *testing.T) {
	provider := &stubProvider{}
	p := NewPolicy(provider, "EN", "JA", WithCache(newMapCache()))

	p.Preview(&sliceDocument{texts: []string{"Hello", "World"}})

	if n := provider.callCount(); n != 0 {
		t.Errorf("Expected no provider calls, got %d", n)
	}
}

func TestPreview_Mixed(t *testing.T) {
	cache := newMapCache()
	cache.entries["Hello"] = "こんにちは"

	p := NewPolicy(&stubProvider{}, "EN", "JA",
		WithCache(cache),
		WithSkipPattern(regexp.MustCompile(`^\d+$`)),
	)
	doc := &sliceDocument{texts: []string{"  Hello ", "42", "Save", "", "Save"}}

	preview := p.Preview(doc)
	stats := preview.Stats()

	if stats.Cached != 1 || stats.Skipped != 2 || stats.Pending != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if preview.Cached[0].Position.Path != "/0" {
		t.Errorf("Expected cached leaf at /0, got %q", preview.Cached[0].Position.Path)
	}
}

func TestPreview_NeedsTranslation(t *testing.T) {
	p := NewPolicy(&stubProvider{}, "EN", "JA")
	doc := &sliceDocument{texts: []string{"Save", " Open ", "Save", "Open"}}

	needs := p.Preview(doc).NeedsTranslation()

	if len(needs) != 2 || needs[0] != "Save" || needs[1] != "Open" {
		t.Errorf("Expected distinct keys in order, got %q", needs)
	}
}

func TestPreview_HasWork(t *testing.T) {
	p := NewPolicy(&stubProvider{}, "EN", "JA")

	if p.Preview(&sliceDocument{texts: []string{"", "   "}}).HasWork() {
		t.Error("Blank leaves should not need work")
	}
}

func TestPolicy_Classify(t *testing.T) {
	cache := newMapCache()
	cache.entries["Hello"] = "Bonjour"
	cache.entries["Empty"] = ""
	p := NewPolicy(&stubProvider{}, "EN", "FR", WithCache(cache))

	tests := []struct {
		candidate string
		want      Outcome
	}{
		{"", OutcomeSkipped},
		{"  ", OutcomeSkipped},
		{" Hello ", OutcomeCached},
		{"Empty", OutcomeTranslated},
		{"New text", OutcomeTranslated},
	}

	for _, tt := range tests {
		if got := p.Classify(tt.candidate); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.candidate, got, tt.want)
		}
	}
}
