package modtl

import (
	"context"
	"fmt"
	"iter"
	"sync"
)

// stubProvider returns "[text]" unless a response or failure is configured.
type stubProvider struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]string
	fail      map[string]error
	release   chan struct{} // When set, every call blocks until closed
}

func (s *stubProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.Text)
	release := s.release
	s.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err, ok := s.fail[req.Text]; ok {
		return "", err
	}
	if out, ok := s.responses[req.Text]; ok {
		return out, nil
	}
	return "[" + req.Text + "]", nil
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// mapCache is a minimal TranslationCache for policy tests.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
	setErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(key, value string) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapCache) Close() error { return nil }

// sliceDocument is a Document over a list of strings.
type sliceDocument struct {
	texts []string
}

func (d *sliceDocument) Leaves() iter.Seq2[Position, string] {
	return func(yield func(Position, string) bool) {
		for i, text := range d.texts {
			if !yield(Position{Path: fmt.Sprintf("/%d", i), Slot: i}, text) {
				return
			}
		}
	}
}

func (d *sliceDocument) Replace(pos Position, text string) error {
	if pos.Slot < 0 || pos.Slot >= len(d.texts) {
		return &ProcessorError{Message: "unknown position", ContentType: "slice"}
	}
	d.texts[pos.Slot] = text
	return nil
}
