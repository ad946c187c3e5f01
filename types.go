package modtl

import (
	"context"
	"iter"
)

// Position locates a leaf string inside a parsed document.
type Position struct {
	Path string // Human-readable locator (JSON pointer, XPath-like, line number)
	Slot int    // Index into the traversal that produced it
}

// Outcome says how a candidate string was resolved.
type Outcome int

const (
	// OutcomeSkipped means the candidate was blank or excluded and left as is.
	OutcomeSkipped Outcome = iota
	// OutcomeCached means the translation came from the translation memory.
	OutcomeCached
	// OutcomeTranslated means the provider was called.
	OutcomeTranslated
	// OutcomeFailed means the provider failed and the original text was kept.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCached:
		return "cached"
	case OutcomeTranslated:
		return "translated"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolution is the result of running one candidate through the Policy.
// Text is always usable: on failure it holds the original candidate and Err
// carries the *TranslationError.
type Resolution struct {
	Text    string
	Outcome Outcome
	Err     error
}

// Stats counts what happened to the leaves of one document.
type Stats struct {
	Leaves     int // Leaf strings enumerated
	Translated int // Provider calls that succeeded
	Cached     int // Translation memory hits
	Skipped    int // Blank or excluded candidates
	Failed     int // Provider failures (original kept)
}

// Add records one resolution.
func (s *Stats) Add(res Resolution) {
	s.Leaves++
	switch res.Outcome {
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeCached:
		s.Cached++
	case OutcomeTranslated:
		s.Translated++
	case OutcomeFailed:
		s.Failed++
	}
}

// Merge adds the counts of o to s.
func (s *Stats) Merge(o Stats) {
	s.Leaves += o.Leaves
	s.Translated += o.Translated
	s.Cached += o.Cached
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

// TranslateRequest contains the parameters for a single translation call.
type TranslateRequest struct {
	Text       string // Trimmed, non-empty source text
	SourceLang string
	TargetLang string
}

// Provider is the interface for remote translation backends.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslationCache is the interface for the translation memory.
type TranslationCache interface {
	// Get returns the stored translation for a normalized source string.
	Get(key string) (string, bool)
	// Set stores a translation. Entries never expire.
	Set(key string, value string) error
	// Close flushes and releases the underlying store.
	Close() error
}

// Document is a parsed file whose leaf strings can be enumerated and replaced.
type Document interface {
	// Leaves yields every translatable leaf in document order. Positions are
	// only valid until the next call to Leaves.
	Leaves() iter.Seq2[Position, string]
	// Replace writes text at a position yielded by the last traversal.
	Replace(pos Position, text string) error
}

// DirtyDocument is implemented by documents that should only be written back
// when something changed.
type DirtyDocument interface {
	Document
	Dirty() bool
}

// ContentProcessor parses and serializes one file format.
type ContentProcessor interface {
	Parse(data []byte) (Document, error)
	Marshal(doc Document) ([]byte, error)
	ContentType() string
	Extensions() []string
}
