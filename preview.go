package modtl

// Candidate is one leaf seen by a preview.
type Candidate struct {
	Position Position
	Text     string
}

// Preview is what a run would do to a document, computed without calling
// the provider.
type Preview struct {
	// Pending contains leaves that would be sent to the provider.
	Pending []Candidate

	// Cached contains leaves already in the translation memory.
	Cached []Candidate

	// Skipped contains blank or excluded leaves.
	Skipped []Candidate
}

// PreviewStats contains summary counts for a preview.
type PreviewStats struct {
	Pending int
	Cached  int
	Skipped int
}

// Stats returns summary counts for the preview.
func (p *Preview) Stats() PreviewStats {
	return PreviewStats{
		Pending: len(p.Pending),
		Cached:  len(p.Cached),
		Skipped: len(p.Skipped),
	}
}

// HasWork returns true if any leaf would change.
func (p *Preview) HasWork() bool {
	return len(p.Pending) > 0 || len(p.Cached) > 0
}

// NeedsTranslation returns the distinct normalized strings that would be
// sent to the provider, in document order.
func (p *Preview) NeedsTranslation() []string {
	seen := make(map[string]bool, len(p.Pending))
	result := make([]string, 0, len(p.Pending))
	for _, c := range p.Pending {
		key := Normalize(c.Text)
		if !seen[key] {
			seen[key] = true
			result = append(result, key)
		}
	}
	return result
}

// Classify reports the outcome Resolve would have for candidate without
// calling the provider. OutcomeTranslated means a provider call is needed.
func (p *Policy) Classify(candidate string) Outcome {
	if !p.ShouldTranslate(candidate) {
		return OutcomeSkipped
	}
	if _, ok := p.lookup(Normalize(candidate)); ok {
		return OutcomeCached
	}
	return OutcomeTranslated
}

// Preview classifies every leaf of doc.
func (p *Policy) Preview(doc Document) *Preview {
	result := &Preview{}
	for pos, text := range doc.Leaves() {
		c := Candidate{Position: pos, Text: text}
		switch p.Classify(text) {
		case OutcomeSkipped:
			result.Skipped = append(result.Skipped, c)
		case OutcomeCached:
			result.Cached = append(result.Cached, c)
		default:
			result.Pending = append(result.Pending, c)
		}
	}
	return result
}
