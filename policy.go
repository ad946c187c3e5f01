package modtl

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/sync/singleflight"
)

// Policy decides whether a candidate string is translated and resolves it
// through the translation memory and the provider.
type Policy struct {
	provider   Provider
	cache      TranslationCache
	sourceLang string
	targetLang string
	skip       *regexp.Regexp
	guard      string
	guardOn    bool
	onError    func(candidate string, err error)
	flight     singleflight.Group
}

// PolicyOption is a functional option for configuring the Policy.
type PolicyOption func(*Policy)

// WithCache sets the translation memory.
func WithCache(cache TranslationCache) PolicyOption {
	return func(p *Policy) {
		p.cache = cache
	}
}

// WithSkipPattern excludes candidates whose trimmed form contains a match.
func WithSkipPattern(re *regexp.Regexp) PolicyOption {
	return func(p *Policy) {
		p.skip = re
	}
}

// WithTargetLangGuard skips candidates that are reliably detected as already
// being in the target language.
func WithTargetLangGuard() PolicyOption {
	return func(p *Policy) {
		p.guardOn = true
	}
}

// WithErrorHandler sets the function called for every failed translation.
func WithErrorHandler(fn func(candidate string, err error)) PolicyOption {
	return func(p *Policy) {
		p.onError = fn
	}
}

// NewPolicy creates a Policy translating from sourceLang to targetLang.
func NewPolicy(provider Provider, sourceLang, targetLang string, opts ...PolicyOption) *Policy {
	p := &Policy{
		provider:   provider,
		sourceLang: sourceLang,
		targetLang: targetLang,
		onError:    StderrErrorHandler(os.Stderr),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.guardOn {
		p.guard = BaseLanguage(targetLang)
	}

	return p
}

// StderrErrorHandler prints failed translations to w.
func StderrErrorHandler(w io.Writer) func(string, error) {
	return func(candidate string, err error) {
		fmt.Fprintf(w, "Translate error: %v\n", err)
	}
}

// ShouldTranslate reports whether candidate needs a translation.
func (p *Policy) ShouldTranslate(candidate string) bool {
	key := Normalize(candidate)
	if key == "" {
		return false
	}
	if p.skip != nil && p.skip.MatchString(key) {
		return false
	}
	if p.guardOn && p.inTargetLang(key) {
		return false
	}
	return true
}

func (p *Policy) inTargetLang(text string) bool {
	info := whatlanggo.Detect(text)
	return info.IsReliable() && info.Lang.Iso6391() == p.guard
}

// Resolve returns the text to write back for candidate. It never fails: when
// the provider errors, the original candidate is returned and Err is set.
func (p *Policy) Resolve(ctx context.Context, candidate string) Resolution {
	if !p.ShouldTranslate(candidate) {
		return Resolution{Text: candidate, Outcome: OutcomeSkipped}
	}

	key := Normalize(candidate)
	if cached, ok := p.lookup(key); ok {
		return Resolution{Text: Splice(candidate, cached), Outcome: OutcomeCached}
	}

	leader := false
	v, err, _ := p.flight.Do(key, func() (any, error) {
		leader = true
		// Another caller may have stored it while we waited for the flight.
		if cached, ok := p.lookup(key); ok {
			return flightResult{text: cached, cached: true}, nil
		}

		translated, err := p.provider.Translate(ctx, TranslateRequest{
			Text:       key,
			SourceLang: p.sourceLang,
			TargetLang: p.targetLang,
		})
		if err != nil {
			return nil, &TranslationError{
				Message: fmt.Sprintf("translating %q", key),
				Cause:   err,
			}
		}

		if p.cache != nil {
			if err := p.cache.Set(key, translated); err != nil {
				p.onError(key, &CacheError{Message: "storing translation", Cause: err})
			}
		}
		return flightResult{text: translated}, nil
	})
	if err != nil {
		if leader {
			p.onError(candidate, err)
		}
		return Resolution{Text: candidate, Outcome: OutcomeFailed, Err: err}
	}

	res := v.(flightResult)
	outcome := OutcomeTranslated
	if res.cached || !leader {
		outcome = OutcomeCached
	}
	return Resolution{Text: Splice(candidate, res.text), Outcome: outcome}
}

type flightResult struct {
	text   string
	cached bool
}

func (p *Policy) lookup(key string) (string, bool) {
	if p.cache == nil {
		return "", false
	}
	cached, ok := p.cache.Get(key)
	// An empty stored translation is treated as a miss.
	if !ok || cached == "" {
		return "", false
	}
	return cached, true
}

// SourceLang returns the source language.
func (p *Policy) SourceLang() string {
	return p.sourceLang
}

// TargetLang returns the target language.
func (p *Policy) TargetLang() string {
	return p.targetLang
}
