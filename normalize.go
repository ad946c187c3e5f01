package modtl

import (
	"strings"
	"unicode"
)

// Normalize returns the translation memory key for a candidate string: the
// candidate with leading and trailing Unicode whitespace removed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// Splice puts translated in place of the trimmed core of original, keeping
// the original leading and trailing whitespace.
func Splice(original, translated string) string {
	leading := original[:len(original)-len(strings.TrimLeftFunc(original, unicode.IsSpace))]
	if leading == original {
		// All whitespace: nothing to splice into.
		return original
	}
	trailing := original[len(strings.TrimRightFunc(original, unicode.IsSpace)):]
	return leading + translated + trailing
}
