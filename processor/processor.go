// Package processor parses localization files into documents whose leaf
// strings can be enumerated and replaced, and serializes them back to UTF-8.
package processor

import (
	"fmt"

	"github.com/ZaguanLabs/modtl"
)

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = modtl.ContentProcessor

// Document is an alias to the main package interface.
type Document = modtl.Document

// Position is an alias to the main package type.
type Position = modtl.Position

// slots records a setter for every leaf yielded by the current traversal.
type slots struct {
	setters []func(string)
}

func (s *slots) reset() {
	clear(s.setters)
	s.setters = s.setters[:0]
}

func (s *slots) add(path string, set func(string)) Position {
	s.setters = append(s.setters, set)
	return Position{Path: path, Slot: len(s.setters) - 1}
}

func (s *slots) replace(pos Position, text, contentType string) error {
	if pos.Slot < 0 || pos.Slot >= len(s.setters) {
		return &modtl.ProcessorError{
			Message:     fmt.Sprintf("unknown position %q (slot %d)", pos.Path, pos.Slot),
			ContentType: contentType,
		}
	}
	s.setters[pos.Slot](text)
	return nil
}

// wrongDocument reports a document handed to the wrong processor.
func wrongDocument(doc Document, contentType string) error {
	return &modtl.ProcessorError{
		Message:     fmt.Sprintf("invalid document type %T", doc),
		ContentType: contentType,
	}
}

func parseError(contentType string, cause error) error {
	return &modtl.ProcessorError{
		Message:     "failed to parse " + contentType,
		Cause:       cause,
		ContentType: contentType,
	}
}
