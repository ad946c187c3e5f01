// Package provider implements the remote translation backends.
package provider

import "github.com/ZaguanLabs/modtl"

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = modtl.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = modtl.TranslateRequest
