// Package cache provides translation memory implementations.
//
// Every cache is bound to one namespace, the language pair it stores
// translations for, so switching the target language never returns a
// translation into another language. Inside a namespace the key is the
// normalized source string.
package cache

import (
	"strings"

	"github.com/ZaguanLabs/modtl"
)

// DefaultPath is the translation memory file reused across runs.
const DefaultPath = ".translate_cache.db"

// Namespace returns the namespace for a language pair ("EN:JA").
func Namespace(sourceLang, targetLang string) string {
	return strings.ToUpper(sourceLang) + ":" + strings.ToUpper(targetLang)
}

// EntrySource is implemented by caches that can list their contents.
type EntrySource interface {
	modtl.TranslationCache
	// Entries returns every key-value pair in the cache's namespace.
	Entries() (map[string]string, error)
}

// Verify implementations
var (
	_ EntrySource = (*InMemoryCache)(nil)
	_ EntrySource = (*SQLiteCache)(nil)
	_ EntrySource = (*RedisCache)(nil)
)
