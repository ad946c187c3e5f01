package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/ZaguanLabs/modtl"
)

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Namespace  string            `json:"namespace,omitempty"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry represents a single cache entry.
type ExportEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Exporter provides cache export functionality.
type Exporter struct {
	cache     EntrySource
	namespace string
}

// NewExporter creates a new cache exporter. The namespace is recorded in
// the export for reference only.
func NewExporter(cache EntrySource, namespace string) *Exporter {
	return &Exporter{cache: cache, namespace: namespace}
}

// Export writes the cache contents to a writer in JSON format, sorted by key.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) (int, error) {
	data, err := e.cache.Entries()
	if err != nil {
		return 0, fmt.Errorf("getting cache entries: %w", err)
	}

	entries := make([]ExportEntry, 0, len(data))
	for key, value := range data {
		entries = append(entries, ExportEntry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	export := ExportFormat{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Namespace:  e.namespace,
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(export); err != nil {
		return 0, fmt.Errorf("encoding JSON: %w", err)
	}

	return len(entries), nil
}

// ExportToFile exports the cache to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) (int, error) {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}

	n, err := e.Export(f, metadata)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing file: %w", cerr)
	}
	return n, err
}

// Importer provides cache import functionality.
type Importer struct {
	cache modtl.TranslationCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache modtl.TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// Import reads cache entries from a reader and loads them into the cache.
// Keys are normalized; entries with an empty key or value count as failed.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:   export.Version,
		Namespace: export.Namespace,
		Metadata:  export.Metadata,
	}

	for _, entry := range export.Entries {
		key := modtl.Normalize(entry.Key)
		if key == "" || entry.Value == "" {
			result.Failed++
			continue
		}
		if err := i.cache.Set(key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version   string
	Namespace string
	Metadata  map[string]string
	Imported  int
	Failed    int
}
