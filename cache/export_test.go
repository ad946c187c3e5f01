package cache

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestExporter_Export(t *testing.T) {
	c := NewInMemoryCache()
	c.Set("Save", "保存")
	c.Set("Load <file>", "読み込み")

	exporter := NewExporter(c, "EN:JA")
	var buf bytes.Buffer

	n, err := exporter.Export(&buf, map[string]string{"source": "EN"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 exported, got %d", n)
	}

	// HTML characters are written literally
	if !strings.Contains(buf.String(), "Load <file>") {
		t.Errorf("export should not escape HTML: %s", buf.String())
	}

	// Parse the output
	var export ExportFormat
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}

	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}

	if export.Namespace != "EN:JA" {
		t.Errorf("Expected namespace EN:JA, got %s", export.Namespace)
	}

	if len(export.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(export.Entries))
	}

	// Sorted by key
	if export.Entries[0].Key != "Load <file>" || export.Entries[1].Key != "Save" {
		t.Errorf("entries not sorted: %v", export.Entries)
	}

	if export.Metadata["source"] != "EN" {
		t.Errorf("Expected metadata source=EN, got %v", export.Metadata)
	}
}

func TestImporter_Import(t *testing.T) {
	jsonData := `{
		"version": "1.0",
		"exported_at": "2024-01-01T00:00:00Z",
		"entries": [
			{"key": "Save", "value": "保存"},
			{"key": "  Load  ", "value": "読み込み"},
			{"key": "   ", "value": "空"},
			{"key": "Quit", "value": ""}
		]
	}`

	c := NewInMemoryCache()
	importer := NewImporter(c)

	result, err := importer.Import(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}

	if result.Failed != 2 {
		t.Errorf("Expected 2 failed, got %d", result.Failed)
	}

	// Verify entries are in cache
	if val, ok := c.Get("Save"); !ok || val != "保存" {
		t.Errorf("Save not found or wrong value: %s", val)
	}

	// Keys are normalized on import
	if val, ok := c.Get("Load"); !ok || val != "読み込み" {
		t.Errorf("Load not found or wrong value: %s", val)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	src, err := NewSQLiteCache(filepath.Join(t.TempDir(), "src.db"), "EN:ES")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer src.Close()
	src.Set("Hello", "Hola")
	src.Set("World", "Mundo")

	path := filepath.Join(t.TempDir(), "tm.json")
	if _, err := NewExporter(src, src.Namespace()).ExportToFile(path, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Import into new cache
	dst := NewInMemoryCache()
	result, err := NewImporter(dst).ImportFromFile(path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if result.Namespace != "EN:ES" {
		t.Errorf("Expected namespace EN:ES, got %s", result.Namespace)
	}

	// Verify
	if val, ok := dst.Get("Hello"); !ok || val != "Hola" {
		t.Errorf("Hello not found or wrong value")
	}
}

func TestExporter_EmptyCache(t *testing.T) {
	c := NewInMemoryCache()
	exporter := NewExporter(c, "")

	var buf bytes.Buffer
	_, err := exporter.Export(&buf, nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var export ExportFormat
	json.Unmarshal(buf.Bytes(), &export)

	if len(export.Entries) != 0 {
		t.Errorf("Expected 0 entries for empty cache, got %d", len(export.Entries))
	}
}

func TestImporter_InvalidJSON(t *testing.T) {
	c := NewInMemoryCache()
	importer := NewImporter(c)

	_, err := importer.Import(strings.NewReader("invalid json"))
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
