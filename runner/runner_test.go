package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ZaguanLabs/modtl"
	"github.com/ZaguanLabs/modtl/cache"
	"github.com/ZaguanLabs/modtl/processor"
	"github.com/ZaguanLabs/modtl/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func quietPolicy(p modtl.Provider, opts ...modtl.PolicyOption) *modtl.Policy {
	opts = append(opts, modtl.WithErrorHandler(func(string, error) {}))
	return modtl.NewPolicy(p, "EN", "JA", opts...)
}

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	warns  []string
	errors []string
}

func (l *recordingLogger) Info(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, format)
}

func (l *recordingLogger) Warn(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, format)
}

func (l *recordingLogger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, format)
}

type countingProgress struct {
	mu    sync.Mutex
	count int
	last  string
}

func (p *countingProgress) Describe(d string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = d
}

func (p *countingProgress) Add(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count += n
	return nil
}

func TestRun_TranslatesAndLogs(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "strings.json")
	propsPath := filepath.Join(dir, "ui.properties")
	writeFile(t, jsonPath, `{"greeting": "Hello", "count": 2}`)
	writeFile(t, propsPath, "# menu\nsave=Save\n")

	mock := provider.NewMockProvider()
	tm := cache.NewInMemoryCache()
	r := New(processor.DefaultRegistry("JA"), quietPolicy(mock, modtl.WithCache(tm)))

	log := r.Run(context.Background(), []string{jsonPath, propsPath})

	require.Len(t, log.Rows, 2)
	assert.Equal(t, Row{File: jsonPath, Status: StatusOK, Note: "1 leaves, 1 translated, 0 cached, 0 failed"}, log.Rows[0])
	assert.Equal(t, StatusOK, log.Rows[1].Status)
	assert.Equal(t, 0, log.Errors())
	assert.Equal(t, 2, log.Totals.Translated)

	assert.Equal(t, "{\n  \"greeting\": \"こんにちは\",\n  \"count\": 2\n}\n", readFile(t, jsonPath))
	assert.Equal(t, "# menu\nsave=保存\n", readFile(t, propsPath))

	v, ok := tm.Get("Save")
	assert.True(t, ok)
	assert.Equal(t, "保存", v)
}

func TestRun_FaultTolerance(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "five.txt")
	writeFile(t, path, "one\ntwo\nthree\nfour\nfive\n")

	mock := &provider.MockProvider{
		Translations: map[string]string{"one": "1", "two": "2", "four": "4", "five": "5"},
		Failures:     map[string]error{"three": &modtl.ProviderError{Message: "unexpected status 500"}},
	}
	r := New(processor.DefaultRegistry("JA"), quietPolicy(mock))

	log := r.Run(context.Background(), []string{path})

	require.Len(t, log.Rows, 1)
	assert.Equal(t, StatusOK, log.Rows[0].Status)
	assert.Equal(t, 4, log.Totals.Translated)
	assert.Equal(t, 1, log.Totals.Failed)
	assert.Equal(t, "1\n2\nthree\n4\n5\n", readFile(t, path))
}

func TestRun_FileErrorContinues(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "a_bad.json")
	good := filepath.Join(dir, "b_good.txt")
	writeFile(t, bad, `{"broken": `)
	writeFile(t, good, "Hello\n")

	logger := &recordingLogger{}
	r := New(processor.DefaultRegistry("JA"), quietPolicy(provider.NewMockProvider()), WithLogger(logger))

	log := r.Run(context.Background(), []string{bad, good})

	require.Len(t, log.Rows, 2)
	assert.Equal(t, StatusError, log.Rows[0].Status)
	assert.NotEmpty(t, log.Rows[0].Note)
	assert.Equal(t, StatusOK, log.Rows[1].Status)
	assert.Equal(t, 1, log.Errors())
	assert.Len(t, logger.errors, 1)
	assert.Equal(t, `{"broken": `, readFile(t, bad), "failed files are left intact")
	assert.Equal(t, "こんにちは\n", readFile(t, good))
}

func TestRun_NoHandlerSkippedWithoutRow(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "image.png")
	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, img, "\x89PNG")
	writeFile(t, txt, "World\n")

	logger := &recordingLogger{}
	progress := &countingProgress{}
	r := New(processor.DefaultRegistry("JA"), quietPolicy(provider.NewMockProvider()),
		WithLogger(logger), WithProgress(progress))

	log := r.Run(context.Background(), []string{img, txt})

	require.Len(t, log.Rows, 1)
	assert.Equal(t, txt, log.Rows[0].File)
	assert.Len(t, logger.warns, 1)
	assert.Equal(t, 2, progress.count)
}

func TestRun_UnchangedCatalogNotRewritten(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "done.po")
	writeFile(t, path, "msgid \"Hello\"\nmsgstr \"Bonjour\"\n")

	mock := provider.NewMockProvider()
	r := New(processor.DefaultRegistry("JA"), quietPolicy(mock))

	log := r.Run(context.Background(), []string{path})

	require.Len(t, log.Rows, 1)
	assert.Contains(t, log.Rows[0].Note, "unchanged")
	assert.Equal(t, 0, mock.CallCount())
}

func TestRun_CatalogFailureLeavesMsgstrEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ja.po")
	writeFile(t, path, "msgid \"Hello\"\nmsgstr \"\"\n\nmsgid \"Broken\"\nmsgstr \"\"\n")

	mock := provider.NewMockProvider()
	mock.Failures = map[string]error{"Broken": errors.New("boom")}
	r := New(processor.DefaultRegistry("JA"), quietPolicy(mock))

	log := r.Run(context.Background(), []string{path})

	require.Len(t, log.Rows, 1)
	assert.Equal(t, StatusOK, log.Rows[0].Status)
	assert.Equal(t, "msgid \"Hello\"\nmsgstr \"こんにちは\"\n\nmsgid \"Broken\"\nmsgstr \"\"\n", readFile(t, path))
}

func TestRun_ConcurrentJobsKeepOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt", "f.txt"} {
		path := filepath.Join(dir, name)
		writeFile(t, path, "Hello\nWorld\n")
		files = append(files, path)
	}

	mock := provider.NewMockProvider()
	tm := cache.NewInMemoryCache()
	r := New(processor.DefaultRegistry("JA"), quietPolicy(mock, modtl.WithCache(tm)), WithJobs(4))

	log := r.Run(context.Background(), files)

	require.Len(t, log.Rows, len(files))
	for i, row := range log.Rows {
		assert.Equal(t, files[i], row.File)
		assert.Equal(t, StatusOK, row.Status)
		assert.Equal(t, "こんにちは\n世界\n", readFile(t, row.File))
	}
	assert.Equal(t, 2, mock.CallCount(), "each distinct string is translated once")
}

func TestRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "Hello\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := provider.NewMockProvider()
	r := New(processor.DefaultRegistry("JA"), quietPolicy(mock))
	log := r.Run(ctx, []string{path})

	require.Len(t, log.Rows, 1)
	assert.Equal(t, StatusError, log.Rows[0].Status)
	assert.Equal(t, context.Canceled.Error(), log.Rows[0].Note)
	assert.Equal(t, 0, mock.CallCount())
	assert.Equal(t, "Hello\n", readFile(t, path))
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")
	content := `{"a": "Hello", "b": "Save", "c": ""}`
	writeFile(t, path, content)

	tm := cache.NewInMemoryCache()
	require.NoError(t, tm.Set("Save", "保存"))

	mock := provider.NewMockProvider()
	var out bytes.Buffer
	r := New(processor.DefaultRegistry("JA"), quietPolicy(mock, modtl.WithCache(tm)), WithDryRun(&out))

	log := r.Run(context.Background(), []string{path})

	require.Len(t, log.Rows, 1)
	assert.Equal(t, "dry run: 1 pending, 1 cached, 1 skipped", log.Rows[0].Note)
	assert.Equal(t, 0, mock.CallCount())
	assert.Equal(t, content, readFile(t, path), "dry run never writes")
	assert.Contains(t, out.String(), `"Hello"`)
	assert.Contains(t, out.String(), "/a")
	assert.NotContains(t, out.String(), `"Save"`)
}

func TestRun_IdentityRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	input := `{"z": "last", "a": ["x", 1, {"k": "v"}], "m": {"n": null, "t": true}}`
	writeFile(t, path, input)

	r := New(processor.DefaultRegistry("JA"), quietPolicy(provider.NewIdentityProvider()))
	log := r.Run(context.Background(), []string{path})
	require.Equal(t, StatusOK, log.Rows[0].Status)

	var before, after any
	require.NoError(t, json.Unmarshal([]byte(input), &before))
	require.NoError(t, json.Unmarshal([]byte(readFile(t, path)), &after))
	assert.True(t, reflect.DeepEqual(before, after))

	out := readFile(t, path)
	assert.Less(t, strings.Index(out, `"z"`), strings.Index(out, `"a"`))
	assert.Less(t, strings.Index(out, `"a"`), strings.Index(out, `"m"`))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "こんに...", truncate("こんにちは世界", 6))
}
