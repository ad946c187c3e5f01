package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/ZaguanLabs/modtl"
	"github.com/ZaguanLabs/modtl/processor"
	"golang.org/x/sync/errgroup"
)

// Logger receives per-file progress and errors.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Progress is advanced once per discovered file.
type Progress interface {
	Describe(description string)
	Add(num int) error
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Runner translates files one processor and one policy at a time.
type Runner struct {
	registry *processor.Registry
	policy   *modtl.Policy
	jobs     int
	dryRun   bool
	out      io.Writer
	log      Logger
	progress Progress

	mu sync.Mutex // Guards out, progress
}

// Option is a functional option for configuring the Runner.
type Option func(*Runner)

// WithJobs sets how many files are processed concurrently (default 1).
func WithJobs(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.jobs = n
		}
	}
}

// WithDryRun lists candidates on w instead of translating; no provider
// calls are made and no file is written.
func WithDryRun(w io.Writer) Option {
	return func(r *Runner) {
		r.dryRun = true
		r.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// WithProgress sets a progress indicator advanced after each file.
func WithProgress(p Progress) Option {
	return func(r *Runner) {
		r.progress = p
	}
}

// New creates a Runner.
func New(registry *processor.Registry, policy *modtl.Policy, opts ...Option) *Runner {
	r := &Runner{
		registry: registry,
		policy:   policy,
		jobs:     1,
		out:      io.Discard,
		log:      nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes files and returns the run log. A failing file is recorded
// as an ERROR row and the run continues; files without a processor are
// skipped without a row. Once ctx is cancelled, the remaining files are
// recorded as ERROR.
func (r *Runner) Run(ctx context.Context, files []string) *RunLog {
	rows := make([]*Row, len(files))
	var totals modtl.Stats
	var totalsMu sync.Mutex

	var g errgroup.Group
	g.SetLimit(r.jobs)

	for i, path := range files {
		p, ok := r.registry.For(path)
		if !ok {
			r.log.Warn("skip (no handler): %s", path)
			r.advance(path)
			continue
		}

		g.Go(func() error {
			row, stats := r.runFile(ctx, path, p)
			rows[i] = &row

			totalsMu.Lock()
			totals.Merge(stats)
			totalsMu.Unlock()

			r.advance(path)
			return nil
		})
	}
	_ = g.Wait()

	log := &RunLog{Totals: totals}
	for _, row := range rows {
		if row != nil {
			log.Rows = append(log.Rows, *row)
		}
	}
	return log
}

func (r *Runner) advance(path string) {
	if r.progress == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.Describe(path)
	_ = r.progress.Add(1)
}

func (r *Runner) runFile(ctx context.Context, path string, p processor.ContentProcessor) (Row, modtl.Stats) {
	if err := ctx.Err(); err != nil {
		return Row{File: path, Status: StatusError, Note: err.Error()}, modtl.Stats{}
	}

	var (
		stats modtl.Stats
		note  string
		err   error
	)
	if r.dryRun {
		stats, note, err = r.previewFile(path, p)
	} else {
		r.log.Info("Translating: %s", path)
		stats, note, err = r.translateFile(ctx, path, p)
	}

	if err != nil {
		r.log.Error("Error processing %s: %v", path, err)
		return Row{File: path, Status: StatusError, Note: err.Error()}, stats
	}
	return Row{File: path, Status: StatusOK, Note: note}, stats
}

func (r *Runner) translateFile(ctx context.Context, path string, p processor.ContentProcessor) (modtl.Stats, string, error) {
	var stats modtl.Stats

	doc, err := processor.Load(p, path)
	if err != nil {
		return stats, "", err
	}

	for pos, text := range doc.Leaves() {
		if err := ctx.Err(); err != nil {
			return stats, "", err
		}
		res := r.policy.Resolve(ctx, text)
		stats.Add(res)
		// Failed strings keep whatever the document already holds.
		if res.Err != nil {
			continue
		}
		if err := doc.Replace(pos, res.Text); err != nil {
			return stats, "", err
		}
	}
	if err := ctx.Err(); err != nil {
		return stats, "", err
	}

	written, err := processor.Save(p, doc, path)
	if err != nil {
		return stats, "", err
	}

	note := fmt.Sprintf("%d leaves, %d translated, %d cached, %d failed",
		stats.Leaves, stats.Translated, stats.Cached, stats.Failed)
	if !written {
		note += ", unchanged"
	}
	return stats, note, nil
}

func (r *Runner) previewFile(path string, p processor.ContentProcessor) (modtl.Stats, string, error) {
	doc, err := processor.Load(p, path)
	if err != nil {
		return modtl.Stats{}, "", err
	}

	preview := r.policy.Preview(doc)
	ps := preview.Stats()
	stats := modtl.Stats{
		Leaves:  ps.Pending + ps.Cached + ps.Skipped,
		Cached:  ps.Cached,
		Skipped: ps.Skipped,
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Dry run: %s (%s)\n", path, p.ContentType())
	fmt.Fprintf(&buf, "  %d pending, %d cached, %d skipped\n", ps.Pending, ps.Cached, ps.Skipped)
	for i, c := range preview.Pending {
		fmt.Fprintf(&buf, "  %3d. %-24s %q\n", i+1, c.Position.Path, truncate(c.Text, 60))
	}

	r.mu.Lock()
	_, err = r.out.Write(buf.Bytes())
	r.mu.Unlock()
	if err != nil {
		return stats, "", err
	}

	return stats, fmt.Sprintf("dry run: %d pending, %d cached, %d skipped", ps.Pending, ps.Cached, ps.Skipped), nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}
