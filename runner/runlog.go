package runner

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ZaguanLabs/modtl"
	"github.com/ZaguanLabs/modtl/processor"
)

// DefaultLogPath is the run log written in the working directory.
const DefaultLogPath = "translate_log.csv"

// Status is the outcome of one file.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

// Row is one run log line.
type Row struct {
	File   string
	Status Status
	Note   string
}

// RunLog holds one row per processed file, in discovery order.
type RunLog struct {
	Rows   []Row
	Totals modtl.Stats
}

// Errors returns the number of ERROR rows.
func (l *RunLog) Errors() int {
	n := 0
	for _, row := range l.Rows {
		if row.Status == StatusError {
			n++
		}
	}
	return n
}

// Write writes the log as CSV with a file,status,note header.
func (l *RunLog) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"file", "status", "note"}); err != nil {
		return err
	}
	for _, row := range l.Rows {
		if err := cw.Write([]string{row.File, string(row.Status), row.Note}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV replaces the file at path with the log.
func (l *RunLog) WriteCSV(path string) error {
	var buf bytes.Buffer
	if err := l.Write(&buf); err != nil {
		return fmt.Errorf("encoding run log: %w", err)
	}
	return processor.WriteFileAtomic(path, buf.Bytes())
}
