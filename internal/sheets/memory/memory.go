package memory

import (
	"context"
	"sync"

	ports "spendwise/internal/sheets"
)

var _ ports.ReportWriter = (*Writer)(nil)

// Report is one published block.
type Report struct {
	Title string
	Rows  [][]string
	Range string
}

// Writer keeps published reports in memory, laid out like the Sheets client
// would place them.
type Writer struct {
	mu       sync.Mutex
	sheet    string
	usedRows int
	reports  []Report
}

func New(sheet string) *Writer {
	if sheet == "" {
		sheet = "mem"
	}
	return &Writer{sheet: sheet}
}

// WriteReport stores the report and returns a synthetic range reference.
func (w *Writer) WriteReport(_ context.Context, title string, rows [][]string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	start := 1
	if w.usedRows > 0 {
		start = w.usedRows + 2
	}
	block := ports.ReportBlock(title, rows)
	rng := ports.BlockRange(w.sheet, start, block)
	w.usedRows = start + len(block) - 1
	w.reports = append(w.reports, Report{Title: title, Rows: rows, Range: rng})
	return rng, nil
}

// Reports returns a copy of what has been published so far.
func (w *Writer) Reports() []Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Report(nil), w.reports...)
}
