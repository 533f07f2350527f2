// Package export renders an owner's records as downloadable report
// documents.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"spendwise/internal/core"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

var (
	// ErrExportFailed is the single failure callers see for any render error.
	ErrExportFailed      = errors.New("export failed")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Document is a fully rendered report.
type Document struct {
	ContentType string
	Filename    string
	Body        []byte
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Render buffers the whole document before returning it, so a failure
// never yields partial output.
func Render(format Format, username string, incomes []core.Income, expenses []core.Expense) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = Document{}, fmt.Errorf("%w: %v", ErrExportFailed, r)
		}
	}()

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = RenderCSV(&buf, incomes, expenses)
		doc = Document{ContentType: "text/csv", Filename: "report.csv"}
	case FormatPDF:
		err = RenderPDF(&buf, username, expenses)
		doc = Document{ContentType: "application/pdf", Filename: "report.pdf"}
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	doc.Body = buf.Bytes()
	return doc, nil
}
