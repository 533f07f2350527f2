package sheets

import (
	"context"
	"fmt"
	"strings"
)

// Ports for outbound adapters.
type (
	// ReportWriter publishes a tabular report below the existing content of a
	// spreadsheet and returns the A1 range it filled.
	ReportWriter interface {
		WriteReport(ctx context.Context, title string, rows [][]string) (rangeRef string, err error)
	}
)

// ColumnName converts a 1-based column index to its A1 letters (1 -> A, 27 -> AA).
func ColumnName(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// QuoteSheet returns the sheet name in the quoted form A1 notation accepts
// for names with spaces or punctuation.
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// BlockRange is the A1 range covering rows placed at startRow, as wide as
// the widest row.
func BlockRange(sheet string, startRow int, rows [][]string) string {
	width := 1
	for _, r := range rows {
		width = max(width, len(r))
	}
	height := max(len(rows), 1)
	return fmt.Sprintf("%s!A%d:%s%d", QuoteSheet(sheet), startRow, ColumnName(width), startRow+height-1)
}

// ReportBlock prefixes the report rows with a single title row.
func ReportBlock(title string, rows [][]string) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, []string{title})
	return append(out, rows...)
}
