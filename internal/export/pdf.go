package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"spendwise/internal/core"
)

// Page geometry in points, measured from the bottom edge of a Letter page.
const (
	pageHeight   = 792.0
	marginLeft   = 50.0
	cursorTop    = 750.0
	cursorBottom = 50.0
	titleGap     = 30.0
	headerGap    = 20.0
	lineGap      = 15.0
)

type lineStyle int

const (
	styleTitle lineStyle = iota
	styleBody
)

type placedLine struct {
	Y     float64
	Text  string
	Style lineStyle
}

// paginate lays out the report. Each inner slice is one page. A page is
// only opened when there is a line to put on it.
func paginate(username string, expenses []core.Expense) [][]placedLine {
	pages := [][]placedLine{{
		{Y: cursorTop, Text: "SpendWise Report - " + username, Style: styleTitle},
		{Y: cursorTop - titleGap, Text: "EXPENSES:", Style: styleBody},
	}}
	y := cursorTop - titleGap - headerGap
	pendingBreak := false
	for _, e := range expenses {
		if pendingBreak {
			pages = append(pages, nil)
			y = cursorTop
			pendingBreak = false
		}
		last := len(pages) - 1
		pages[last] = append(pages[last], placedLine{Y: y, Text: expenseLine(e), Style: styleBody})
		y -= lineGap
		if y < cursorBottom {
			pendingBreak = true
		}
	}
	return pages
}

func expenseLine(e core.Expense) string {
	return fmt.Sprintf("%s | %s | Rs.%s", e.Date, e.Category, e.Amount)
}

// RenderPDF writes a Letter-sized report listing every expense.
func RenderPDF(w io.Writer, username string, expenses []core.Expense) error {
	return renderPDF(w, username, expenses, true)
}

func renderPDF(w io.Writer, username string, expenses []core.Expense, compress bool) error {
	pdf, err := buildPDF(username, expenses, compress)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func buildPDF(username string, expenses []core.Expense, compress bool) (*fpdf.Fpdf, error) {
	for _, e := range expenses {
		if err := e.Date.Validate(); err != nil {
			return nil, fmt.Errorf("expense %d: %w", e.ID, err)
		}
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("SpendWise Report", false)
	pdf.SetCreator("spendwise", false)
	// The core Helvetica font only covers cp1252. Runes outside it are
	// written as '.', so names in other scripts come out lossy.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range paginate(username, expenses) {
		pdf.AddPage()
		for _, line := range page {
			switch line.Style {
			case styleTitle:
				pdf.SetFont("Helvetica", "B", 16)
			default:
				pdf.SetFont("Helvetica", "", 10)
			}
			pdf.Text(marginLeft, pageHeight-line.Y, tr(line.Text))
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	return pdf, nil
}
