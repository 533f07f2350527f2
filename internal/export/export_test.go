package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"spendwise/internal/core"
)

func expenses(n int) []core.Expense {
	out := make([]core.Expense, n)
	for i := range out {
		out[i] = core.Expense{
			ID:       int64(i + 1),
			Amount:   core.Money{Cents: int64(100 * (i + 1))},
			Category: "Food",
			Date:     core.NewDate(2025, 1, 1+i%28),
		}
	}
	return out
}

func TestRenderCSV(t *testing.T) {
	exps := []core.Expense{
		{ID: 1, Amount: core.Money{Cents: 10000}, Category: "Food", Date: core.NewDate(2025, 1, 5)},
		{ID: 2, Amount: core.Money{Cents: 5000}, Category: "Food", Date: core.NewDate(2025, 1, 6)},
	}
	var buf bytes.Buffer
	if err := RenderCSV(&buf, nil, exps); err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"Type,Category,Amount,Date",
		"Expense,Food,100.00,2025-01-05",
		"Expense,Food,50.00,2025-01-06",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderCSVIncomesFirstAndQuoted(t *testing.T) {
	incomes := []core.Income{{ID: 1, Amount: core.Money{Cents: 250050}, Source: "Salary, ACME", Date: core.NewDate(2025, 2, 1)}}
	exps := []core.Expense{{ID: 1, Amount: core.Money{Cents: 999}, Category: "Books", Date: core.NewDate(2025, 1, 15)}}
	var buf bytes.Buffer
	if err := RenderCSV(&buf, incomes, exps); err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	want := "Type,Category,Amount,Date\nIncome,\"Salary, ACME\",2500.50,2025-02-01\nExpense,Books,9.99,2025-01-15\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		pages    int
		lastPage int
	}{
		{"no expenses", 0, 1, 2},
		{"fills first page", 44, 1, 46},
		{"spills to second page", 45, 2, 1},
		{"fills second page", 44 + 47, 2, 47},
		{"third page", 44 + 47 + 1, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := paginate("alice", expenses(tt.count))
			if len(pages) != tt.pages {
				t.Fatalf("pages = %d, want %d", len(pages), tt.pages)
			}
			if got := len(pages[len(pages)-1]); got != tt.lastPage {
				t.Errorf("lines on last page = %d, want %d", got, tt.lastPage)
			}
			for _, page := range pages {
				for _, line := range page {
					if line.Y < cursorBottom || line.Y > cursorTop {
						t.Fatalf("line %q at y=%v outside margins", line.Text, line.Y)
					}
				}
			}
		})
	}
}

func TestPaginateHeader(t *testing.T) {
	pages := paginate("alice", expenses(1))
	first := pages[0]
	if first[0].Text != "SpendWise Report - alice" || first[0].Style != styleTitle || first[0].Y != 750 {
		t.Errorf("title line = %+v", first[0])
	}
	if first[1].Text != "EXPENSES:" || first[1].Y != 720 {
		t.Errorf("header line = %+v", first[1])
	}
	if first[2].Text != "2025-01-01 | Food | Rs.1.00" || first[2].Y != 700 {
		t.Errorf("expense line = %+v", first[2])
	}
}

func TestRenderPDFEmpty(t *testing.T) {
	pdf, err := buildPDF("alice", nil, false)
	if err != nil {
		t.Fatalf("buildPDF: %v", err)
	}
	if pdf.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", pdf.PageCount())
	}

	var buf bytes.Buffer
	if err := renderPDF(&buf, "alice", nil, false); err != nil {
		t.Fatalf("renderPDF: %v", err)
	}
	body := buf.Bytes()
	if !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Fatalf("missing PDF signature")
	}
	for _, text := range []string{"(SpendWise Report - alice) Tj", "(EXPENSES:) Tj"} {
		if !bytes.Contains(body, []byte(text)) {
			t.Errorf("document missing %q", text)
		}
	}
}

func TestRenderPDFOutsideCP1252IsLossy(t *testing.T) {
	exp := []core.Expense{{ID: 1, Amount: core.Money{Cents: 250}, Category: "食品 €", Date: core.NewDate(2025, 1, 2)}}

	var buf bytes.Buffer
	if err := renderPDF(&buf, "用户 Zoë", exp, false); err != nil {
		t.Fatalf("renderPDF: %v", err)
	}
	body := buf.Bytes()
	for _, text := range []string{
		"(SpendWise Report - .. Zo\xeb) Tj",
		"(2025-01-02 | .. \x80 | Rs.2.50) Tj",
	} {
		if !bytes.Contains(body, []byte(text)) {
			t.Errorf("document missing %q", text)
		}
	}
}

func TestRenderPDFManyPages(t *testing.T) {
	pdf, err := buildPDF("bob", expenses(500), true)
	if err != nil {
		t.Fatalf("buildPDF: %v", err)
	}
	if want := len(paginate("bob", expenses(500))); pdf.PageCount() != want {
		t.Fatalf("PageCount = %d, want %d", pdf.PageCount(), want)
	}
}

func TestRender(t *testing.T) {
	doc, err := Render(FormatCSV, "alice", nil, expenses(2))
	if err != nil {
		t.Fatalf("Render csv: %v", err)
	}
	if doc.ContentType != "text/csv" || doc.Filename != "report.csv" || len(doc.Body) == 0 {
		t.Errorf("unexpected csv doc %+v", doc)
	}

	doc, err = Render(FormatPDF, "alice", nil, expenses(2))
	if err != nil {
		t.Fatalf("Render pdf: %v", err)
	}
	if doc.ContentType != "application/pdf" || doc.Filename != "report.pdf" {
		t.Errorf("unexpected pdf doc %+v", doc)
	}
}

func TestRenderFailureReturnsNoOutput(t *testing.T) {
	bad := []core.Expense{{ID: 9, Amount: core.Money{Cents: 1}, Category: "x"}} // zero date
	for _, f := range []Format{FormatCSV, FormatPDF} {
		doc, err := Render(f, "alice", nil, bad)
		if !errors.Is(err, ErrExportFailed) {
			t.Errorf("%s: err = %v, want ErrExportFailed", f, err)
		}
		if doc.Body != nil {
			t.Errorf("%s: partial body returned", f)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("PDF"); err != nil || f != FormatPDF {
		t.Fatalf("ParseFormat(PDF) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xlsx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
