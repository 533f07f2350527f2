package sheets

import "testing"

func TestColumnName(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, ""},
		{1, "A"},
		{4, "D"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{703, "AAA"},
	}
	for _, tt := range tests {
		if got := ColumnName(tt.in); got != tt.want {
			t.Errorf("ColumnName(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBlockRange(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		start int
		rows  [][]string
		want  string
	}{
		{"single cell", "Reports", 1, [][]string{{"x"}}, "'Reports'!A1:A1"},
		{"widest row wins", "Reports", 3, [][]string{{"t"}, {"a", "b", "c", "d"}}, "'Reports'!A3:D4"},
		{"empty block", "Reports", 7, nil, "'Reports'!A7:A7"},
		{"quote escaping", "Bob's", 1, [][]string{{"x", "y"}}, "'Bob''s'!A1:B1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BlockRange(tt.sheet, tt.start, tt.rows); got != tt.want {
				t.Errorf("BlockRange = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReportBlock(t *testing.T) {
	block := ReportBlock("Title", [][]string{{"a"}, {"b"}})
	if len(block) != 3 || block[0][0] != "Title" || block[2][0] != "b" {
		t.Fatalf("ReportBlock = %v", block)
	}
}
