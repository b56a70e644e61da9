package parsers

import (
	"strings"
	"testing"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want rune
	}{
		{
			name: "semicolon separated",
			text: "Tanggal;Keterangan;Debet;Kredit;Saldo\n01/03;Transfer;;500000;1500000",
			want: ';',
		},
		{
			name: "comma separated",
			text: "Date,Description,Debit,Credit,Balance\n01/03,Transfer,,500000,1500000",
			want: ',',
		},
		{
			name: "tie goes to semicolon",
			text: "a;b\nc,d",
			want: ';',
		},
		{
			name: "empty input",
			text: "",
			want: ';',
		},
		{
			name: "only first five lines counted",
			text: "a;a\nb;b\nc;c\nd;d\ne;e\n" + strings.Repeat("x,x,x,x,x,x\n", 20),
			want: ';',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDelimiter(tt.text); got != tt.want {
				t.Errorf("DetectDelimiter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		delimiter rune
		want      []string
	}{
		{
			name:      "plain fields",
			line:      "a;b;c",
			delimiter: ';',
			want:      []string{"a", "b", "c"},
		},
		{
			name:      "delimiter inside quotes",
			line:      `"123;456";789`,
			delimiter: ';',
			want:      []string{"123;456", "789"},
		},
		{
			name:      "quote adjacent to delimiter",
			line:      `a;"b;c";d`,
			delimiter: ';',
			want:      []string{"a", "b;c", "d"},
		},
		{
			name:      "trailing empty field emitted",
			line:      "a;b;",
			delimiter: ';',
			want:      []string{"a", "b", ""},
		},
		{
			name:      "fields are trimmed",
			line:      " a ; b ;c ",
			delimiter: ';',
			want:      []string{"a", "b", "c"},
		},
		{
			name:      "single field no delimiter",
			line:      "lonely",
			delimiter: ';',
			want:      []string{"lonely"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLine(tt.line, tt.delimiter)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitLine() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitRows(t *testing.T) {
	text := "a;b\r\n\"multi\nline\";c\n\n  \nd;e"
	rows := SplitRows(text, ';')

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d: %v", len(rows), rows)
	}
	if rows[1][0] != "multi\nline" {
		t.Errorf("Expected quoted newline preserved, got %q", rows[1][0])
	}
	if rows[2][0] != "d" || rows[2][1] != "e" {
		t.Errorf("Expected final row [d e], got %v", rows[2])
	}
}

func TestLocateHeader(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want int
	}{
		{
			name: "indonesian header",
			rows: [][]string{
				{"Rekening", "1234567890"},
				{"Tanggal", "Keterangan", "Debet", "Kredit", "Saldo"},
			},
			want: 1,
		},
		{
			name: "english header",
			rows: [][]string{
				{"Date", "Description", "Amount", "Balance"},
			},
			want: 0,
		},
		{
			name: "date keyword alone is not a header",
			rows: [][]string{
				{"Tanggal Cetak", "01/03/2024"},
				{"Tgl", "Mutasi", "Saldo"},
			},
			want: 1,
		},
		{
			name: "no header within window",
			rows: func() [][]string {
				var rows [][]string
				for i := 0; i < 25; i++ {
					rows = append(rows, []string{"x", "y"})
				}
				rows = append(rows, []string{"Tanggal", "Keterangan"})
				return rows
			}(),
			want: HeaderNotFound,
		},
		{
			name: "empty input",
			rows: nil,
			want: HeaderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocateHeader(tt.rows); got != tt.want {
				t.Errorf("LocateHeader() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMapColumns(t *testing.T) {
	t.Run("split debit credit layout", func(t *testing.T) {
		cm := MapColumns([]string{"Tanggal", "Keterangan", "Cbg", "Debet", "Kredit", "Saldo"})
		if cm.Date != 0 || cm.Description != 1 || cm.Branch != 2 ||
			cm.Debit != 3 || cm.Credit != 4 || cm.Balance != 5 {
			t.Errorf("Unexpected mapping: %+v", cm)
		}
		if cm.Amount != -1 {
			t.Errorf("Expected no combined amount column, got %d", cm.Amount)
		}
		if !cm.HasSplitAmounts() {
			t.Error("Expected split amounts layout")
		}
	})

	t.Run("combined amount layout", func(t *testing.T) {
		cm := MapColumns([]string{"Tanggal", "Keterangan", "Mutasi", "Saldo"})
		if cm.Amount != 2 {
			t.Errorf("Expected combined amount at 2, got %d", cm.Amount)
		}
		if cm.HasSplitAmounts() {
			t.Error("Did not expect split amounts layout")
		}
	})

	t.Run("mutasi debet is debit not combined amount", func(t *testing.T) {
		cm := MapColumns([]string{"Tanggal", "Keterangan", "Mutasi Debet", "Mutasi Kredit", "Saldo"})
		if cm.Amount != -1 {
			t.Errorf("Expected no combined amount column, got %d", cm.Amount)
		}
		if cm.Debit != 2 || cm.Credit != 3 {
			t.Errorf("Expected debit=2 credit=3, got %+v", cm)
		}
	})

	t.Run("last match wins", func(t *testing.T) {
		cm := MapColumns([]string{"Tanggal", "Tanggal Valuta", "Keterangan"})
		if cm.Date != 1 {
			t.Errorf("Expected later date column to win, got %d", cm.Date)
		}
	})

	t.Run("missing date column", func(t *testing.T) {
		cm := MapColumns([]string{"Keterangan", "Debet", "Kredit"})
		if cm.Date != -1 {
			t.Errorf("Expected date -1, got %d", cm.Date)
		}
	})
}

func TestParseLocaleAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.234.567,89", "1234567.89"},
		{"1,234,567.89", "1234567.89"},
		{"1,234.567,89", "1234567.89"},
		{"1,234.567.89", "1234567.89"},
		{"1234,56", "1234.56"},
		{"", "0"},
		{"abc", "0"},
		{"Rp 500.000,00", "500000"},
		{"500000", "500000"},
		{"1.234", "1.234"}, // ambiguous; last-separator-wins is preserved
		{"250000 DB", "250000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLocaleAmount(tt.input)
			if got.String() != tt.want {
				t.Errorf("ParseLocaleAmount(%q) = %s, want %s", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestParseLocaleAmount_Idempotent(t *testing.T) {
	inputs := []string{"1.234.567,89", "1,234,567.89", "1234,56"}
	for _, input := range inputs {
		first := ParseLocaleAmount(input)
		second := ParseLocaleAmount(first.String())
		if !first.Equal(second) {
			t.Errorf("Parser not idempotent for %q: %s != %s", input, first, second)
		}
	}
}
