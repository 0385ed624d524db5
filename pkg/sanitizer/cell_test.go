package sanitizer

import (
	"encoding/json"
	"testing"
)

func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: "0"},
		{name: "empty string", input: "", want: "0"},
		{name: "only whitespace", input: "   \t", want: "0"},
		{name: "lone dash", input: "-", want: "0"},
		{name: "padded dash", input: "  -  ", want: "0"},
		{name: "double dash kept", input: "--", want: "--"},
		{name: "negative number text kept", input: "-12.5", want: "-12.5"},
		{name: "trim text", input: "  27AAACR5055K1Z7 ", want: "27AAACR5055K1Z7"},
		{name: "dash date", input: "2024-01-05", want: "2024/01/05"},
		{name: "slash date unchanged", input: "2024/01/05", want: "2024/01/05"},
		{name: "day first dash date", input: "05-01-2024", want: "05/01/2024"},
		{name: "mixed separators", input: "05-01/2024", want: "05/01/2024"},
		{name: "short date", input: "5-1-24", want: "5/1/24"},
		{name: "date with time untouched", input: "2024-01-05 10:00", want: "2024-01-05 10:00"},
		{name: "too many year digits untouched", input: "20245-01-05", want: "20245-01-05"},
		{name: "invoice code with dashes untouched", input: "INV-2024-001", want: "INV-2024-001"},
		{name: "float", input: 100.0, want: "100"},
		{name: "fractional float", input: 99.95, want: "99.95"},
		{name: "int", input: 42, want: "42"},
		{name: "int64", input: int64(-7), want: "-7"},
		{name: "zero number", input: 0, want: "0"},
		{name: "json number", input: json.Number("1200.50"), want: "1200.50"},
		{name: "bool", input: true, want: "true"},
		{name: "bytes", input: []byte(" A "), want: "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCell(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeCell(%#v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCell_Idempotent(t *testing.T) {
	inputs := []any{
		nil, "", "-", " - ", "2024-01-05", "05/01/2024", " INV-1 ", 12.5, 0, "0", "abc", "1-2-3",
	}

	for _, in := range inputs {
		once := NormalizeCell(in)
		twice := NormalizeCell(once)
		if once != twice {
			t.Errorf("NormalizeCell not idempotent for %#v: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeCell_BlankEquivalence(t *testing.T) {
	if NormalizeCell(nil) != NormalizeCell("") || NormalizeCell("") != NormalizeCell("-") {
		t.Fatalf("nil, empty and dash must normalize identically")
	}
	if NormalizeCell(nil) != Zero {
		t.Errorf("blank cell = %q, want %q", NormalizeCell(nil), Zero)
	}
}

func TestIsDateLike(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2024-01-05", true},
		{"2024/1/5", true},
		{"1/1/1", true},
		{"2024-001-05", false},
		{"2024.01.05", false},
		{"", false},
		{"a-b-c", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsDateLike(tt.input); got != tt.want {
				t.Errorf("IsDateLike(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
