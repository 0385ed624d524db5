package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeColumnNames(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "positions preserved with blanks",
			input: []string{" GSTIN ", "", "Invoice  No"},
			want:  []string{"GSTIN", "", "Invoice No"},
		},
		{
			name:  "duplicates kept",
			input: []string{"Amount", "Amount"},
			want:  []string{"Amount", "Amount"},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeColumnNames(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeColumnNames(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestUniqueColumns(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "remove duplicates after normalization",
			input: []string{"Invoice No", "Invoice  No ", "GSTIN"},
			want:  []string{"Invoice No", "GSTIN"},
		},
		{
			name:  "filter empty strings",
			input: []string{"", "  ", "Date"},
			want:  []string{"Date"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueColumns(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UniqueColumns(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeThreshold(t *testing.T) {
	tests := []struct {
		input, want int
	}{
		{0, 1},
		{3, 3},
		{500, 100},
	}

	for _, tt := range tests {
		if got := NormalizeThreshold(tt.input, 1, 100); got != tt.want {
			t.Errorf("NormalizeThreshold(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeHeaderRow(t *testing.T) {
	if got := NormalizeHeaderRow(0); got != 1 {
		t.Errorf("NormalizeHeaderRow(0) = %d, want 1", got)
	}
	if got := NormalizeHeaderRow(-3); got != 1 {
		t.Errorf("NormalizeHeaderRow(-3) = %d, want 1", got)
	}
	if got := NormalizeHeaderRow(4); got != 4 {
		t.Errorf("NormalizeHeaderRow(4) = %d, want 4", got)
	}
}
