package checksum

import (
	"errors"
	"strings"
	"testing"
)

func TestReader(t *testing.T) {
	a, err := Reader(strings.NewReader("GSTIN,Invoice\n29ABC,INV-1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Reader(strings.NewReader("GSTIN,Invoice\n29ABC,INV-1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("expected equal checksums, got %s and %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %d", len(a))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestReader_Error(t *testing.T) {
	if _, err := Reader(failingReader{}); err == nil {
		t.Error("expected error from failing reader")
	}
}

func TestUpload(t *testing.T) {
	file := func(name, content string) File { return File{Name: name, Content: []byte(content)} }

	tests := []struct {
		name         string
		gstA, tallyA File
		gstB, tallyB File
		wantEqual    bool
	}{
		{"same files", file("gst.csv", "a,b"), file("tally.csv", "c,d"), file("gst.csv", "a,b"), file("tally.csv", "c,d"), true},
		{"different tally", file("gst.csv", "a,b"), file("tally.csv", "c,d"), file("gst.csv", "a,b"), file("tally.csv", "c,e"), false},
		{"bytes shifted between files", file("g", "ab"), file("t", "c"), file("g", "a"), file("t", "bc"), false},
		{"files swapped", file("g", "x"), file("t", "y"), file("g", "y"), file("t", "x"), false},
		{"renamed gst file", file("gst-apr.csv", "a,b"), file("tally.csv", "c,d"), file("gst-may.csv", "a,b"), file("tally.csv", "c,d"), false},
		{"renamed tally file", file("gst.csv", "a,b"), file("tally.xlsx", "c,d"), file("gst.csv", "a,b"), file("books.xlsx", "c,d"), false},
		{"name bytes moved into content", file("gst.csv", "a"), file("t", "b"), file("gst.cs", "va"), file("t", "b"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Upload(tt.gstA, tt.tallyA)
			b := Upload(tt.gstB, tt.tallyB)
			if (a == b) != tt.wantEqual {
				t.Errorf("expected equal=%v, got %s vs %s", tt.wantEqual, a, b)
			}
		})
	}
}
