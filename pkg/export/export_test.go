package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gstrecon/pkg/reconciler"
)

func sampleDocument(t *testing.T) Document {
	t.Helper()

	mapping := reconciler.NewMapping([]string{"inv", "amt"}, []string{"voucher", "value"})
	gst := []reconciler.Record{
		{"inv": "A", "amt": "100"},
		{"inv": "B", "amt": "50"},
		{"inv": "C", "amt": "10"},
	}
	tally := []reconciler.Record{
		{"voucher": "A", "value": "100"},
		{"voucher": "B", "value": "55"},
		{"voucher": "D", "value": "1"},
	}

	result, err := reconciler.Reconcile(gst, tally, mapping)
	require.NoError(t, err)
	return Document{ID: "r1", Summary: result.Summary(), Result: result}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSON},
		{in: "JSON", want: FormatJSON},
		{in: "csv", want: FormatCSV},
		{in: " xlsx ", want: FormatXLSX},
		{in: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleDocument(t)))

	var decoded struct {
		ID      string             `json:"id"`
		Summary reconciler.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "r1", decoded.ID)
	assert.Equal(t, 1, decoded.Summary.ExactMatches)
	assert.Equal(t, 1, decoded.Summary.PartialMatches)
	assert.Equal(t, 1, decoded.Summary.GSTMismatches)
	assert.Equal(t, 1, decoded.Summary.TallyMismatches)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleDocument(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"bucket", "gst_row", "tally_row", "GST:inv", "Tally:voucher", "GST:amt", "Tally:value", "differing_features"}, rows[0])
	assert.Equal(t, []string{"exact_match", "0", "0", "A", "A", "100", "100", ""}, rows[1])
	assert.Equal(t, []string{"partial_match", "1", "1", "B", "B", "50", "55", "2"}, rows[2])
	assert.Equal(t, []string{"gst_mismatch", "2", "", "C", "", "10", "", ""}, rows[3])
	assert.Equal(t, []string{"tally_mismatch", "", "2", "", "D", "", "1", ""}, rows[4])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleDocument(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Exact Matches", "Partial Matches", "High Discrepancy", "GST Mismatches", "Tally Mismatches"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"exact_matches", "1"}, summary[3])

	partial, err := f.GetRows("Partial Matches")
	require.NoError(t, err)
	require.Len(t, partial, 2)
	assert.Equal(t, "55", partial[1][5])
	assert.Equal(t, "2", partial[1][6])
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Format("pdf"), sampleDocument(t))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
