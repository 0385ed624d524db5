package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gstrecon/pkg/reconciler"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts json, csv and xlsx in any case. An empty string means json.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Document is what every format renders: the result plus its counts.
type Document struct {
	ID      string             `json:"id,omitempty"`
	Summary reconciler.Summary `json:"summary"`
	Result  *reconciler.Result `json:"result"`
}

func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatCSV:
		return WriteCSV(w, doc)
	case FormatXLSX:
		return WriteXLSX(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func WriteJSON(w io.Writer, doc Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

type table struct {
	name   string
	header []string
	rows   [][]string
}

const (
	bucketExact           = "exact_match"
	bucketPartial         = "partial_match"
	bucketHighDiscrepancy = "high_discrepancy"
	bucketGSTMismatch     = "gst_mismatch"
	bucketTallyMismatch   = "tally_mismatch"
)

// featureHeader names the per-feature columns after both mapped columns,
// e.g. "GST:Invoice No", "Tally:Voucher No".
func featureHeader(mapping reconciler.Mapping) []string {
	header := make([]string, 0, 2*len(mapping))
	for _, pair := range mapping {
		header = append(header, "GST:"+pair.GST, "Tally:"+pair.Tally)
	}
	return header
}

func pairRow(p reconciler.MatchPair) []string {
	row := []string{strconv.Itoa(p.GSTRow), strconv.Itoa(p.TallyRow)}
	for i := range p.GST {
		row = append(row, p.GST[i], p.Tally[i])
	}
	features := make([]string, len(p.Discrepancies))
	for i, d := range p.Discrepancies {
		features[i] = strconv.Itoa(d.Feature)
	}
	return append(row, strings.Join(features, ";"))
}

func unmatchedRow(u reconciler.Unmatched, side reconciler.Side) []string {
	row := []string{"", ""}
	if side == reconciler.SideGST {
		row[0] = strconv.Itoa(u.Row)
	} else {
		row[1] = strconv.Itoa(u.Row)
	}
	for _, v := range u.Features {
		if side == reconciler.SideGST {
			row = append(row, v, "")
		} else {
			row = append(row, "", v)
		}
	}
	return append(row, "")
}

func buildTables(result *reconciler.Result) []table {
	header := append([]string{"gst_row", "tally_row"}, featureHeader(result.Mapping)...)
	header = append(header, "differing_features")

	pairs := func(name string, ps []reconciler.MatchPair) table {
		t := table{name: name, header: header, rows: make([][]string, 0, len(ps))}
		for _, p := range ps {
			t.rows = append(t.rows, pairRow(p))
		}
		return t
	}
	unmatched := func(name string, us []reconciler.Unmatched, side reconciler.Side) table {
		t := table{name: name, header: header, rows: make([][]string, 0, len(us))}
		for _, u := range us {
			t.rows = append(t.rows, unmatchedRow(u, side))
		}
		return t
	}

	return []table{
		pairs(bucketExact, result.ExactMatches),
		pairs(bucketPartial, result.PartialMatches),
		pairs(bucketHighDiscrepancy, result.HighDiscrepancyMatches),
		unmatched(bucketGSTMismatch, result.GSTMismatches, reconciler.SideGST),
		unmatched(bucketTallyMismatch, result.TallyMismatches, reconciler.SideTally),
	}
}

func summaryRows(s reconciler.Summary) [][]string {
	return [][]string{
		{"total_gst_records", strconv.Itoa(s.TotalGSTRecords)},
		{"total_tally_records", strconv.Itoa(s.TotalTallyRecords)},
		{"exact_matches", strconv.Itoa(s.ExactMatches)},
		{"partial_matches", strconv.Itoa(s.PartialMatches)},
		{"high_discrepancy_matches", strconv.Itoa(s.HighDiscrepancyMatches)},
		{"tally_mismatches", strconv.Itoa(s.TallyMismatches)},
		{"gst_mismatches", strconv.Itoa(s.GSTMismatches)},
	}
}
