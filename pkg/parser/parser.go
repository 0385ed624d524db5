package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gstrecon/pkg/reconciler"
	"gstrecon/pkg/sanitizer"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DefaultPreviewRows is how many records an upload preview shows.
const DefaultPreviewRows = 5

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoHeader          = errors.New("file has no header row")
)

// ParseError wraps a failure to read a file of a supported format.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s file: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Dataset struct {
	Headers []string            `json:"headers"`
	Records []reconciler.Record `json:"records"`
}

// DetectFormat picks the format from the file extension. Legacy .xls workbooks are
// not supported.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func ParseFile(filename string, r io.Reader) (*Dataset, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	return Parse(format, r)
}

func Parse(format Format, r io.Reader) (*Dataset, error) {
	var (
		rows [][]string
		err  error
	)

	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}

	dataset, err := buildDataset(rows)
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	return dataset, nil
}

// SkipToHeaderRow drops the records before the 1-based headerRow. A headerRow past
// the end yields no records.
func SkipToHeaderRow(records []reconciler.Record, headerRow int) []reconciler.Record {
	skip := sanitizer.NormalizeHeaderRow(headerRow) - 1
	if skip >= len(records) {
		return []reconciler.Record{}
	}
	return records[skip:]
}

func (d *Dataset) Preview(n int) []reconciler.Record {
	if n > len(d.Records) {
		n = len(d.Records)
	}
	if n < 0 {
		n = 0
	}
	return d.Records[:n]
}

func buildDataset(rows [][]string) (*Dataset, error) {
	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	headers := headerNames(widen(rows[0], dataWidth(rows)))
	records := make([]reconciler.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(reconciler.Record, len(headers))
		for i, header := range headers {
			var cell any
			if i < len(row) {
				cell = row[i]
			}
			record[header] = sanitizer.NormalizeCell(cell)
		}
		records = append(records, record)
	}

	return &Dataset{Headers: headers, Records: records}, nil
}

// dataWidth is the widest row, ignoring trailing blank cells, so a trailing
// comma does not invent a column.
func dataWidth(rows [][]string) int {
	width := 0
	for _, row := range rows {
		for i := len(row) - 1; i >= width; i-- {
			if strings.TrimSpace(row[i]) != "" {
				width = i + 1
				break
			}
		}
	}
	return width
}

// widen pads the header row with blank cells up to width. Data past the
// header's last cell is kept under __EMPTY names instead of being dropped.
func widen(header []string, width int) []string {
	if len(header) >= width {
		return header
	}
	padded := make([]string, width)
	copy(padded, header)
	return padded
}

// headerNames names blank header cells __EMPTY, __EMPTY_1, ... and suffixes
// repeated names with _1, _2, ... so every column has a distinct key.
func headerNames(row []string) []string {
	headers := make([]string, len(row))
	used := make(map[string]bool, len(row))
	suffix := make(map[string]int)
	for i, cell := range row {
		base := sanitizer.NormalizeColumnName(cell)
		if base == "" {
			base = "__EMPTY"
		}
		name := base
		for used[name] {
			suffix[base]++
			name = base + "_" + strconv.Itoa(suffix[base])
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

func dropBlankRows(rows [][]string) [][]string {
	kept := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}
