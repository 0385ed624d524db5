package reconciler

import (
	"strconv"
	"strings"

	"gstrecon/pkg/sanitizer"
)

// Project turns records into feature tuples through the valid pairs of mapping.
// A column missing from a record projects to the blank value.
func Project(records []Record, mapping Mapping, side Side) []FeatureTuple {
	columns := mapping.Valid().Columns(side)
	tuples := make([]FeatureTuple, len(records))
	for i, record := range records {
		tuple := make(FeatureTuple, len(columns))
		for j, column := range columns {
			tuple[j] = sanitizer.NormalizeCell(record[column])
		}
		tuples[i] = tuple
	}
	return tuples
}

// joinKey length-prefixes every key value so distinct tuples never collide,
// whatever separators the values contain.
func joinKey(tuple FeatureTuple, key []int) string {
	var b strings.Builder
	for _, idx := range key {
		v := tuple[idx]
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

func compare(gst, tally FeatureTuple, mapping Mapping) []Discrepancy {
	var diffs []Discrepancy
	for i := range gst {
		if gst[i] == tally[i] {
			continue
		}
		diffs = append(diffs, Discrepancy{
			Feature:     i + 1,
			GSTColumn:   mapping[i].GST,
			TallyColumn: mapping[i].Tally,
			GSTValue:    gst[i],
			TallyValue:  tally[i],
		})
	}
	return diffs
}
