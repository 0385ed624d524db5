package reconciler

import "strings"

// ColumnPair maps one GST column to the Tally column holding the same attribute.
type ColumnPair struct {
	GST   string `json:"gst" bson:"gst"`
	Tally string `json:"tally" bson:"tally"`
}

func (p ColumnPair) IsValid() bool {
	return strings.TrimSpace(p.GST) != "" && strings.TrimSpace(p.Tally) != ""
}

// Mapping is position-significant: pair i defines feature i+1.
type Mapping []ColumnPair

// NewMapping zips the two parallel column lists. A list shorter than the other
// leaves the missing side empty, which makes that pair invalid.
func NewMapping(gstColumns, tallyColumns []string) Mapping {
	n := max(len(gstColumns), len(tallyColumns))
	mapping := make(Mapping, n)
	for i := range n {
		if i < len(gstColumns) {
			mapping[i].GST = gstColumns[i]
		}
		if i < len(tallyColumns) {
			mapping[i].Tally = tallyColumns[i]
		}
	}
	return mapping
}

// Valid drops pairs with an empty side, keeping order.
func (m Mapping) Valid() Mapping {
	valid := make(Mapping, 0, len(m))
	for _, pair := range m {
		if pair.IsValid() {
			valid = append(valid, pair)
		}
	}
	return valid
}

func (m Mapping) Columns(side Side) []string {
	columns := make([]string, len(m))
	for i, pair := range m {
		if side == SideTally {
			columns[i] = pair.Tally
		} else {
			columns[i] = pair.GST
		}
	}
	return columns
}
