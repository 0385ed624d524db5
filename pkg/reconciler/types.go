package reconciler

// Record is one parsed ledger row: column name to raw cell value.
type Record map[string]any

type Side string

const (
	SideGST   Side = "gst"
	SideTally Side = "tally"
)

// FeatureTuple holds the normalized values of every feature of one record, in
// mapping order.
type FeatureTuple []string

type Discrepancy struct {
	Feature     int    `json:"feature" bson:"feature"`
	GSTColumn   string `json:"gst_column" bson:"gst_column"`
	TallyColumn string `json:"tally_column" bson:"tally_column"`
	GSTValue    string `json:"gst_value" bson:"gst_value"`
	TallyValue  string `json:"tally_value" bson:"tally_value"`
}

// MatchPair is a GST row and a Tally row that share the same key. Rows are 0-based
// positions in the slices passed to Reconcile.
type MatchPair struct {
	GSTRow        int           `json:"gst_row" bson:"gst_row"`
	TallyRow      int           `json:"tally_row" bson:"tally_row"`
	GST           FeatureTuple  `json:"gst" bson:"gst"`
	Tally         FeatureTuple  `json:"tally" bson:"tally"`
	Discrepancies []Discrepancy `json:"discrepancies,omitempty" bson:"discrepancies,omitempty"`
}

type Unmatched struct {
	Row      int          `json:"row" bson:"row"`
	Features FeatureTuple `json:"features" bson:"features"`
}

type Result struct {
	Mapping          Mapping `json:"mapping" bson:"mapping"`
	KeyFeatures      []int   `json:"key_features" bson:"key_features"`
	PartialThreshold int     `json:"partial_threshold" bson:"partial_threshold"`
	TotalGST         int     `json:"total_gst_records" bson:"total_gst_records"`
	TotalTally       int     `json:"total_tally_records" bson:"total_tally_records"`

	ExactMatches           []MatchPair `json:"exact_matches" bson:"exact_matches"`
	PartialMatches         []MatchPair `json:"partial_matches" bson:"partial_matches"`
	HighDiscrepancyMatches []MatchPair `json:"high_discrepancy_matches" bson:"high_discrepancy_matches"`
	GSTMismatches          []Unmatched `json:"gst_mismatches" bson:"gst_mismatches"`
	TallyMismatches        []Unmatched `json:"tally_mismatches" bson:"tally_mismatches"`
}

type Summary struct {
	TotalGSTRecords        int `json:"total_gst_records" bson:"total_gst_records"`
	TotalTallyRecords      int `json:"total_tally_records" bson:"total_tally_records"`
	ExactMatches           int `json:"exact_matches" bson:"exact_matches"`
	PartialMatches         int `json:"partial_matches" bson:"partial_matches"`
	HighDiscrepancyMatches int `json:"high_discrepancy_matches" bson:"high_discrepancy_matches"`
	TallyMismatches        int `json:"tally_mismatches" bson:"tally_mismatches"`
	GSTMismatches          int `json:"gst_mismatches" bson:"gst_mismatches"`
}

func (r *Result) Summary() Summary {
	return Summary{
		TotalGSTRecords:        r.TotalGST,
		TotalTallyRecords:      r.TotalTally,
		ExactMatches:           len(r.ExactMatches),
		PartialMatches:         len(r.PartialMatches),
		HighDiscrepancyMatches: len(r.HighDiscrepancyMatches),
		TallyMismatches:        len(r.TallyMismatches),
		GSTMismatches:          len(r.GSTMismatches),
	}
}
