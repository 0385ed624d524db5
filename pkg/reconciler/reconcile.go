package reconciler

import "context"

// cancelCheckInterval is how many GST rows are probed between context checks.
const cancelCheckInterval = 512

// Reconcile classifies gst against tally. See ReconcileContext.
func Reconcile(gst, tally []Record, mapping Mapping, opts ...Option) (*Result, error) {
	return ReconcileContext(context.Background(), gst, tally, mapping, opts...)
}

// ReconcileContext classifies every GST and Tally record into exactly one of the
// match buckets or the mismatch lists. Pairs are emitted in GST input order, then
// Tally input order among candidates sharing a key.
//
// It fails with ErrNoValidMapping when mapping has no pair with both columns set,
// with a *ConfigurationError for invalid options, and with ctx.Err() when ctx is
// done before the join finishes.
func ReconcileContext(ctx context.Context, gst, tally []Record, mapping Mapping, opts ...Option) (*Result, error) {
	valid := mapping.Valid()
	if len(valid) == 0 {
		return nil, ErrNoValidMapping
	}

	o := newOptions(opts)
	key, err := o.resolve(len(valid))
	if err != nil {
		return nil, err
	}

	gstTuples := Project(gst, valid, SideGST)
	tallyTuples := Project(tally, valid, SideTally)

	tallyKeys := make([]string, len(tallyTuples))
	index := make(map[string][]int, len(tallyTuples))
	for i, tuple := range tallyTuples {
		k := joinKey(tuple, key)
		tallyKeys[i] = k
		index[k] = append(index[k], i)
	}

	result := &Result{
		Mapping:                valid,
		KeyFeatures:            key,
		PartialThreshold:       o.partialThreshold,
		TotalGST:               len(gst),
		TotalTally:             len(tally),
		ExactMatches:           []MatchPair{},
		PartialMatches:         []MatchPair{},
		HighDiscrepancyMatches: []MatchPair{},
		GSTMismatches:          []Unmatched{},
		TallyMismatches:        []Unmatched{},
	}

	joined := make(map[string]struct{}, len(index))
	for g, gstTuple := range gstTuples {
		if g%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		k := joinKey(gstTuple, key)
		candidates, ok := index[k]
		if !ok {
			result.GSTMismatches = append(result.GSTMismatches, Unmatched{Row: g, Features: gstTuple})
			continue
		}
		joined[k] = struct{}{}

		for _, t := range candidates {
			pair := MatchPair{GSTRow: g, TallyRow: t, GST: gstTuple, Tally: tallyTuples[t]}
			diffs := compare(gstTuple, tallyTuples[t], valid)
			switch {
			case len(diffs) == 0:
				result.ExactMatches = append(result.ExactMatches, pair)
			case len(diffs) < o.partialThreshold:
				pair.Discrepancies = diffs
				result.PartialMatches = append(result.PartialMatches, pair)
			default:
				pair.Discrepancies = diffs
				result.HighDiscrepancyMatches = append(result.HighDiscrepancyMatches, pair)
			}
		}
	}

	for t, tallyTuple := range tallyTuples {
		if _, ok := joined[tallyKeys[t]]; !ok {
			result.TallyMismatches = append(result.TallyMismatches, Unmatched{Row: t, Features: tallyTuple})
		}
	}

	return result, nil
}
