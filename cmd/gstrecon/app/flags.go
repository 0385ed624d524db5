package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gstrecon/pkg/model"
)

// mappingFlags are the options every reconciling command shares.
type mappingFlags struct {
	maps           []string
	gstHeaderRow   int
	tallyHeaderRow int
	threshold      int
	key            string
}

func (f *mappingFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVarP(&f.maps, "map", "m", nil, "column pair gstColumn=tallyColumn, in feature order (repeatable)")
	flags.IntVar(&f.gstHeaderRow, "gst-header-row", 1, "1-based row of the GST header; earlier records are skipped")
	flags.IntVar(&f.tallyHeaderRow, "tally-header-row", 1, "1-based row of the Tally header; earlier records are skipped")
	flags.IntVar(&f.threshold, "threshold", 0, "differing features below which a keyed pair is a partial match (0 = default)")
	flags.StringVar(&f.key, "key", "", "comma-separated 0-based feature indices forming the join key (default: first, or first two)")
}

func (f *mappingFlags) request(uploadID string) (*model.ReconcileRequest, error) {
	gstCols, tallyCols, err := parseMappings(f.maps)
	if err != nil {
		return nil, err
	}
	key, err := parseKey(f.key)
	if err != nil {
		return nil, err
	}

	req := &model.ReconcileRequest{
		UploadID:       uploadID,
		GSTColumns:     gstCols,
		TallyColumns:   tallyCols,
		GSTHeaderRow:   f.gstHeaderRow,
		TallyHeaderRow: f.tallyHeaderRow,
		KeyFeatures:    key,
	}
	if f.threshold > 0 {
		threshold := f.threshold
		req.PartialThreshold = &threshold
	}
	return req, nil
}

// parseMappings splits gst=tally pairs. Either side may be empty to keep a
// feature position without comparing it.
func parseMappings(pairs []string) ([]string, []string, error) {
	if len(pairs) == 0 {
		return nil, nil, fmt.Errorf("at least one --map gstColumn=tallyColumn is required")
	}

	gst := make([]string, 0, len(pairs))
	tally := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		g, t, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --map %q: expected gstColumn=tallyColumn", pair)
		}
		gst = append(gst, strings.TrimSpace(g))
		tally = append(tally, strings.TrimSpace(t))
	}
	return gst, tally, nil
}

func parseKey(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	key := make([]int, 0, len(parts))
	for _, part := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid --key index %q: expected a non-negative integer", part)
		}
		key = append(key, idx)
	}
	return key, nil
}
