package sanitizer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Zero is the canonical value of a blank cell.
const Zero = "0"

var reDateLike = regexp.MustCompile(`^\d{1,4}[-/]\d{1,2}[-/]\d{1,4}$`)

// NormalizeCell maps a raw cell to the form used for comparison and storage.
func NormalizeCell(value any) string {
	s, ok := cellText(value)
	if !ok {
		return Zero
	}

	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return Zero
	}

	if IsDateLike(s) {
		s = strings.ReplaceAll(s, "-", "/")
	}

	return s
}

// IsDateLike reports whether s looks like D-M-Y or Y/M/D with either separator.
// No calendar validation happens.
func IsDateLike(s string) bool {
	return reDateLike.MatchString(s)
}

func cellText(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
