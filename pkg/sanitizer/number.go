package sanitizer

func NormalizeThreshold(threshold, min, max int) int {
	if threshold < min {
		return min
	}
	if threshold > max {
		return max
	}
	return threshold
}

// NormalizeHeaderRow maps a 1-based header row to a usable value; anything below 1
// means "the first row".
func NormalizeHeaderRow(row int) int {
	return max(1, row)
}
