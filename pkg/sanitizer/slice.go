package sanitizer

// NormalizeColumnNames keeps position and length: mapping lists are parallel, so
// blanks and duplicates must stay where they are.
func NormalizeColumnNames(names []string) []string {
	if len(names) == 0 {
		return []string{}
	}

	result := make([]string, len(names))
	for i, name := range names {
		result[i] = NormalizeColumnName(name)
	}
	return result
}

func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)

		if normalized == "" {
			continue
		}

		if seen[normalized] {
			continue
		}

		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

// UniqueColumns returns the distinct non-empty column names in first-seen order.
func UniqueColumns(names []string) []string {
	return NormalizeStringSlice(names, NormalizeColumnName)
}
