package fields

import "strings"

// digitsOnly drops every non-digit, so "22.00.092" reads as 2200092.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// compareNumeric compares the digit sequences of a and b as unbounded integers.
// A string without digits counts as zero.
func compareNumeric(a, b string) int {
	da := strings.TrimLeft(digitsOnly(a), "0")
	db := strings.TrimLeft(digitsOnly(b), "0")
	if len(da) != len(db) {
		if len(da) < len(db) {
			return -1
		}
		return 1
	}
	return strings.Compare(da, db)
}

// largestNumeric returns the first candidate with the greatest numeric value.
func largestNumeric(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if compareNumeric(c, best) > 0 {
			best = c
		}
	}
	return best
}
