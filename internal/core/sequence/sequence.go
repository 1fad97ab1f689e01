// Package sequence finds holes in the numbering of a document series.
package sequence

import (
	"regexp"
	"sort"
	"strconv"
)

var digitRun = regexp.MustCompile(`\d+`)

// Missing returns every integer in [min(numbers), max(numbers)] that does not
// appear in numbers, in ascending order. Duplicates in the input are fine.
//
// The caller must pass non-negative integers already extracted from the raw
// document number (see FirstNumber); nothing is validated or coerced here.
func Missing(numbers []int) []int {
	if len(numbers) == 0 {
		return []int{}
	}

	sorted := make([]int, len(numbers))
	copy(sorted, numbers)
	sort.Ints(sorted)

	unique := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			unique++
		}
	}
	missing := make([]int, 0, sorted[len(sorted)-1]-sorted[0]+1-unique)
	prev := sorted[0]
	for _, n := range sorted[1:] {
		for gap := prev + 1; gap < n; gap++ {
			missing = append(missing, gap)
		}
		if n > prev {
			prev = n
		}
	}
	return missing
}

// Span returns max(numbers) - min(numbers), or 0 for an empty input. Missing
// allocates in proportion to it, so callers bound it before asking for gaps.
func Span(numbers []int) int {
	if len(numbers) == 0 {
		return 0
	}
	lo, hi := numbers[0], numbers[0]
	for _, n := range numbers[1:] {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return hi - lo
}

// FirstNumber extracts the first run of digits of a document number such as
// "NF 000123-A". It returns false when there are no digits or the run does not
// fit in an int.
func FirstNumber(raw string) (int, bool) {
	run := digitRun.FindString(raw)
	if run == "" {
		return 0, false
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		return 0, false
	}
	return n, true
}
