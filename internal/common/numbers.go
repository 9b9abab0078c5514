package common

import (
	"fmt"
	"strconv"
	"strings"
)

// NextDocNumber generates the next document number of the form
// <prefix><year>-<nnnn>, picking the lowest unused sequence among the existing
// numbers for that year. Gaps left by deleted documents are reused.
func NextDocNumber(prefix string, year int, existing []string) string {
	yearPrefix := fmt.Sprintf("%s%d-", prefix, year)
	used := make(map[int]bool, len(existing))
	for _, n := range existing {
		rest, ok := strings.CutPrefix(n, yearPrefix)
		if !ok {
			continue
		}
		if seq, err := strconv.Atoi(rest); err == nil && seq > 0 {
			used[seq] = true
		}
	}
	seq := 1
	for used[seq] {
		seq++
	}
	return fmt.Sprintf("%s%04d", yearPrefix, seq)
}
