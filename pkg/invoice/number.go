package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

// NextNumber returns the number following the highest sequence already used in
// year, formatted as {year}-{sequence:04}. Numbers of other years and numbers
// that do not follow the format are ignored.
func NextNumber(year int, existing []string) string {
	prefix := strconv.Itoa(year) + "-"
	highest := 0
	for _, number := range existing {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		sequence, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
		if err != nil || sequence < 0 {
			continue
		}
		if sequence > highest {
			highest = sequence
		}
	}
	return fmt.Sprintf("%d-%04d", year, highest+1)
}
