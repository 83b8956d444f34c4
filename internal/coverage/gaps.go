package coverage

import "time"

// largestGapDays returns the longest run of consecutive calendar days with no
// measurements, looking only at runs strictly between two observed days. Days
// before the first or after the last observation are not counted. days must
// be sorted ascending and normalized to midnight; fewer than two days yields
// 0, not the length of the year.
func largestGapDays(days []time.Time) int {
	if len(days) < 2 {
		return 0
	}

	largest := 0
	for i := 1; i < len(days); i++ {
		// Both days sit at UTC midnight, so the subtraction is a whole
		// number of 24h days. Adjacent days produce a gap of zero.
		gap := int(days[i].Sub(days[i-1]).Hours()/24) - 1
		if gap > largest {
			largest = gap
		}
	}
	return largest
}
