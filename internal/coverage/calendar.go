package coverage

import (
	"sort"
	"time"
)

// Season identifies one of the four meteorological seasons.
type Season int

const (
	SeasonWinter Season = iota
	SeasonSpring
	SeasonSummer
	SeasonFall
)

func (s Season) String() string {
	switch s {
	case SeasonWinter:
		return "winter"
	case SeasonSpring:
		return "spring"
	case SeasonSummer:
		return "summer"
	case SeasonFall:
		return "fall"
	default:
		return "unknown"
	}
}

// seasonForMonth maps a calendar month to its meteorological season
// (Spring=Mar-May, Summer=Jun-Aug, Fall=Sep-Nov, Winter=Dec-Feb).
// Fixed domain data, not configuration.
func seasonForMonth(m time.Month) Season {
	switch m {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

// DaysInYear returns the number of calendar days in year (365 or 366).
func DaysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// daysInMonth returns the number of calendar days in the given month of year.
func daysInMonth(year int, m time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// seasonDayTotals returns the day count of each season within one calendar
// year. Winter spans January, February, and December of the same year, so a
// leap year yields 91 winter days instead of 90.
func seasonDayTotals(year int) [4]int {
	var totals [4]int
	for m := time.January; m <= time.December; m++ {
		totals[seasonForMonth(m)] += daysInMonth(year, m)
	}
	return totals
}

// dayIndex is the temporal index derived from one variable's observation
// times: the sorted unique calendar days with data, plus unique-day counts
// per month and per season.
type dayIndex struct {
	year       int
	days       []time.Time // sorted ascending, normalized to UTC midnight
	monthDays  [13]int     // indexed by time.Month (1-12)
	seasonDays [4]int      // indexed by Season
}

// newDayIndex builds the temporal index for one analysis year. Timestamps
// are collapsed to calendar days, discarding the time of day. Timestamps
// outside the analysis year are included as given; filtering is the caller's
// job. Empty input yields an index with no days and all-zero counts.
func newDayIndex(year int, times []time.Time) *dayIndex {
	idx := &dayIndex{year: year}

	seen := make(map[time.Time]struct{}, len(times))
	for _, t := range times {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		idx.days = append(idx.days, day)
		idx.monthDays[day.Month()]++
		idx.seasonDays[seasonForMonth(day.Month())]++
	}

	sort.Slice(idx.days, func(i, j int) bool { return idx.days[i].Before(idx.days[j]) })
	return idx
}

// monthsWithData counts the months that have at least one day of data.
func (idx *dayIndex) monthsWithData() int {
	months := 0
	for m := time.January; m <= time.December; m++ {
		if idx.monthDays[m] > 0 {
			months++
		}
	}
	return months
}
