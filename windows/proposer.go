package windows

import "github.com/warp/travel-windows/generic"

// Propose enumerates the windows anchored at start for offsets 0..MaxOffset.
// A window spans start through start+2+offset and is kept only when its PTO
// cost does not exceed its offset, so the weekend and holidays cover at
// least the base days. Offsets come out in increasing order.
func Propose(start generic.Date, holidays generic.HolidaySet) []Candidate {
	var candidates []Candidate
	for offset := 0; offset <= MaxOffset; offset++ {
		period := generic.Period{Start: start, End: start.AddDays(baseDays - 1 + offset)}
		cost := PTOCost(period, holidays)
		if cost > offset {
			continue
		}
		candidates = append(candidates, Candidate{Period: period, Offset: offset, PTOCost: cost})
	}
	return candidates
}

// PTOCost counts the weekdays in p that are not holidays.
func PTOCost(p generic.Period, holidays generic.HolidaySet) int {
	cost := 0
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		if holidays.IsPTODay(d) {
			cost++
		}
	}
	return cost
}
