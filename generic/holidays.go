package generic

import (
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// defaultCalendar lists the US federal holidays offered as a starter set.
var defaultCalendar = []*cal.Holiday{
	us.NewYear,
	us.MlkDay,
	us.PresidentsDay,
	us.MemorialDay,
	us.Juneteenth,
	us.IndependenceDay,
	us.LaborDay,
	us.ThanksgivingDay,
	us.ChristmasDay,
}

// DefaultHolidays returns the observed dates of common US holidays in year.
// Observed dates move weekend holidays onto the adjacent Friday or Monday.
func DefaultHolidays(year int) []Holiday {
	holidays := make([]Holiday, 0, len(defaultCalendar))
	for _, h := range defaultCalendar {
		_, observed := h.Calc(year)
		if observed.IsZero() || observed.Year() != year {
			continue
		}
		holidays = append(holidays, Holiday{Date: DateOf(observed), Name: h.Name})
	}
	return holidays
}
