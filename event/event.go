// Package event describes named occurrences, user supplied or derived from country holiday
// calendars, that are modelled as separate regressors of a forecast.
package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrUnsetTime      = errors.New("unset event date")
	ErrNoEventName    = errors.New("no event name")
	ErrUnknownCountry = errors.New("unknown country holiday calendar")
	ErrNoHolidays     = errors.New("no holidays provided for country")
)

// Occurrence is a single dated row of an events table, e.g. ("event_0", 2022-01-13)
type Occurrence struct {
	Name string    `json:"event"`
	Date time.Time `json:"ds"`
}

// Valid checks that the occurrence is named and dated
func (o Occurrence) Valid() error {
	if o.Name == "" {
		return ErrNoEventName
	}
	if o.Date.IsZero() {
		return ErrUnsetTime
	}
	return nil
}

// GroupOccurrences collects the dates of each named event sorted in ascending order
func GroupOccurrences(occurrences []Occurrence) map[string][]time.Time {
	grouped := make(map[string][]time.Time)
	for _, o := range occurrences {
		grouped[o.Name] = append(grouped[o.Name], o.Date)
	}
	for name := range grouped {
		dates := grouped[name]
		sort.Slice(dates, func(i, j int) bool {
			return dates[i].Before(dates[j])
		})
	}
	return grouped
}

// HolidayDates returns the midnight of every actual and observed date of the holiday that falls
// between the day of start and end inclusive. Dates are in the location of start and sorted.
func HolidayDates(hol *cal.Holiday, start, end time.Time) []time.Time {
	loc := start.Location()
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	seen := make(map[time.Time]struct{})
	var dates []time.Time
	// observed dates can cross into the neighbouring years
	for year := start.Year() - 1; year <= end.Year()+1; year++ {
		actual, observed := hol.Calc(year)
		for _, d := range []time.Time{actual, observed} {
			if d.IsZero() {
				continue
			}
			day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
			if day.Before(startDay) || day.After(end) {
				continue
			}
			if _, exists := seen[day]; exists {
				continue
			}
			seen[day] = struct{}{}
			dates = append(dates, day)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

var (
	calendarsMu sync.RWMutex
	calendars   = map[string][]*cal.Holiday{
		"US": us.Holidays,
	}
)

// RegisterCountry adds or replaces the holiday calendar of a country code
func RegisterCountry(code string, holidays []*cal.Holiday) error {
	if len(holidays) == 0 {
		return fmt.Errorf("%s, %w", code, ErrNoHolidays)
	}
	calendarsMu.Lock()
	defer calendarsMu.Unlock()

	cpy := make([]*cal.Holiday, len(holidays))
	copy(cpy, holidays)
	calendars[strings.ToUpper(code)] = cpy
	return nil
}

// CountryHolidays returns the holiday calendar registered for the country code
func CountryHolidays(code string) ([]*cal.Holiday, error) {
	calendarsMu.RLock()
	defer calendarsMu.RUnlock()

	holidays, exists := calendars[strings.ToUpper(code)]
	if !exists {
		return nil, fmt.Errorf("%s, %w", code, ErrUnknownCountry)
	}
	cpy := make([]*cal.Holiday, len(holidays))
	copy(cpy, holidays)
	return cpy, nil
}

// CountryHolidayDates maps each holiday name of the country to its dates between start and end.
// Holidays without any date in range are omitted.
func CountryHolidayDates(code string, start, end time.Time) (map[string][]time.Time, error) {
	holidays, err := CountryHolidays(code)
	if err != nil {
		return nil, err
	}
	res := make(map[string][]time.Time)
	for _, hol := range holidays {
		dates := HolidayDates(hol, start, end)
		if len(dates) == 0 {
			continue
		}
		res[hol.Name] = append(res[hol.Name], dates...)
	}
	return res, nil
}
