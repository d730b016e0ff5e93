package timedataset

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-neuralforecaster/event"
)

const (
	DefaultYDefault = 1.0
	DefaultYEvent   = 100.0
	DefaultPeriods  = 31

	dateLayout = "2006-01-02"
)

var ErrNoYears = errors.New("no years to generate holiday dataset for")

// HolidayDatasetOptions configures a daily series with a jump on every country holiday
type HolidayDatasetOptions struct {
	Country string
	Years   []int

	YDefault float64
	YHoliday float64

	// YHolidaysOverride maps a holiday name to the value used instead of YHoliday
	YHolidaysOverride map[string]float64
}

func NewDefaultHolidayDatasetOptions() *HolidayDatasetOptions {
	return &HolidayDatasetOptions{
		Country:  "US",
		Years:    []int{2022},
		YDefault: DefaultYDefault,
		YHoliday: DefaultYEvent,
	}
}

// GenerateHolidayDataset generates a daily series covering every full year where each actual
// and observed holiday date is set to the holiday value and every other day to the default.
func GenerateHolidayDataset(opt *HolidayDatasetOptions) (*TimeDataset, error) {
	if opt == nil {
		opt = NewDefaultHolidayDatasetOptions()
	}
	if len(opt.Years) == 0 {
		return nil, ErrNoYears
	}

	minYear, maxYear := opt.Years[0], opt.Years[0]
	for _, year := range opt.Years {
		minYear = min(minYear, year)
		maxYear = max(maxYear, year)
	}
	start := time.Date(minYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(maxYear, 12, 31, 0, 0, 0, 0, time.UTC)
	n := int(end.Sub(start).Hours()/24) + 1

	t := GenerateDailyT(start, n)
	y := GenerateConstY(n, opt.YDefault)

	holidays, err := event.CountryHolidays(opt.Country)
	if err != nil {
		return nil, fmt.Errorf("unable to generate holiday dataset, %w", err)
	}
	for _, hol := range holidays {
		val := opt.YHoliday
		if override, exists := opt.YHolidaysOverride[hol.Name]; exists {
			val = override
		}
		y.SetAt(t, val, event.HolidayDates(hol, start, end)...)
	}

	return NewUnivariateDataset(t, y)
}

// EventDatasetOptions configures a daily series with a jump on each event date
type EventDatasetOptions struct {
	Start   time.Time
	Periods int

	// Events are event dates formatted as YYYY-MM-DD
	Events []string

	YDefault float64
	YEvent   float64

	// YEventsOverride maps an event date to the value used instead of YEvent
	YEventsOverride map[string]float64
}

func NewDefaultEventDatasetOptions() *EventDatasetOptions {
	return &EventDatasetOptions{
		Start:   time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		Periods: DefaultPeriods,
		Events: []string{
			"2022-01-01", "2022-01-10", "2022-01-13", "2022-01-14", "2022-01-15", "2022-01-31",
		},
		YDefault: DefaultYDefault,
		YEvent:   DefaultYEvent,
	}
}

// GenerateEventDataset generates a daily series where each event date is set to the event value
// and every other day to the default. The parsed event dates are returned in the same order as
// the configured events.
func GenerateEventDataset(opt *EventDatasetOptions) (*TimeDataset, []time.Time, error) {
	if opt == nil {
		opt = NewDefaultEventDatasetOptions()
	}
	if opt.Periods <= 0 {
		return nil, nil, ErrNoTrainingData
	}

	loc := opt.Start.Location()
	t := GenerateDailyT(opt.Start, opt.Periods)
	y := GenerateConstY(opt.Periods, opt.YDefault)

	dates := make([]time.Time, 0, len(opt.Events))
	for _, ev := range opt.Events {
		date, err := time.ParseInLocation(dateLayout, ev, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to parse event date %q, %w", ev, err)
		}
		dates = append(dates, date)

		val := opt.YEvent
		if override, exists := opt.YEventsOverride[ev]; exists {
			val = override
		}
		y.SetAt(t, val, date)
	}

	td, err := NewUnivariateDataset(t, y)
	if err != nil {
		return nil, nil, err
	}
	return td, dates, nil
}
