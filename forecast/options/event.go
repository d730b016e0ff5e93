package options

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-neuralforecaster/event"
	"github.com/aouyang1/go-neuralforecaster/feature"
	"github.com/aouyang1/go-neuralforecaster/forecast/util"
	"github.com/rickar/cal/v2"
)

var (
	ErrNoEventName        = event.ErrNoEventName
	ErrUnknownCountry     = event.ErrUnknownCountry
	ErrInvalidWindow      = errors.New("lower window must be non-positive and upper window non-negative")
	ErrNoCountry          = errors.New("no holiday country")
	ErrMissingEventDates  = errors.New("no dates provided for configured event")
	ErrUnknownHolidayName = errors.New("holiday name not in country calendar")
)

// EventConfig configures a user defined event. Each day offset between the lower and upper
// window is modelled by its own event feature and all features of the event share one
// regularization strength.
type EventConfig struct {
	Name           string  `json:"name"`
	Regularization float64 `json:"regularization"`
	LowerWindow    int     `json:"lower_window"`
	UpperWindow    int     `json:"upper_window"`
}

// NewEventConfig returns a single day event with the given regularization
func NewEventConfig(name string, regularization float64) EventConfig {
	return EventConfig{
		Name:           name,
		Regularization: regularization,
	}
}

func (e EventConfig) Valid() error {
	if e.Name == "" {
		return ErrNoEventName
	}
	if e.Regularization < 0 {
		return ErrNegativeRegularization
	}
	if e.LowerWindow > 0 || e.UpperWindow < 0 {
		return fmt.Errorf("lower %d, upper %d, %w", e.LowerWindow, e.UpperWindow, ErrInvalidWindow)
	}
	return nil
}

// Offsets returns every day offset of the event window in ascending order
func (e EventConfig) Offsets() []int {
	return windowOffsets(e.LowerWindow, e.UpperWindow)
}

// Features returns one event feature per day offset
func (e EventConfig) Features() []feature.Feature {
	return eventFeatures(e.Name, e.Offsets())
}

// HolidaysConfig configures the holidays of a country calendar. Each holiday is modelled as its
// own event with the shared regularization and window. HolidayNames restricts the modelled
// holidays when set.
type HolidaysConfig struct {
	Country        string   `json:"country"`
	Regularization float64  `json:"regularization"`
	LowerWindow    int      `json:"lower_window"`
	UpperWindow    int      `json:"upper_window"`
	HolidayNames   []string `json:"holiday_names,omitempty"`
}

// NewHolidaysConfig returns a single day holiday config of a country with the given regularization
func NewHolidaysConfig(country string, regularization float64) *HolidaysConfig {
	return &HolidaysConfig{
		Country:        strings.ToUpper(country),
		Regularization: regularization,
	}
}

func (h *HolidaysConfig) Valid() error {
	if h.Country == "" {
		return ErrNoCountry
	}
	if h.Regularization < 0 {
		return ErrNegativeRegularization
	}
	if h.LowerWindow > 0 || h.UpperWindow < 0 {
		return fmt.Errorf("lower %d, upper %d, %w", h.LowerWindow, h.UpperWindow, ErrInvalidWindow)
	}
	holidays, err := event.CountryHolidays(h.Country)
	if err != nil {
		return err
	}
	for _, name := range h.HolidayNames {
		if !slices.ContainsFunc(holidays, func(hol *cal.Holiday) bool { return hol.Name == name }) {
			return fmt.Errorf("%q, %w", name, ErrUnknownHolidayName)
		}
	}
	return nil
}

// Offsets returns every day offset of the holiday window in ascending order
func (h *HolidaysConfig) Offsets() []int {
	return windowOffsets(h.LowerWindow, h.UpperWindow)
}

// Dates returns the dates of every modelled holiday whose date, shifted by any offset of the
// window, falls between start and end. Holidays without any date are omitted.
func (h *HolidaysConfig) Dates(start, end time.Time) (map[string][]time.Time, error) {
	// widen the range so a holiday just outside still reaches in through its window
	rangeStart := start.AddDate(0, 0, -h.UpperWindow)
	rangeEnd := end.AddDate(0, 0, -h.LowerWindow)

	dates, err := event.CountryHolidayDates(h.Country, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	if len(h.HolidayNames) == 0 {
		return dates, nil
	}
	res := make(map[string][]time.Time, len(h.HolidayNames))
	for _, name := range h.HolidayNames {
		if d, exists := dates[name]; exists {
			res[name] = d
		}
	}
	return res, nil
}

func windowOffsets(lower, upper int) []int {
	if lower > 0 || upper < 0 {
		return nil
	}
	offsets := make([]int, 0, upper-lower+1)
	for offset := lower; offset <= upper; offset++ {
		offsets = append(offsets, offset)
	}
	return offsets
}

func eventFeatures(name string, offsets []int) []feature.Feature {
	feats := make([]feature.Feature, 0, len(offsets))
	for _, offset := range offsets {
		feats = append(feats, feature.NewEvent(name, offset))
	}
	return feats
}

// RegressorGroup is a set of event features regularized together. The regularization strength
// is split evenly across the features of the group.
type RegressorGroup struct {
	Name           string
	Regularization float64
	Features       []feature.Feature
}

// GenerateEventFeatures generates the event features of every configured event and country holiday
// over t. Event dates are looked up by event name in eventDates. Holidays are resolved from the
// country calendar. Features that never occur within t are dropped along with any group left empty.
func (o *Options) GenerateEventFeatures(t []time.Time, eventDates map[string][]time.Time) (*feature.Set, []RegressorGroup, error) {
	eFeat := feature.NewSet()
	if len(t) == 0 {
		return eFeat, nil, nil
	}

	var groups []RegressorGroup
	for _, evCfg := range o.Events {
		dates, exists := eventDates[evCfg.Name]
		if !exists {
			return nil, nil, fmt.Errorf("%q, %w", evCfg.Name, ErrMissingEventDates)
		}
		group := generateEventGroup(t, eFeat, evCfg.Name, evCfg.Regularization, evCfg.Offsets(), dates)
		if len(group.Features) == 0 {
			slog.Warn("event never occurs in time range", "name", evCfg.Name)
			continue
		}
		groups = append(groups, group)
	}

	if o.Holidays == nil {
		return eFeat, groups, nil
	}
	start := slices.MinFunc(t, func(a, b time.Time) int { return a.Compare(b) })
	end := slices.MaxFunc(t, func(a, b time.Time) int { return a.Compare(b) })
	holidayDates, err := o.Holidays.Dates(start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to resolve holidays, %w", err)
	}
	holidays, err := event.CountryHolidays(o.Holidays.Country)
	if err != nil {
		return nil, nil, err
	}
	// follow the calendar order so feature generation does not depend on map iteration
	for _, hol := range holidays {
		dates, exists := holidayDates[hol.Name]
		if !exists {
			continue
		}
		if slices.ContainsFunc(o.Events, func(e EventConfig) bool { return e.Name == hol.Name }) {
			slog.Warn("holiday shadowed by event of the same name", "name", hol.Name)
			continue
		}
		group := generateEventGroup(t, eFeat, hol.Name, o.Holidays.Regularization, o.Holidays.Offsets(), dates)
		if len(group.Features) == 0 {
			continue
		}
		groups = append(groups, group)
	}
	return eFeat, groups, nil
}

func generateEventGroup(t []time.Time, eFeat *feature.Set, name string, regularization float64, offsets []int, dates []time.Time) RegressorGroup {
	group := RegressorGroup{
		Name:           name,
		Regularization: regularization,
	}
	for _, f := range eventFeatures(name, offsets) {
		evFeat := f.(*feature.Event)
		mask := evFeat.Generate(t, dates)
		if !slices.Contains(mask, 1.0) {
			continue
		}
		eFeat.Set(evFeat, mask)
		group.Features = append(group.Features, evFeat)
	}
	return group
}

// EventNames returns the names of all configured events
func (o *Options) EventNames() []string {
	names := make([]string, 0, len(o.Events))
	for _, e := range o.Events {
		names = append(names, e.Name)
	}
	return names
}

func (o *Options) TablePrintEvents(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if len(o.Events) > 0 || o.Holidays != nil {
		noCfg = ""
		if _, err := fmt.Fprintf(tbl, "%s%sName\tRegularization\tLower\tUpper\t\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sEvents:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	for _, ev := range o.Events {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%.4f\t%d\t%d\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			ev.Name, ev.Regularization, ev.LowerWindow, ev.UpperWindow); err != nil {
			return err
		}
	}
	if h := o.Holidays; h != nil {
		if _, err := fmt.Fprintf(tbl, "%s%sholidays(%s)\t%.4f\t%d\t%d\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			h.Country, h.Regularization, h.LowerWindow, h.UpperWindow); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
