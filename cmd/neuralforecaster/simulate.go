package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/aouyang1/go-neuralforecaster/event"
	"github.com/aouyang1/go-neuralforecaster/timedataset"
	"github.com/rickar/cal/v2/us"
	"github.com/spf13/cobra"
)

const defaultOverrideValue = 10.0

var ErrNoOutput = errors.New("no output file provided")

func newSimulateCmd(setup setupFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Write synthetic datasets with overridden events or holidays.",
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(newSimulateHolidaysCmd(setup), newSimulateEventsCmd(setup))
	return cmd
}

func newSimulateHolidaysCmd(setup setupFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Write a daily series with a jump on every country holiday.",
		Long: `Write a daily ds,y series covering whole years. Every holiday is set to 100 and every other
day to 1. Overridden holidays are set to the override value instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, stop, err := setup(cmd)
			if err != nil {
				return err
			}
			defer stop()
			return runSimulateHolidays(cfg)
		},
	}
	cmd.Flags().String("out", "", "Path to write the ds,y csv")
	cmd.Flags().String("country", "US", "Country code of the holiday calendar")
	cmd.Flags().IntSlice("years", []int{2022}, "Years to generate")
	cmd.Flags().StringSlice("override", []string{us.PresidentsDay.Name, us.LaborDay.Name, us.ChristmasDay.Name}, "Holiday names to override")
	cmd.Flags().Float64("override-value", defaultOverrideValue, "Value of the overridden holidays")
	return cmd
}

func newSimulateEventsCmd(setup setupFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Write a daily series with a jump on every event date.",
		Long: `Write a daily ds,y series with six single day events named event_0 to event_5. Every event
is set to 100 and every other day to 1. Overridden event dates are set to the override value instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, stop, err := setup(cmd)
			if err != nil {
				return err
			}
			defer stop()
			return runSimulateEvents(cfg)
		},
	}
	cmd.Flags().String("out", "", "Path to write the ds,y csv")
	cmd.Flags().String("events-out", "", "Path to write the event,ds csv of occurrences")
	cmd.Flags().String("start", "2022-01-01", "First day of the series")
	cmd.Flags().Int("periods", timedataset.DefaultPeriods, "Number of days")
	cmd.Flags().StringSlice("override", []string{"2022-01-13", "2022-01-14", "2022-01-15"}, "Event dates to override as YYYY-MM-DD")
	cmd.Flags().Float64("override-value", defaultOverrideValue, "Value of the overridden events")
	return cmd
}

func runSimulateHolidays(cfg *Config) error {
	if cfg.Out == "" {
		return ErrNoOutput
	}
	opt := timedataset.NewDefaultHolidayDatasetOptions()
	opt.Country = cfg.Country
	opt.Years = cfg.Years
	opt.YHolidaysOverride = make(map[string]float64, len(cfg.Overrides))
	for _, name := range cfg.Overrides {
		opt.YHolidaysOverride[name] = cfg.OverrideValue
	}

	td, err := timedataset.GenerateHolidayDataset(opt)
	if err != nil {
		return err
	}
	return writeFile(cfg.Out, func(w io.Writer) error { return WriteDataset(w, td) })
}

func runSimulateEvents(cfg *Config) error {
	if cfg.Out == "" {
		return ErrNoOutput
	}
	start, err := parseTime(cfg.Start)
	if err != nil {
		return err
	}
	opt := timedataset.NewDefaultEventDatasetOptions()
	opt.Start = start
	opt.Periods = cfg.Periods
	opt.YEventsOverride = make(map[string]float64, len(cfg.Overrides))
	for _, date := range cfg.Overrides {
		opt.YEventsOverride[date] = cfg.OverrideValue
	}

	td, dates, err := timedataset.GenerateEventDataset(opt)
	if err != nil {
		return err
	}
	if err := writeFile(cfg.Out, func(w io.Writer) error { return WriteDataset(w, td) }); err != nil {
		return err
	}
	if cfg.EventsOut == "" {
		return nil
	}

	occurrences := make([]event.Occurrence, 0, len(dates))
	for i, d := range dates {
		occurrences = append(occurrences, event.Occurrence{Name: fmt.Sprintf("event_%d", i), Date: d})
	}
	return writeFile(cfg.EventsOut, func(w io.Writer) error { return WriteOccurrences(w, occurrences) })
}
