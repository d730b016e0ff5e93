package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	forecaster "github.com/aouyang1/go-neuralforecaster"
	"github.com/aouyang1/go-neuralforecaster/event"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var ErrNoData = errors.New("no data file provided")

func newFitCmd(setup setupFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a forecast and print the learned event and holiday weights.",
		Long: `Fit a forecast on a ds,y csv file and print the weight of every event and holiday.

Examples:
  # fit the US holidays with a small regularization
  neuralforecaster fit --data holidays.csv --holidays US --holiday-regularization 0.01 \
    --growth off --seasonality off --epochs 20 --batch-size 64

  # fit user defined events from an event,ds csv and save the model
  neuralforecaster fit --data events.csv --events occurrences.csv --event-regularization 0.01 \
    --model-out model.json --plot fit.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, stop, err := setup(cmd)
			if err != nil {
				return err
			}
			defer stop()
			return runFit(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().String("data", "", "Path to a ds,y csv file")
	cmd.Flags().String("events", "", "Path to an event,ds csv file of event occurrences")
	cmd.Flags().String("holidays", "", "Country code of the holidays to model, e.g. US")
	cmd.Flags().String("model-out", "", "Path to write the fit model as json")
	cmd.Flags().String("plot", "", "Path to write an html plot of the fit")
	addModelFlags(cmd)
	return cmd
}

func uniqueNames(occurrences []event.Occurrence) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, o := range occurrences {
		if _, exists := seen[o.Name]; exists {
			continue
		}
		seen[o.Name] = struct{}{}
		names = append(names, o.Name)
	}
	return names
}

func runFit(w io.Writer, cfg *Config) error {
	if cfg.Data == "" {
		return ErrNoData
	}
	td, err := readFile(cfg.Data, ReadDataset)
	if err != nil {
		return fmt.Errorf("unable to read data, %w", err)
	}

	opt, err := cfg.Options()
	if err != nil {
		return fmt.Errorf("invalid options, %w", err)
	}
	f, err := forecaster.New(opt)
	if err != nil {
		return err
	}

	if cfg.Holidays != "" {
		eo := &forecaster.EventOptions{
			Regularization: cfg.HolidayRegularization,
			LowerWindow:    cfg.LowerWindow,
			UpperWindow:    cfg.UpperWindow,
		}
		if err := f.AddCountryHolidays(cfg.Holidays, eo); err != nil {
			return err
		}
	}

	if cfg.Events != "" {
		occurrences, err := readFile(cfg.Events, ReadOccurrences)
		if err != nil {
			return fmt.Errorf("unable to read events, %w", err)
		}
		eo := &forecaster.EventOptions{
			Regularization: cfg.EventRegularization,
			LowerWindow:    cfg.LowerWindow,
			UpperWindow:    cfg.UpperWindow,
		}
		if err := f.AddEvents(uniqueNames(occurrences), eo); err != nil {
			return err
		}
		td, err = f.CreateDatasetWithEvents(td, occurrences)
		if err != nil {
			return err
		}
	}

	if err := f.Fit(td, cfg.Freq); err != nil {
		return err
	}
	if err := printFit(w, f, cfg.WeightThreshold); err != nil {
		return err
	}

	if cfg.ModelOut != "" {
		m, err := f.Model()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("unable to marshal model, %w", err)
		}
		if err := os.WriteFile(cfg.ModelOut, out, 0o644); err != nil {
			return err
		}
	}

	if cfg.Plot != "" {
		if err := writeFile(cfg.Plot, func(w io.Writer) error { return f.PlotFit(w, nil) }); err != nil {
			return fmt.Errorf("unable to plot fit, %w", err)
		}
	}
	return nil
}
