package main

import (
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	forecaster "github.com/aouyang1/go-neuralforecaster"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const (
	kindEvent   = "event"
	kindHoliday = "holiday"
)

var (
	smallColor = color.New(color.FgHiBlack)
	largeColor = color.New(color.FgGreen, color.Bold)
)

func weightLabel(w, threshold float64) string {
	s := fmt.Sprintf("%.4f", w)
	if math.Abs(w) < threshold {
		return smallColor.Sprint(s)
	}
	return largeColor.Sprint(s)
}

// printFit prints the fit scores followed by a table of every event and holiday weight
func printFit(w io.Writer, f *forecaster.Forecaster, threshold float64) error {
	scores := f.Scores()
	if _, err := fmt.Fprintf(w, "MAPE: %.3f    MSE: %.3f    R2: %.3f\n", scores.MAPE, scores.MSE, scores.R2); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Kind", "Feature", "Weight"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	appendRows := func(names []string, kind string) error {
		for _, name := range names {
			weights, err := f.EventWeights(name)
			if err != nil {
				return err
			}
			for _, feat := range slices.Sorted(maps.Keys(weights)) {
				data = append(data, []string{name, kind, feat, weightLabel(weights[feat], threshold)})
			}
		}
		return nil
	}
	if err := appendRows(f.EventNames(), kindEvent); err != nil {
		return err
	}
	if err := appendRows(f.HolidayNames(), kindHoliday); err != nil {
		return err
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
