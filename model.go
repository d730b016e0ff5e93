package forecaster

import (
	"fmt"
	"io"

	"github.com/aouyang1/go-neuralforecaster/forecast"
)

// Model is a serializeable representation of a fit forecaster
type Model struct {
	Forecast forecast.Model `json:"forecast"`
}

func (m Model) TablePrint(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Series:"); err != nil {
		return err
	}
	if err := m.Forecast.TablePrint(w, "  ", "  "); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
