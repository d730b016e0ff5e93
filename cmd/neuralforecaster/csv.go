package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-neuralforecaster/event"
	"github.com/aouyang1/go-neuralforecaster/timedataset"
)

const (
	colTime  = "ds"
	colValue = "y"
	colEvent = "event"

	dateLayout = "2006-01-02"
)

var (
	ErrMissingColumn = errors.New("missing csv column")
	ErrInvalidTime   = errors.New("time is neither RFC3339 nor YYYY-MM-DD")
)

// parseTime accepts RFC3339 timestamps or plain dates at midnight UTC
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrInvalidTime)
}

func formatTime(t time.Time) string {
	if t.Equal(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())) {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339)
}

// readRecords returns the header index of every required column along with all rows
func readRecords(r io.Reader, required ...string) (map[string]int, [][]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read csv, %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s, %w", strings.Join(required, ","), ErrMissingColumn)
	}

	idx := make(map[string]int)
	for i, name := range records[0] {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, exists := idx[name]; !exists {
			return nil, nil, fmt.Errorf("%s, %w", name, ErrMissingColumn)
		}
	}
	return idx, records[1:], nil
}

// ReadDataset parses a ds,y csv. Empty values are read as NaN and dropped during training.
func ReadDataset(r io.Reader) (*timedataset.TimeDataset, error) {
	idx, rows, err := readRecords(r, colTime, colValue)
	if err != nil {
		return nil, err
	}

	t := make([]time.Time, 0, len(rows))
	y := make([]float64, 0, len(rows))
	for i, row := range rows {
		ts, err := parseTime(row[idx[colTime]])
		if err != nil {
			return nil, fmt.Errorf("row %d, %w", i+1, err)
		}
		val := math.NaN()
		if s := strings.TrimSpace(row[idx[colValue]]); s != "" {
			val, err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, %w", i+1, err)
			}
		}
		t = append(t, ts)
		y = append(y, val)
	}
	return timedataset.NewUnivariateDataset(t, y)
}

// ReadOccurrences parses an event,ds csv
func ReadOccurrences(r io.Reader) ([]event.Occurrence, error) {
	idx, rows, err := readRecords(r, colEvent, colTime)
	if err != nil {
		return nil, err
	}

	occurrences := make([]event.Occurrence, 0, len(rows))
	for i, row := range rows {
		ts, err := parseTime(row[idx[colTime]])
		if err != nil {
			return nil, fmt.Errorf("row %d, %w", i+1, err)
		}
		o := event.Occurrence{Name: strings.TrimSpace(row[idx[colEvent]]), Date: ts}
		if err := o.Valid(); err != nil {
			return nil, fmt.Errorf("row %d, %w", i+1, err)
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, nil
}

func WriteDataset(w io.Writer, td *timedataset.TimeDataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{colTime, colValue}); err != nil {
		return err
	}
	for i, t := range td.T {
		val := ""
		if !math.IsNaN(td.Y[i]) {
			val = strconv.FormatFloat(td.Y[i], 'g', -1, 64)
		}
		if err := cw.Write([]string{formatTime(t), val}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteOccurrences(w io.Writer, occurrences []event.Occurrence) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{colEvent, colTime}); err != nil {
		return err
	}
	for _, o := range occurrences {
		if err := cw.Write([]string{o.Name, formatTime(o.Date)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var res T
	f, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer func() { _ = f.Close() }()
	return read(f)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
