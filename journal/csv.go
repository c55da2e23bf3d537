package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var (
	runsHeader   = []string{"run_id", "scenario_id", "created", "start_ts", "end_ts", "final_equity", "max_drawdown", "num_trades", "num_points"}
	tradesHeader = []string{"run_id", "seq", "ts", "symbol", "qty", "price", "strategy_id"}
	equityHeader = []string{"run_id", "seq", "ts", "equity", "max_drawdown"}
)

// CSVJournal writes runs.csv, trades.csv and equity.csv into a directory.
// Existing files are appended to; headers are written only to new files.
type CSVJournal struct {
	runs, trades, equity *csv.Writer
	files                []*os.File
}

func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	j := &CSVJournal{}
	open := func(name string, header []string) (*csv.Writer, error) {
		path := filepath.Join(dir, name)
		_, statErr := os.Stat(path)
		fresh := os.IsNotExist(statErr)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)

		w := csv.NewWriter(f)
		if fresh {
			if err := w.Write(header); err != nil {
				return nil, err
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return nil, err
			}
		}
		return w, nil
	}

	var err error
	if j.runs, err = open("runs.csv", runsHeader); err != nil {
		j.Close()
		return nil, fmt.Errorf("runs.csv: %w", err)
	}
	if j.trades, err = open("trades.csv", tradesHeader); err != nil {
		j.Close()
		return nil, fmt.Errorf("trades.csv: %w", err)
	}
	if j.equity, err = open("equity.csv", equityHeader); err != nil {
		j.Close()
		return nil, fmt.Errorf("equity.csv: %w", err)
	}
	return j, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	return write(j.runs, []string{
		r.RunID,
		r.ScenarioID,
		ts(r.Created),
		r.Start,
		r.End,
		f(r.FinalEquity),
		f(r.MaxDrawdown),
		strconv.Itoa(r.NumTrades),
		strconv.Itoa(r.NumPoints),
	})
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return write(j.trades, []string{
		t.RunID,
		strconv.Itoa(t.Seq),
		ts(t.Time),
		t.Symbol,
		f(t.Qty),
		f(t.Price),
		t.StrategyID,
	})
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	return write(j.equity, []string{
		e.RunID,
		strconv.Itoa(e.Seq),
		ts(e.Time),
		f(e.Equity),
		f(e.MaxDrawdown),
	})
}

func (j *CSVJournal) Close() error {
	var first error
	for _, w := range []*csv.Writer{j.runs, j.trades, j.equity} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && first == nil {
			first = err
		}
	}
	for _, fh := range j.files {
		if err := fh.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}

func write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// f keeps full float64 precision so journals round-trip exactly.
func f(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
