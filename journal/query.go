package journal

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustyeddy/backtester/internal/market"
)

// GetRun returns a single run by ID.
func (j *SQLiteJournal) GetRun(runID string) (RunRecord, error) {
	var (
		rec     RunRecord
		created string
	)

	row := j.db.QueryRow(`
		SELECT run_id, scenario_id, created, start_ts, end_ts, final_equity, max_drawdown, num_trades, num_points
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID,
		&rec.ScenarioID,
		&created,
		&rec.Start,
		&rec.End,
		&rec.FinalEquity,
		&rec.MaxDrawdown,
		&rec.NumTrades,
		&rec.NumPoints,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}

	rec.Created, err = market.ParseTimestamp(created)
	if err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRunsByScenario returns every run of a scenario, oldest first.
func (j *SQLiteJournal) ListRunsByScenario(scenarioID string) ([]string, error) {
	rows, err := j.db.Query(`
		SELECT run_id FROM runs
		WHERE scenario_id = ?
		ORDER BY created ASC, run_id ASC`, scenarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListTradesByRunID returns a run's ledger in its original order.
func (j *SQLiteJournal) ListTradesByRunID(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, seq, ts, symbol, qty, price, strategy_id
		FROM trades
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var (
			rec TradeRecord
			t   string
		)
		if err := rows.Scan(&rec.RunID, &rec.Seq, &t, &rec.Symbol, &rec.Qty, &rec.Price, &rec.StrategyID); err != nil {
			return nil, err
		}
		if rec.Time, err = market.ParseTimestamp(t); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityByRunID returns a run's equity curve in order.
func (j *SQLiteJournal) ListEquityByRunID(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, seq, ts, equity, max_drawdown
		FROM equity
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var (
			rec EquitySnapshot
			t   string
		)
		if err := rows.Scan(&rec.RunID, &rec.Seq, &t, &rec.Equity, &rec.MaxDrawdown); err != nil {
			return nil, err
		}
		if rec.Time, err = market.ParseTimestamp(t); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
