package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, scenario_id, created, start_ts, end_ts, final_equity, max_drawdown, num_trades, num_points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.ScenarioID, ts(r.Created), r.Start, r.End,
		r.FinalEquity, r.MaxDrawdown, r.NumTrades, r.NumPoints,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, seq, ts, symbol, qty, price, strategy_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Seq, ts(t.Time), t.Symbol, t.Qty, t.Price, t.StrategyID,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, seq, ts, equity, max_drawdown)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Seq, ts(e.Time), e.Equity, e.MaxDrawdown,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
