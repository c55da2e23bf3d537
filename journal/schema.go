package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	scenario_id TEXT NOT NULL,
	created TEXT NOT NULL,
	start_ts TEXT NOT NULL,
	end_ts TEXT NOT NULL,
	final_equity REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	num_trades INTEGER NOT NULL,
	num_points INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	ts TEXT NOT NULL,
	symbol TEXT NOT NULL,
	qty REAL NOT NULL,
	price REAL NOT NULL,
	strategy_id TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	ts TEXT NOT NULL,
	equity REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario_id);
`
