// Package scenario loads, validates and saves backtest scenario documents.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/backtester/internal/backtest"
	"github.com/rustyeddy/backtester/internal/market"
	"github.com/rustyeddy/backtester/internal/strategies"
)

const (
	DefaultEnv          = "studio1"
	DefaultWorldModel   = "volatility"
	DefaultArtifactsDir = "artifacts"
)

// Scenario is one backtest: universe, window, strategies, and the risk and
// fee assumptions used when reporting on the run.
type Scenario struct {
	ID           string            `json:"scenario_id" yaml:"scenario_id" validate:"required"`
	Description  string            `json:"description" yaml:"description"`
	StartTS      string            `json:"start_ts" yaml:"start_ts" validate:"required"`
	EndTS        string            `json:"end_ts" yaml:"end_ts" validate:"required"`
	Universe     Universe          `json:"universe" yaml:"universe"`
	Strategies   []strategies.Spec `json:"strategies" yaml:"strategies" validate:"dive"`
	Risk         Risk              `json:"risk" yaml:"risk"`
	Fees         Fees              `json:"fees" yaml:"fees"`
	Env          string            `json:"lake1_env" yaml:"lake1_env"`
	WorldModel   string            `json:"world_model" yaml:"world_model"`
	ArtifactsDir string            `json:"artifacts_dir" yaml:"artifacts_dir"`
}

// Universe is the symbol set and, optionally, the market log to replay.
type Universe struct {
	ID         string   `json:"universe_id" yaml:"universe_id" validate:"required"`
	Symbols    []string `json:"symbols" yaml:"symbols" validate:"dive,required"`
	SnapshotTS string   `json:"lake1_snapshot_ts,omitempty" yaml:"lake1_snapshot_ts,omitempty"`
	StatePath  string   `json:"lake1_state_path,omitempty" yaml:"lake1_state_path,omitempty"`
}

// Risk holds limits checked against a finished run. A zero limit is off.
type Risk struct {
	MaxGrossNotional float64        `json:"max_gross_notional" yaml:"max_gross_notional" validate:"gte=0"`
	MaxLeverage      float64        `json:"max_leverage" yaml:"max_leverage" validate:"gte=0"`
	MaxDrawdown      float64        `json:"max_drawdown" yaml:"max_drawdown" validate:"gte=0"`
	OtherLimits      map[string]any `json:"other_limits" yaml:"other_limits"`
}

// Fees holds the trading cost assumptions used for cost estimates.
type Fees struct {
	CommissionPerContract float64        `json:"commission_per_contract" yaml:"commission_per_contract" validate:"gte=0"`
	SlippageBps           float64        `json:"slippage_bps" yaml:"slippage_bps" validate:"gte=0"`
	BorrowCostBps         float64        `json:"borrow_cost_bps" yaml:"borrow_cost_bps" validate:"gte=0"`
	OtherFees             map[string]any `json:"other_fees" yaml:"other_fees"`
}

// Window parses the scenario's inclusive time bounds.
func (s *Scenario) Window() (start, end time.Time, err error) {
	start, err = market.ParseTimestamp(s.StartTS)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_ts: %w", err)
	}
	end, err = market.ParseTimestamp(s.EndTS)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_ts: %w", err)
	}
	if err := market.CheckWindow(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Backtest converts the scenario into an engine configuration.
func (s *Scenario) Backtest() (backtest.Config, error) {
	start, end, err := s.Window()
	if err != nil {
		return backtest.Config{}, err
	}
	return backtest.Config{
		ScenarioID: s.ID,
		Symbols:    append([]string(nil), s.Universe.Symbols...),
		Start:      start,
		End:        end,
		Strategies: append([]strategies.Spec(nil), s.Strategies...),
		LogPath:    s.Universe.StatePath,
	}, nil
}

// StrategyIDs lists strategy ids in configuration order.
func (s *Scenario) StrategyIDs() []string {
	ids := make([]string, 0, len(s.Strategies))
	for _, st := range s.Strategies {
		ids = append(ids, st.ID)
	}
	return ids
}

func (s *Scenario) applyDefaults() {
	if s.Env == "" {
		s.Env = DefaultEnv
	}
	if s.WorldModel == "" {
		s.WorldModel = DefaultWorldModel
	}
	if s.ArtifactsDir == "" {
		s.ArtifactsDir = DefaultArtifactsDir
	}
}

// Parse decodes a YAML or JSON scenario document, fills defaults and
// validates it.
func Parse(data []byte) (*Scenario, error) {
	s := &Scenario{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, s); err != nil {
		s = &Scenario{}
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse scenario (tried YAML and JSON): %w", err)
		}
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return s, nil
}

// LoadFromFile reads and validates a scenario file.
func LoadFromFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return Parse(data)
}

// JSON returns the indented form written to scenario.json.
func (s *Scenario) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// SaveToFile writes the scenario as YAML for .yaml/.yml paths and JSON
// otherwise, creating parent directories.
func (s *Scenario) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = s.JSON()
	}
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create scenario dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scenario file: %w", err)
	}
	return nil
}

// Default returns a runnable sample: two symbols over one hour of synthetic
// bars with one strategy of each kind.
func Default() *Scenario {
	return &Scenario{
		ID:          "sample_vol_world_studio1",
		Description: "Synthetic one hour replay with one strategy of each kind",
		StartTS:     "2025-01-02T14:30:00Z",
		EndTS:       "2025-01-02T15:30:00Z",
		Universe: Universe{
			ID:      "sample_universe",
			Symbols: []string{"SPY", "QQQ"},
		},
		Strategies: []strategies.Spec{
			{ID: "vol_1", Kind: string(strategies.KindVol), Params: map[string]any{
				"vol_target":   strategies.DefaultVolTarget,
				"vol_leverage": strategies.DefaultVolLeverage,
			}},
			{ID: "gamma_1", Kind: string(strategies.KindGamma), Params: map[string]any{
				"gamma_scale": strategies.DefaultGammaScale,
				"ref_price":   strategies.DefaultRefPrice,
			}},
			{ID: "uw_1", Kind: string(strategies.KindUW), Params: map[string]any{
				"trend_sensitivity": strategies.DefaultTrendSensitivity,
			}},
		},
		Risk: Risk{
			MaxGrossNotional: 1_000_000,
			MaxLeverage:      5,
			MaxDrawdown:      0.2,
		},
		Fees: Fees{
			CommissionPerContract: 0.65,
			SlippageBps:           1,
		},
		Env:          DefaultEnv,
		WorldModel:   DefaultWorldModel,
		ArtifactsDir: DefaultArtifactsDir,
	}
}
