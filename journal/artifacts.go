package journal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backtester/internal/backtest"
	"github.com/rustyeddy/backtester/internal/scenario"
)

// Artifact keys returned by WriteAll.
const (
	ArtifactScenario    = "scenario"
	ArtifactEquityCurve = "equity_curve"
	ArtifactTrades      = "trades"
	ArtifactSummary     = "summary"
	ArtifactDiagnostics = "diagnostics"
)

// ArtifactWriter lays out one directory per scenario under BaseDir.
type ArtifactWriter struct {
	BaseDir string
}

func NewArtifactWriter(baseDir string) *ArtifactWriter {
	if baseDir == "" {
		baseDir = scenario.DefaultArtifactsDir
	}
	return &ArtifactWriter{BaseDir: baseDir}
}

// Dir is where a scenario's artifacts land.
func (w *ArtifactWriter) Dir(scenarioID string) string {
	return filepath.Join(w.BaseDir, scenarioID)
}

// WriteAll writes the scenario, equity curve, trades, summary and
// diagnostics for one run and returns the written paths by key. Files of a
// previous run of the same scenario are overwritten.
func (w *ArtifactWriter) WriteAll(sc *scenario.Scenario, res *backtest.Result) (map[string]string, error) {
	dir := w.Dir(sc.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}

	diag, err := Diagnostics(sc, res)
	if err != nil {
		return nil, err
	}

	scenarioJSON, err := sc.JSON()
	if err != nil {
		return nil, fmt.Errorf("marshal scenario: %w", err)
	}

	files := []struct {
		key  string
		name string
		data func() ([]byte, error)
	}{
		{ArtifactScenario, "scenario.json", func() ([]byte, error) { return scenarioJSON, nil }},
		{ArtifactEquityCurve, "equity_curve.json", func() ([]byte, error) { return indent(res.EquityCurve) }},
		{ArtifactTrades, "trades.json", func() ([]byte, error) { return indent(res.Trades) }},
		{ArtifactSummary, "summary.json", func() ([]byte, error) { return indent(res.Summary) }},
		{ArtifactDiagnostics, "diagnostics.txt", func() ([]byte, error) { return []byte(diag), nil }},
	}

	paths := make(map[string]string, len(files))
	for _, f := range files {
		data, err := f.data()
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", f.key, err)
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths[f.key] = path
	}
	return paths, nil
}

func indent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

var diagnosticsTemplate = template.Must(template.New("diagnostics").
	Funcs(template.FuncMap{
		"fixed": func(x float64) string { return decimal.NewFromFloat(x).StringFixed(6) },
		"join":  strings.Join,
	}).
	Parse(`Backtest diagnostics
====================
Scenario:    {{ .Scenario.ID }}
World model: {{ .Scenario.WorldModel }}
Env:         {{ .Scenario.Env }}
Universe:    {{ .Scenario.Universe.ID }}
Symbols:     {{ join .Scenario.Universe.Symbols ", " }}
Strategies:  {{ join .StrategyIDs ", " }}

Summary:
{{ .SummaryJSON }}

Final equity: {{ fixed .Result.Summary.FinalEquity }}
Max drawdown: {{ fixed .Result.Summary.MaxDrawdown }}
Gross notional (open positions): {{ fixed .GrossNotional }}

Estimated fees (not deducted):
  commission: {{ fixed .Fees.Commission }}
  slippage:   {{ fixed .Fees.Slippage }}
  total:      {{ fixed .Fees.Total }}

Risk limits:
{{- if .Breaches }}
{{- range .Breaches }}
  BREACH {{ .Limit }}: {{ fixed .Value }} > {{ fixed .Threshold }}
{{- end }}
{{- else }}
  all within limits
{{- end }}
`))

// Diagnostics renders the human readable run report.
func Diagnostics(sc *scenario.Scenario, res *backtest.Result) (string, error) {
	summary, err := indent(res.Summary)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	data := struct {
		Scenario      *scenario.Scenario
		Result        *backtest.Result
		StrategyIDs   []string
		SummaryJSON   string
		GrossNotional float64
		Fees          scenario.FeeEstimate
		Breaches      []scenario.Breach
	}{
		Scenario:      sc,
		Result:        res,
		StrategyIDs:   sc.StrategyIDs(),
		SummaryJSON:   string(summary),
		GrossNotional: scenario.GrossNotional(res.Positions),
		Fees:          sc.Fees.Estimate(res.Trades),
		Breaches:      sc.Risk.Check(res),
	}

	var buf bytes.Buffer
	if err := diagnosticsTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render diagnostics: %w", err)
	}
	return buf.String(), nil
}
