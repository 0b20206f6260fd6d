package s1_benchmark

import (
	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/internal/fundconfig"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// Report describes what one injection pass did
type Report struct {
	Marked      []string // existing rows flagged as benchmark
	Synthesized []string // placeholder rows added
}

// Injector implements S1: every configured asset class gets exactly one benchmark row
// ⭐ SSOT: 벤치마크 행 주입은 여기서만
type Injector struct {
	funds  *fundconfig.Config
	logger *logger.Logger
}

// NewInjector creates a benchmark injector
func NewInjector(funds *fundconfig.Config, log *logger.Logger) *Injector {
	if log == nil {
		log = logger.Nop()
	}
	return &Injector{
		funds:  funds,
		logger: log.WithStage(contracts.StageBenchmark.ShortName()),
	}
}

// Inject runs the injection and logs the outcome
func (i *Injector) Inject(rows []contracts.NormalisedRow) []contracts.NormalisedRow {
	out, report := InjectWithReport(rows, i.funds)

	i.logger.WithFields(map[string]interface{}{
		"rows":        len(rows),
		"marked":      len(report.Marked),
		"synthesized": len(report.Synthesized),
	}).Info("Benchmark rows ensured")

	return out
}

// Inject returns a copy of rows in which every configured asset class has a
// benchmark row. The input slice and its rows are never modified.
func Inject(rows []contracts.NormalisedRow, funds *fundconfig.Config) []contracts.NormalisedRow {
	out, _ := InjectWithReport(rows, funds)
	return out
}

// InjectWithReport is Inject plus a summary of the changes
func InjectWithReport(rows []contracts.NormalisedRow, funds *fundconfig.Config) ([]contracts.NormalisedRow, Report) {
	var report Report

	out := make([]contracts.NormalisedRow, len(rows), len(rows)+len(funds.Classes()))
	for idx, row := range rows {
		row.Metrics = row.Metrics.Clone()
		out[idx] = row
	}

	// 같은 ticker가 여러 자산군에 설정되면 정렬 순서상 첫 자산군이 우선
	claimed := make(map[int]bool)

	for _, class := range funds.Classes() {
		bench := funds.AssetClassBenchmarks[class]
		ticker := fundconfig.CleanSymbol(bench.Ticker)
		if ticker == "" {
			continue
		}

		idx := findSymbol(out, ticker)
		if idx < 0 {
			out = append(out, placeholder(class, ticker, bench.Name))
			claimed[len(out)-1] = true
			report.Synthesized = append(report.Synthesized, ticker)
			continue
		}
		if claimed[idx] {
			continue
		}
		claimed[idx] = true

		row := &out[idx]
		row.IsBenchmark = true
		row.BenchmarkForClass = class
		if !hasResolvedClass(row.AssetClass) {
			row.AssetClass = class
		}
		if row.FundName == "" {
			row.FundName = bench.Name
		}
		report.Marked = append(report.Marked, ticker)
	}

	return out, report
}

func findSymbol(rows []contracts.NormalisedRow, ticker string) int {
	for i := range rows {
		if fundconfig.CleanSymbol(rows[i].Symbol) == ticker {
			return i
		}
	}
	return -1
}

// placeholder builds a benchmark row with every metric absent
func placeholder(class, ticker, name string) contracts.NormalisedRow {
	return contracts.NormalisedRow{
		Symbol:            ticker,
		FundName:          name,
		Metrics:           contracts.MetricVector{},
		AssetClass:        class,
		IsBenchmark:       true,
		BenchmarkForClass: class,
	}
}

// hasResolvedClass: 이미 구체적인 자산군이 있으면 주입된 자산군으로 덮어쓰지 않음
func hasResolvedClass(class string) bool {
	return class != "" && class != contracts.AssetClassUnknown && class != contracts.AssetClassBenchmark
}
