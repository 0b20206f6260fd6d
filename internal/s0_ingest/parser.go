package s0_ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/internal/fundconfig"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// ErrMissingColumns is returned in strict mode when required columns are absent
var ErrMissingColumns = errors.New("missing required columns")

// MissingColumnsError lists the canonical columns that were not found
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns.Error(), strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// Parser implements S0: CSV → []NormalisedRow
// ⭐ SSOT: 헤더 해석과 자산군 결정은 여기서만
type Parser struct {
	strict bool
	funds  *fundconfig.Config
	lookup *ClassLookup
	logger *logger.Logger
}

// NewParser creates a parser. strict=false tolerates missing metric columns
// (values become absent) and is meant for tests and diagnostics.
func NewParser(funds *fundconfig.Config, lookup *ClassLookup, strict bool, log *logger.Logger) *Parser {
	if log == nil {
		log = logger.Nop()
	}
	return &Parser{
		strict: strict,
		funds:  funds,
		lookup: lookup,
		logger: log.WithStage(contracts.StageIngest.ShortName()),
	}
}

// ParseStats summarises one parse
type ParseStats struct {
	Rows           int
	SkippedNoSym   int
	Duplicates     int
	BadNumbers     int
	MissingColumns []string
}

// Parse reads all rows from r
func (p *Parser) Parse(r io.Reader) ([]contracts.NormalisedRow, error) {
	rows, _, err := p.ParseWithStats(r)
	return rows, err
}

// ParseWithStats reads all rows from r and reports what was dropped
func (p *Parser) ParseWithStats(r io.Reader) ([]contracts.NormalisedRow, ParseStats, error) {
	var stats ParseStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, &MissingColumnsError{Columns: []string{columnSymbol}}
	}
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int)
	for i, h := range header {
		col, ok := CanonicalColumn(h)
		if !ok {
			continue
		}
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	if _, ok := index[columnSymbol]; !ok {
		return nil, stats, &MissingColumnsError{Columns: []string{columnSymbol}}
	}

	var missing []string
	for _, m := range contracts.AllMetrics {
		if _, ok := index[string(m)]; !ok {
			missing = append(missing, string(m))
		}
	}
	stats.MissingColumns = missing
	if len(missing) > 0 {
		if p.strict {
			return nil, stats, &MissingColumnsError{Columns: missing}
		}
		p.logger.WithField("columns", missing).Warn("Missing metric columns tolerated (lenient mode)")
	}

	seen := make(map[string]bool)
	rows := make([]contracts.NormalisedRow, 0)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read row %d: %w", stats.Rows+stats.SkippedNoSym+stats.Duplicates+2, err)
		}

		symbol := fundconfig.CleanSymbol(cell(record, index, columnSymbol))
		if symbol == "" {
			stats.SkippedNoSym++
			continue
		}
		if seen[symbol] {
			stats.Duplicates++
			continue
		}
		seen[symbol] = true

		row := contracts.NormalisedRow{
			Symbol:   symbol,
			FundName: cell(record, index, columnName),
			Metrics:  make(contracts.MetricVector),
		}

		for _, m := range contracts.AllMetrics {
			raw := cell(record, index, string(m))
			v, ok, bad := parseNumber(raw)
			if bad {
				stats.BadNumbers++
			}
			if ok {
				row.Metrics[m] = v
			}
		}

		p.resolveClass(&row, cell(record, index, columnAssetClass))
		rows = append(rows, row)
		stats.Rows++
	}

	p.logger.WithFields(map[string]interface{}{
		"rows":        stats.Rows,
		"no_symbol":   stats.SkippedNoSym,
		"duplicates":  stats.Duplicates,
		"bad_numbers": stats.BadNumbers,
	}).Info("Parsed source file")

	return rows, stats, nil
}

// resolveClass decides asset class and benchmark flags.
// 순서: 파일의 자산군 컬럼 → 추천 펀드 → 벤치마크 설정 → lookup → "Unknown"
func (p *Parser) resolveClass(row *contracts.NormalisedRow, explicit string) {
	explicit = strings.TrimSpace(explicit)

	if rec, ok := p.funds.Recommended(row.Symbol); ok {
		row.Recommended = true
		if row.FundName == "" {
			row.FundName = rec.Name
		}
	}

	benchClass, bench, isBench := p.funds.BenchmarkClass(row.Symbol)
	if isBench {
		row.IsBenchmark = true
		row.BenchmarkForClass = benchClass
		if row.FundName == "" {
			row.FundName = bench.Name
		}
	}

	switch {
	case isResolved(explicit):
		row.AssetClass = explicit
	case row.Recommended:
		rec, _ := p.funds.Recommended(row.Symbol)
		row.AssetClass = rec.AssetClass
	case isBench:
		row.AssetClass = benchClass
	default:
		if class, ok := p.lookup.Resolve(row.Symbol); ok {
			row.AssetClass = class
		} else {
			row.AssetClass = contracts.AssetClassUnknown
		}
	}
}

// isResolved reports whether a class is a real peer bucket
func isResolved(class string) bool {
	return class != "" && class != contracts.AssetClassUnknown && class != contracts.AssetClassBenchmark
}

func cell(record []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseNumber cleans spreadsheet number formatting.
// Returns (value, present, unparseable).
func parseNumber(raw string) (float64, bool, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToUpper(s) {
	case "", "-", "--", "N/A", "NA", "NAN", "NULL":
		return 0, false, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer("%", "", ",", "", "$", "", " ", "").Replace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, true
	}
	if negative {
		v = -v
	}
	return v, true, false
}

// SortedClasses returns the distinct asset classes of rows (for logging/CLI)
func SortedClasses(rows []contracts.NormalisedRow) []string {
	set := make(map[string]bool)
	for _, r := range rows {
		set[r.AssetClass] = true
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
