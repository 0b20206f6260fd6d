package fundconfig

import "fmt"

// ValidationError 검증 실패 (설정 로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	seen := make(map[string]bool)
	for i, f := range cfg.RecommendedFunds {
		field := fmt.Sprintf("recommended_funds[%d]", i)
		sym := CleanSymbol(f.Symbol)
		if sym == "" {
			return ValidationError{field + ".symbol", "required"}
		}
		if f.AssetClass == "" {
			return ValidationError{field + ".asset_class", "required"}
		}
		if seen[sym] {
			return ValidationError{field + ".symbol", fmt.Sprintf("duplicate symbol %s", sym)}
		}
		seen[sym] = true
	}

	// 하나의 티커가 두 자산군의 벤치마크가 될 수 없음
	tickers := make(map[string]string)
	for _, class := range cfg.Classes() {
		b := cfg.AssetClassBenchmarks[class]
		field := fmt.Sprintf("asset_class_benchmarks[%s]", class)
		if class == "" {
			return ValidationError{"asset_class_benchmarks", "empty asset class key"}
		}
		ticker := CleanSymbol(b.Ticker)
		if ticker == "" {
			return ValidationError{field + ".ticker", "required"}
		}
		if other, ok := tickers[ticker]; ok {
			return ValidationError{field + ".ticker", fmt.Sprintf("%s already benchmarks %s", ticker, other)}
		}
		tickers[ticker] = class
	}

	return nil
}

// Warnings returns non-fatal findings
func Warnings(cfg *Config) []Warning {
	var warnings []Warning
	for _, f := range cfg.RecommendedFunds {
		if _, ok := cfg.AssetClassBenchmarks[f.AssetClass]; !ok {
			warnings = append(warnings, Warning{
				Code:    "NO_BENCHMARK",
				Message: fmt.Sprintf("%s is in asset class %q which has no benchmark", f.Symbol, f.AssetClass),
			})
		}
	}
	return warnings
}
