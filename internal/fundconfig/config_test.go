package fundconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
recommended_funds:
  - symbol: fcntx
    name: Fidelity Contrafund
    asset_class: Large Cap Growth
  - symbol: DODGX
    name: Dodge & Cox Stock
    asset_class: Large Cap Value
asset_class_benchmarks:
  Large Cap Growth:
    ticker: IWF
    name: iShares Russell 1000 Growth
  Large Cap Blend:
    ticker: VFIAX
    name: Vanguard 500 Index Admiral
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Len(t, cfg.RecommendedFunds, 2)
	assert.Equal(t, []string{"Large Cap Blend", "Large Cap Growth"}, cfg.Classes())

	rec, ok := cfg.Recommended("FCNTX")
	require.True(t, ok)
	assert.Equal(t, "Large Cap Growth", rec.AssetClass)

	class, b, ok := cfg.BenchmarkClass("VFIAX")
	require.True(t, ok)
	assert.Equal(t, "Large Cap Blend", class)
	assert.Equal(t, "Vanguard 500 Index Admiral", b.Name)

	_, _, ok = cfg.BenchmarkClass("FCNTX")
	assert.False(t, ok)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("recomended_funds: []\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{
			name:  "missing symbol",
			cfg:   Config{RecommendedFunds: []RecommendedFund{{AssetClass: "X"}}},
			field: "recommended_funds[0].symbol",
		},
		{
			name:  "missing class",
			cfg:   Config{RecommendedFunds: []RecommendedFund{{Symbol: "AAA"}}},
			field: "recommended_funds[0].asset_class",
		},
		{
			name: "duplicate symbol",
			cfg: Config{RecommendedFunds: []RecommendedFund{
				{Symbol: "AAA", AssetClass: "X"},
				{Symbol: "aaa ", AssetClass: "Y"},
			}},
			field: "recommended_funds[1].symbol",
		},
		{
			name: "ticker benchmarks two classes",
			cfg: Config{AssetClassBenchmarks: map[string]Benchmark{
				"A": {Ticker: "SPY"},
				"B": {Ticker: "spy"},
			}},
			field: "asset_class_benchmarks[B].ticker",
		},
		{
			name:  "empty ticker",
			cfg:   Config{AssetClassBenchmarks: map[string]Benchmark{"A": {}}},
			field: "asset_class_benchmarks[A].ticker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			var verr ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	warnings := Warnings(cfg)
	require.Len(t, warnings, 1)
	assert.Equal(t, "NO_BENCHMARK", warnings[0].Code)
}

func TestLoadAndHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, raw, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleYAML, string(raw))

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// 동일 설정 → 동일 해시
	again, _, err := Load(path)
	require.NoError(t, err)
	hash2, err := Hash(again)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)
}

func TestCleanSymbol(t *testing.T) {
	assert.Equal(t, "VFIAX", CleanSymbol(" vfiax* "))
	assert.Equal(t, "BRK.B", CleanSymbol("brk.b"))
	assert.Equal(t, "", CleanSymbol("  "))
}
