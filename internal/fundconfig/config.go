package fundconfig

import "sort"

// Config는 분석가가 편집하는 펀드 설정 (추천 펀드 + 자산군 벤치마크)
type Config struct {
	RecommendedFunds     []RecommendedFund    `yaml:"recommended_funds" json:"recommended_funds" msgpack:"recommended_funds"`
	AssetClassBenchmarks map[string]Benchmark `yaml:"asset_class_benchmarks" json:"asset_class_benchmarks" msgpack:"asset_class_benchmarks"`
}

// RecommendedFund is a fund on the recommended holdings list
type RecommendedFund struct {
	Symbol     string `yaml:"symbol" json:"symbol" msgpack:"symbol"`
	Name       string `yaml:"name" json:"name" msgpack:"name"`
	AssetClass string `yaml:"asset_class" json:"asset_class" msgpack:"asset_class"`
}

// Benchmark is the reference fund of one asset class
type Benchmark struct {
	Ticker string `yaml:"ticker" json:"ticker" msgpack:"ticker"`
	Name   string `yaml:"name" json:"name" msgpack:"name"`
}

// Recommended returns the recommended entry for a (cleaned) symbol
func (c *Config) Recommended(symbol string) (RecommendedFund, bool) {
	if c == nil {
		return RecommendedFund{}, false
	}
	for _, f := range c.RecommendedFunds {
		if CleanSymbol(f.Symbol) == symbol {
			return f, true
		}
	}
	return RecommendedFund{}, false
}

// BenchmarkClass returns the asset class a (cleaned) ticker benchmarks
func (c *Config) BenchmarkClass(symbol string) (string, Benchmark, bool) {
	if c == nil {
		return "", Benchmark{}, false
	}
	for _, class := range c.Classes() {
		b := c.AssetClassBenchmarks[class]
		if CleanSymbol(b.Ticker) == symbol {
			return class, b, true
		}
	}
	return "", Benchmark{}, false
}

// Classes returns the configured benchmark asset classes in sorted order
func (c *Config) Classes() []string {
	if c == nil {
		return nil
	}
	classes := make([]string, 0, len(c.AssetClassBenchmarks))
	for class := range c.AssetClassBenchmarks {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}
