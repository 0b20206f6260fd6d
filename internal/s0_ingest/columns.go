package s0_ingest

import (
	"strings"
	"unicode"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

// Non-metric columns
const (
	columnSymbol     = "symbol"
	columnName       = "name"
	columnAssetClass = "assetClass"
)

// headerAliases maps a normalised header (lower case, letters and digits only)
// to its canonical column. 같은 개념의 여러 헤더 표기를 여기서 하나로 정리.
var headerAliases = map[string]string{
	"symbol":       columnSymbol,
	"ticker":       columnSymbol,
	"tickersymbol": columnSymbol,
	"fundsymbol":   columnSymbol,

	"name":     columnName,
	"fund":     columnName,
	"fundname": columnName,

	"assetclass":          columnAssetClass,
	"category":            columnAssetClass,
	"morningstarcategory": columnAssetClass,

	"ytd":        string(contracts.MetricYTD),
	"ytdreturn":  string(contracts.MetricYTD),
	"yeartodate": string(contracts.MetricYTD),

	"1y":          string(contracts.MetricOneYear),
	"1yr":         string(contracts.MetricOneYear),
	"1year":       string(contracts.MetricOneYear),
	"1yrreturn":   string(contracts.MetricOneYear),
	"1yearreturn": string(contracts.MetricOneYear),
	"oneyear":     string(contracts.MetricOneYear),

	"3y":          string(contracts.MetricThreeYear),
	"3yr":         string(contracts.MetricThreeYear),
	"3year":       string(contracts.MetricThreeYear),
	"3yrreturn":   string(contracts.MetricThreeYear),
	"3yearreturn": string(contracts.MetricThreeYear),
	"threeyear":   string(contracts.MetricThreeYear),

	"5y":          string(contracts.MetricFiveYear),
	"5yr":         string(contracts.MetricFiveYear),
	"5year":       string(contracts.MetricFiveYear),
	"5yrreturn":   string(contracts.MetricFiveYear),
	"5yearreturn": string(contracts.MetricFiveYear),
	"fiveyear":    string(contracts.MetricFiveYear),

	"10y":          string(contracts.MetricTenYear),
	"10yr":         string(contracts.MetricTenYear),
	"10year":       string(contracts.MetricTenYear),
	"10yrreturn":   string(contracts.MetricTenYear),
	"10yearreturn": string(contracts.MetricTenYear),
	"tenyear":      string(contracts.MetricTenYear),

	"sharpe3y":       string(contracts.MetricSharpe3Y),
	"sharperatio3y":  string(contracts.MetricSharpe3Y),
	"sharperatio3yr": string(contracts.MetricSharpe3Y),
	"3yrsharperatio": string(contracts.MetricSharpe3Y),
	"3yearsharpe":    string(contracts.MetricSharpe3Y),
	"sharpe":         string(contracts.MetricSharpe3Y),

	"stddev3y":            string(contracts.MetricStdDev3Y),
	"stddev3yr":           string(contracts.MetricStdDev3Y),
	"3yrstddev":           string(contracts.MetricStdDev3Y),
	"standarddeviation3y": string(contracts.MetricStdDev3Y),

	"stddev5y":            string(contracts.MetricStdDev5Y),
	"stddev5yr":           string(contracts.MetricStdDev5Y),
	"5yrstddev":           string(contracts.MetricStdDev5Y),
	"standarddeviation5y": string(contracts.MetricStdDev5Y),

	"upcapture3y":      string(contracts.MetricUpCapture3Y),
	"upcaptureratio3y": string(contracts.MetricUpCapture3Y),
	"3yrupcapture":     string(contracts.MetricUpCapture3Y),
	"upcapture":        string(contracts.MetricUpCapture3Y),

	"downcapture3y":      string(contracts.MetricDownCapture3Y),
	"downcaptureratio3y": string(contracts.MetricDownCapture3Y),
	"3yrdowncapture":     string(contracts.MetricDownCapture3Y),
	"downcapture":        string(contracts.MetricDownCapture3Y),

	"alpha5y":  string(contracts.MetricAlpha5Y),
	"alpha5yr": string(contracts.MetricAlpha5Y),
	"5yralpha": string(contracts.MetricAlpha5Y),
	"alpha":    string(contracts.MetricAlpha5Y),

	"expenseratio":      string(contracts.MetricExpenseRatio),
	"netexpenseratio":   string(contracts.MetricExpenseRatio),
	"grossexpenseratio": string(contracts.MetricExpenseRatio),
	"er":                string(contracts.MetricExpenseRatio),

	"managertenure":        string(contracts.MetricManagerTenure),
	"managertenureyears":   string(contracts.MetricManagerTenure),
	"longestmanagertenure": string(contracts.MetricManagerTenure),
	"tenure":               string(contracts.MetricManagerTenure),
}

// normaliseHeader reduces a header cell to lower-case letters and digits
func normaliseHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalColumn returns the canonical column for a raw header
func CanonicalColumn(header string) (string, bool) {
	col, ok := headerAliases[normaliseHeader(header)]
	return col, ok
}
