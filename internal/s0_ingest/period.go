package s0_ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

// ErrInvalidPeriod is returned for snapshot ids that are not YYYY-MM
var ErrInvalidPeriod = errors.New("invalid period")

// Checksum returns the content hash of an uploaded source file
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PeriodID formats the snapshot id of the month containing t
func PeriodID(t time.Time) string {
	return t.Format(contracts.PeriodLayout)
}

// ParsePeriodID validates a YYYY-MM snapshot id
func ParsePeriodID(id string) (time.Time, error) {
	t, err := time.Parse(contracts.PeriodLayout, id)
	if err != nil || len(id) != len(contracts.PeriodLayout) {
		return time.Time{}, fmt.Errorf("%w %q (want YYYY-MM)", ErrInvalidPeriod, id)
	}
	return t, nil
}

var periodInName = regexp.MustCompile(`(\d{4})[-_]?(\d{2})`)

// PeriodFromFilename extracts a YYYY-MM id from names like "2024-06 funds.csv"
func PeriodFromFilename(name string) (string, bool) {
	m := periodInName.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	id := m[1] + "-" + m[2]
	if _, err := ParsePeriodID(id); err != nil {
		return "", false
	}
	return id, true
}
