package s0_ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/wonny/fundlens/backend/internal/fundconfig"
)

// ClassLookup resolves symbols to asset classes from an external map file.
// It is constructed explicitly and passed to parsers; nothing is global, so
// concurrent pipeline runs and tests never share state.
type ClassLookup struct {
	mu      sync.RWMutex
	classes map[string]string
	loaded  bool
}

// NewClassLookup creates an empty lookup
func NewClassLookup() *ClassLookup {
	return &ClassLookup{classes: make(map[string]string)}
}

// Load replaces the lookup contents from a CSV with symbol and asset class columns
func (l *ClassLookup) Load(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read class map header: %w", err)
	}

	symIdx, classIdx := -1, -1
	for i, h := range header {
		switch col, _ := CanonicalColumn(h); col {
		case columnSymbol:
			symIdx = i
		case columnAssetClass:
			classIdx = i
		}
	}
	if symIdx < 0 || classIdx < 0 {
		return fmt.Errorf("class map needs symbol and asset class columns: %w", ErrMissingColumns)
	}

	classes := make(map[string]string)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read class map: %w", err)
		}
		if symIdx >= len(record) || classIdx >= len(record) {
			continue
		}
		sym := fundconfig.CleanSymbol(record[symIdx])
		class := strings.TrimSpace(record[classIdx])
		if sym == "" || class == "" {
			continue
		}
		classes[sym] = class
	}

	l.mu.Lock()
	l.classes = classes
	l.loaded = true
	l.mu.Unlock()

	return nil
}

// LoadFile loads the lookup from a CSV file
func (l *ClassLookup) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open class map: %w", err)
	}
	defer f.Close()

	return l.Load(f)
}

// Clear empties the lookup
func (l *ClassLookup) Clear() {
	l.mu.Lock()
	l.classes = make(map[string]string)
	l.loaded = false
	l.mu.Unlock()
}

// Resolve returns the asset class of a cleaned symbol
func (l *ClassLookup) Resolve(symbol string) (string, bool) {
	if l == nil {
		return "", false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	class, ok := l.classes[symbol]
	return class, ok
}

// Loaded reports whether Load succeeded since the last Clear
func (l *ClassLookup) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Len returns the number of mapped symbols
func (l *ClassLookup) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.classes)
}
