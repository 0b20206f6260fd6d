package contracts

import "time"

// PeriodLayout is the layout of snapshot ids (YYYY-MM)
const PeriodLayout = "2006-01"

// Snapshot is one monthly scored-and-tagged dataset
// ⭐ SSOT: S4 스냅샷 레코드 (Rows는 저장 후 변경 불가, Active/Deleted만 변경)
type Snapshot struct {
	ID       string    `json:"id"`
	Rows     []Fund    `json:"rows"`
	Source   string    `json:"source"`
	Checksum string    `json:"checksum"`
	Uploaded time.Time `json:"uploaded"`
	Note     string    `json:"note,omitempty"`
	Active   bool      `json:"active"`
	Deleted  bool      `json:"deleted"`
}

// Find returns the row for a symbol
func (s *Snapshot) Find(symbol string) (*Fund, bool) {
	for i := range s.Rows {
		if s.Rows[i].Symbol == symbol {
			return &s.Rows[i], true
		}
	}
	return nil, false
}

// Summary returns the snapshot without rows
func (s *Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:       s.ID,
		Source:   s.Source,
		Checksum: s.Checksum,
		Uploaded: s.Uploaded,
		Note:     s.Note,
		Active:   s.Active,
		Deleted:  s.Deleted,
		RowCount: len(s.Rows),
	}
}

// SnapshotSummary is a row-less view used by listings
type SnapshotSummary struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Checksum string    `json:"checksum"`
	Uploaded time.Time `json:"uploaded"`
	Note     string    `json:"note,omitempty"`
	Active   bool      `json:"active"`
	Deleted  bool      `json:"deleted"`
	RowCount int       `json:"row_count"`
}
