package attendance

import (
	"time"

	"github.com/trezcool/rekodi/core"
)

// Session is one attendance mark for an enrollment on a given date.
// (EnrollmentID, Date) is unique.
type Session struct {
	ID           string    `json:"id"`
	EnrollmentID string    `json:"enrollment_id"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Present      bool      `json:"present"`
	RecordedBy   string    `json:"recorded_by"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// NewSession contains information needed to record one attendance mark.
type NewSession struct {
	EnrollmentID string `json:"enrollment_id" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Present      bool   `json:"present"`
}

func (ns *NewSession) Validate() error {
	ns.EnrollmentID = core.CleanString(ns.EnrollmentID)
	ns.Date = core.CleanString(ns.Date)
	return core.Validate.Struct(ns)
}

// BulkResult accumulates per-item outcomes of a bulk recording; a single bad
// row never aborts the batch.
type BulkResult struct {
	Successful []Session     `json:"successful"`
	Failed     []BulkFailure `json:"failed"`
}

type BulkFailure struct {
	Index int        `json:"index"`
	Item  NewSession `json:"item"`
	Error string     `json:"error"`
}
