package enrollment

import (
	"math"
	"time"

	"github.com/trezcool/rekodi/core"
)

// Statuses
const (
	StatusEnrolled  = "enrolled"
	StatusDropped   = "dropped"
	StatusWithdrawn = "withdrawn"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusAudit     = "audit"
)

// Record is a per-student, per-course, per-term registration.
// (StudentID, CourseID, Semester, AcademicYear, Section) is unique.
type Record struct {
	ID           string `json:"id"`
	StudentID    string `json:"student_id"`
	CourseID     string `json:"course_id"`
	Semester     string `json:"semester"`
	AcademicYear string `json:"academic_year"`
	Section      string `json:"section"`
	Status       string `json:"status"`

	AmountDue  float64 `json:"amount_due"`
	AmountPaid float64 `json:"amount_paid"`

	// attendance aggregates; derived, recomputed by the attendance service
	TotalClasses         int `json:"total_classes"`
	AttendedClasses      int `json:"attended_classes"`
	AttendancePercentage int `json:"attendance_percentage"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// AttendancePercentage derives the attendance percentage from the counters:
// rounded, clamped to [0,100], and 100 when no classes have been held yet.
func AttendancePercentage(attended, total int) int {
	if total <= 0 {
		return 100
	}
	pct := int(math.Round(float64(attended) / float64(total) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// NewEnrollment contains information needed to register a student on a course section.
type NewEnrollment struct {
	StudentID    string  `json:"student_id" validate:"required"`
	CourseID     string  `json:"course_id" validate:"required"`
	Semester     string  `json:"semester" validate:"required,oneof=fall spring summer"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	Section      string  `json:"section" validate:"required"`
	AmountDue    float64 `json:"amount_due" validate:"min=0"`
}

func (ne *NewEnrollment) Validate() error {
	ne.StudentID = core.CleanString(ne.StudentID)
	ne.CourseID = core.CleanString(ne.CourseID)
	ne.Semester = core.CleanString(ne.Semester, true /* lower */)
	ne.AcademicYear = core.CleanString(ne.AcademicYear)
	ne.Section = core.CleanString(ne.Section, true /* lower */)
	return core.Validate.Struct(ne)
}

// QueryFilter filters enrollment queries.
type QueryFilter struct {
	StudentID    string `query:"student_id"`
	CourseID     string `query:"course_id"`
	Semester     string `query:"semester"`
	AcademicYear string `query:"academic_year"`
	Status       string `query:"status"`
}
