package grade

import (
	"time"

	"github.com/trezcool/rekodi/core"
)

// Statuses
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusWithdrawn  = "withdrawn"
	StatusIncomplete = "incomplete"
)

// Non-punitive non-grades: excluded from GPA math altogether.
// An 'F' on the other hand stays in both the numerator and the denominator.
const (
	LetterWithdrawn  = "W"
	LetterIncomplete = "I"
)

// letterScale maps a weighted percentage lower bound to a letter grade and
// its grade points on the 4.0 scale. Evaluated top-down, first match wins.
var letterScale = []struct {
	MinPercent  float64
	Letter      string
	GradePoints float64
}{
	{90, "A", 4.0},
	{85, "B+", 3.5},
	{80, "B", 3.0},
	{75, "C+", 2.5},
	{70, "C", 2.0},
	{65, "D+", 1.5},
	{60, "D", 1.0},
	{0, "F", 0.0},
}

// LetterForPercent resolves the letter grade and grade points for a weighted percentage.
func LetterForPercent(pct float64) (string, float64) {
	for _, s := range letterScale {
		if pct >= s.MinPercent {
			return s.Letter, s.GradePoints
		}
	}
	return "F", 0
}

type (
	// Assessment is one graded component of a course (quiz, midterm, project...).
	Assessment struct {
		Type         string  `json:"type" validate:"required"`
		EarnedPoints float64 `json:"earned_points" validate:"min=0"`
		MaxPoints    float64 `json:"max_points" validate:"gt=0"`
		Weight       float64 `json:"weight" validate:"gt=0,lte=100"`
	}

	// Modification is an audit entry appended when an approved appeal changes
	// a finalized outcome. History is never deleted.
	Modification struct {
		Reason           string    `json:"reason"`
		ApprovedBy       string    `json:"approved_by"`
		PrevLetterGrade  string    `json:"prev_letter_grade"`
		PrevNumericGrade float64   `json:"prev_numeric_grade"`
		PrevGradePoints  float64   `json:"prev_grade_points"`
		ModifiedAt       time.Time `json:"modified_at"` // UTC
	}

	// Record is a per-student, per-course, per-term grade ledger entry.
	// One active record per (StudentID, CourseID, Semester, AcademicYear).
	Record struct {
		ID           string       `json:"id"`
		StudentID    string       `json:"student_id"`
		CourseID     string       `json:"course_id"`
		CourseCode   string       `json:"course_code"`
		CourseTitle  string       `json:"course_title"`
		Category     string       `json:"category"` // degree requirement category, from the catalog
		Semester     string       `json:"semester"`
		AcademicYear string       `json:"academic_year"`
		Assessments  []Assessment `json:"assessments"`

		// finalized outcome; LetterGrade and GradePoints are only meaningful
		// when Status == completed
		LetterGrade  string  `json:"letter_grade"`
		NumericGrade float64 `json:"numeric_grade"`
		GradePoints  float64 `json:"grade_points"`
		// Credits is the credit weight used for GPA math, independent of the
		// course's catalog credit value (allows partial-credit overrides).
		Credits float64 `json:"credits"`

		Status        string         `json:"status"`
		InstructorID  string         `json:"instructor_id"`
		Modifications []Modification `json:"modifications,omitempty"`
		CreatedAt     time.Time      `json:"created_at"` // UTC
		UpdatedAt     time.Time      `json:"updated_at"` // UTC
	}
)

// Term identifies an academic term.
type Term struct {
	AcademicYear string `json:"academic_year"` // e.g. "2023-2024"
	Semester     string `json:"semester"`      // fall | spring | summer
}

var semesterOrdinals = map[string]int{
	"fall":   1,
	"spring": 2,
	"summer": 3,
}

// SemesterOrdinal returns the chronological position of a semester within an
// academic year; unknown semesters sort last.
func SemesterOrdinal(semester string) int {
	if ord, ok := semesterOrdinals[semester]; ok {
		return ord
	}
	return len(semesterOrdinals) + 1
}

// Before reports whether term t is chronologically before other.
func (t Term) Before(other Term) bool {
	if t.AcademicYear != other.AcademicYear {
		return t.AcademicYear < other.AcademicYear
	}
	return SemesterOrdinal(t.Semester) < SemesterOrdinal(other.Semester)
}

func (r Record) Term() Term {
	return Term{AcademicYear: r.AcademicYear, Semester: r.Semester}
}

// Outcome is the (credits, grade points) pair a Record contributes to GPA math.
func (r Record) Outcome() Outcome {
	return Outcome{Letter: r.LetterGrade, GradePoints: r.GradePoints, Credits: r.Credits}
}

// NewGrade contains information needed to submit (or resubmit) a grade.
type NewGrade struct {
	StudentID    string       `json:"student_id" validate:"required"`
	CourseID     string       `json:"course_id" validate:"required"`
	Semester     string       `json:"semester" validate:"required,oneof=fall spring summer"`
	AcademicYear string       `json:"academic_year" validate:"required"`
	Assessments  []Assessment `json:"assessments" validate:"required_unless=Status withdrawn Status incomplete,dive"`
	// Credits overrides the catalog credit value when > 0.
	Credits float64 `json:"credits" validate:"min=0"`
	Status  string  `json:"status" validate:"omitempty,oneof=in_progress completed withdrawn incomplete"`
}

func (ng *NewGrade) Validate() error {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.CourseID = core.CleanString(ng.CourseID)
	ng.Semester = core.CleanString(ng.Semester, true /* lower */)
	ng.AcademicYear = core.CleanString(ng.AcademicYear)
	return core.Validate.Struct(ng)
}

// GradeAppeal contains information needed to apply an approved grade appeal.
type GradeAppeal struct {
	NumericGrade float64 `json:"numeric_grade" validate:"min=0,max=100"`
	Reason       string  `json:"reason" validate:"required"`
}

func (ga *GradeAppeal) Validate() error {
	ga.Reason = core.CleanString(ga.Reason)
	return core.Validate.Struct(ga)
}
