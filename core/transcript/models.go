package transcript

import (
	"time"

	"github.com/trezcool/rekodi/core"
)

// Transcript types
const (
	TypeOfficial    = "official"
	TypeUnofficial  = "unofficial"
	TypePartial     = "partial"
	TypeDegreeAudit = "degree_audit"
)

// DegreeRequirements maps each requirement category to the credits a student
// must earn in it.
var DegreeRequirements = map[string]float64{
	"core":              60,
	"major":             45,
	"elective":          30,
	"general_education": 45,
}

type (
	// AcademicSummary holds the final cumulative figures of a transcript.
	AcademicSummary struct {
		TotalCreditsAttempted float64 `json:"total_credits_attempted"`
		TotalCreditsEarned    float64 `json:"total_credits_earned"`
		CumulativeGPA         float64 `json:"cumulative_gpa"`
		AcademicStanding      string  `json:"academic_standing"`
	}

	// CourseLine is a denormalized copy of one grade record at generation time;
	// later grade corrections never change it.
	CourseLine struct {
		CourseCode  string  `json:"course_code"`
		CourseTitle string  `json:"course_title"`
		Credits     float64 `json:"credits"`
		LetterGrade string  `json:"letter_grade"`
		GradePoints float64 `json:"grade_points"`
		Status      string  `json:"status"`
	}

	// SemesterRecord is one term's course list with the running cumulative
	// figures as of that point in the chronological sequence.
	SemesterRecord struct {
		AcademicYear      string       `json:"academic_year"`
		Semester          string       `json:"semester"`
		Courses           []CourseLine `json:"courses"`
		SemesterGPA       float64      `json:"semester_gpa"`
		CumulativeGPA     float64      `json:"cumulative_gpa"`
		CumulativeCredits float64      `json:"cumulative_credits"`
	}

	// RequirementProgress is the degree-progress breakdown for one category.
	RequirementProgress struct {
		Category        string  `json:"category"`
		RequiredCredits float64 `json:"required_credits"`
		EarnedCredits   float64 `json:"earned_credits"`
		Percent         float64 `json:"percent"`
	}

	// Transcript is an immutable point-in-time snapshot; each generation
	// produces a new one. Only download bookkeeping is ever mutated.
	Transcript struct {
		ID        string `json:"id"`
		StudentID string `json:"student_id"`
		Type      string `json:"type"`
		Purpose   string `json:"purpose,omitempty"`

		AcademicSummary AcademicSummary       `json:"academic_summary"`
		SemesterRecords []SemesterRecord      `json:"semester_records"`
		DegreeProgress  []RequirementProgress `json:"degree_progress"`

		// set for official transcripts only; the hash is a generation-event
		// nonce seeded from (studentID, timestamp), not a content hash
		SecurityCode string `json:"security_code,omitempty"`
		DocumentHash string `json:"document_hash,omitempty"`

		GeneratedAt      time.Time `json:"generated_at"` // UTC
		DownloadCount    int       `json:"download_count"`
		LastDownloadedAt time.Time `json:"last_downloaded_at,omitempty"` // UTC
	}
)

// GenerateRequest contains information needed to generate a transcript.
type GenerateRequest struct {
	Type    string `json:"type" validate:"omitempty,oneof=official unofficial partial degree_audit"`
	Purpose string `json:"purpose"`
}

func (gr *GenerateRequest) Validate() error {
	gr.Type = core.CleanString(gr.Type, true /* lower */)
	gr.Purpose = core.CleanString(gr.Purpose)
	if gr.Type == "" {
		gr.Type = TypeUnofficial
	}
	return core.Validate.Struct(gr)
}
