package grade

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core/course"
)

var (
	// errors
	ErrNotFound     = errors.New("grade record not found")
	ErrNotCompleted = errors.New("grade record is not completed")
)

type (
	Repository interface {
		// UpsertGrade inserts the record, or updates the existing one for the
		// same (StudentID, CourseID, Semester, AcademicYear) tuple. The unique
		// compound index makes concurrent submissions race-free.
		UpsertGrade(ctx context.Context, rec Record) (Record, error)
		GetGradeByID(ctx context.Context, id string) (Record, error)
		// QueryStudentGrades returns a student's records, optionally restricted
		// to the given statuses.
		QueryStudentGrades(ctx context.Context, studentID string, statuses ...string) ([]Record, error)
		UpdateGradeOutcome(ctx context.Context, rec Record) (Record, error)
	}

	Service struct {
		repo      Repository
		courseSvc *course.Service
	}
)

func NewService(repo Repository, courseSvc *course.Service) *Service {
	return &Service{repo: repo, courseSvc: courseSvc}
}

// Submit finalizes (or re-finalizes) a grade from its weighted assessment
// components and upserts the ledger entry.
func (svc *Service) Submit(ng NewGrade, instructorID string) (Record, error) {
	crs, err := svc.courseSvc.GetByID(ng.CourseID)
	if err != nil {
		return Record{}, errors.Wrap(err, "finding course")
	}

	status := ng.Status
	if status == "" {
		status = StatusCompleted
	}

	credits := ng.Credits
	if credits == 0 {
		credits = crs.Credits
	}

	now := time.Now().UTC()
	rec := Record{
		StudentID:    ng.StudentID,
		CourseID:     crs.ID,
		CourseCode:   crs.Code,
		CourseTitle:  crs.Title,
		Category:     crs.Category,
		Semester:     ng.Semester,
		AcademicYear: ng.AcademicYear,
		Assessments:  ng.Assessments,
		Credits:      credits,
		Status:       status,
		InstructorID: instructorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch status {
	case StatusWithdrawn:
		rec.LetterGrade = LetterWithdrawn
	case StatusIncomplete:
		rec.LetterGrade = LetterIncomplete
	default:
		rec.NumericGrade = WeightedPercent(ng.Assessments)
		if status == StatusCompleted {
			rec.LetterGrade, rec.GradePoints = LetterForPercent(rec.NumericGrade)
		}
	}

	return svc.repo.UpsertGrade(context.Background(), rec)
}

// WeightedPercent folds assessment components into a single percentage,
// weighting each component's earned/max ratio by its weight.
func WeightedPercent(assessments []Assessment) float64 {
	var weighted, totalWeight float64
	for _, a := range assessments {
		if a.MaxPoints <= 0 {
			continue
		}
		weighted += (a.EarnedPoints / a.MaxPoints) * a.Weight
		totalWeight += a.Weight
	}
	if totalWeight <= 0 {
		return 0
	}
	return weighted / totalWeight * 100
}

func (svc *Service) GetByID(id string) (Record, error) {
	return svc.repo.GetGradeByID(context.Background(), id)
}

func (svc *Service) QueryByStudent(studentID string, statuses ...string) ([]Record, error) {
	return svc.repo.QueryStudentGrades(context.Background(), studentID, statuses...)
}

// ApproveAppeal applies an approved grade appeal: the previous outcome is
// preserved as a modification entry, then the outcome is recomputed from the
// appealed numeric grade.
func (svc *Service) ApproveAppeal(gradeID string, ga GradeAppeal, approvedBy string) (Record, error) {
	ctx := context.Background()
	rec, err := svc.repo.GetGradeByID(ctx, gradeID)
	if err != nil {
		return Record{}, err
	}
	if rec.Status != StatusCompleted {
		return Record{}, ErrNotCompleted
	}

	rec.Modifications = append(rec.Modifications, Modification{
		Reason:           ga.Reason,
		ApprovedBy:       approvedBy,
		PrevLetterGrade:  rec.LetterGrade,
		PrevNumericGrade: rec.NumericGrade,
		PrevGradePoints:  rec.GradePoints,
		ModifiedAt:       time.Now().UTC(),
	})
	rec.NumericGrade = ga.NumericGrade
	rec.LetterGrade, rec.GradePoints = LetterForPercent(ga.NumericGrade)
	rec.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateGradeOutcome(ctx, rec)
}
