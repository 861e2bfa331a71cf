package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
)

var (
	// errors
	ErrNotFound        = errors.New("enrollment not found")
	ErrAlreadyEnrolled = errors.New("student is already enrolled on this course section")
	ErrInvalidStatus   = errors.New("invalid enrollment status")
)

var validStatuses = map[string]bool{
	StatusEnrolled:  true,
	StatusDropped:   true,
	StatusWithdrawn: true,
	StatusCompleted: true,
	StatusFailed:    true,
	StatusAudit:     true,
}

type (
	Repository interface {
		// CreateEnrollment inserts the record; the unique compound index on
		// (student, course, semester, year, section) rejects duplicates with
		// ErrAlreadyEnrolled instead of racing a separate existence check.
		CreateEnrollment(ctx context.Context, rec Record) (Record, error)
		GetEnrollmentByID(ctx context.Context, id string) (Record, error)
		QueryEnrollments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error)
		UpdateEnrollmentStatus(ctx context.Context, id, status string) (Record, error)
		// UpdateAttendanceCounters persists recomputed attendance aggregates.
		UpdateAttendanceCounters(ctx context.Context, id string, attended, total, pct int) error
		RecordPayment(ctx context.Context, id string, amount float64) (Record, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Enroll(ne NewEnrollment) (Record, error) {
	now := time.Now().UTC()
	rec := Record{
		StudentID:            ne.StudentID,
		CourseID:             ne.CourseID,
		Semester:             ne.Semester,
		AcademicYear:         ne.AcademicYear,
		Section:              ne.Section,
		Status:               StatusEnrolled,
		AmountDue:            ne.AmountDue,
		AttendancePercentage: AttendancePercentage(0, 0),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	return svc.repo.CreateEnrollment(context.Background(), rec)
}

func (svc *Service) GetByID(id string) (Record, error) {
	return svc.repo.GetEnrollmentByID(context.Background(), id)
}

func (svc *Service) Query(filter *QueryFilter, ordering ...core.DBOrdering) ([]Record, error) {
	return svc.repo.QueryEnrollments(context.Background(), filter, ordering)
}

func (svc *Service) UpdateStatus(id, status string) (Record, error) {
	if !validStatuses[status] {
		return Record{}, core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
	}
	return svc.repo.UpdateEnrollmentStatus(context.Background(), id, status)
}

// RefreshAttendance recomputes and persists the attendance aggregates.
func (svc *Service) RefreshAttendance(id string, attended, total int) error {
	return svc.repo.UpdateAttendanceCounters(context.Background(), id, attended, total, AttendancePercentage(attended, total))
}

func (svc *Service) RecordPayment(id string, amount float64) (Record, error) {
	return svc.repo.RecordPayment(context.Background(), id, amount)
}
