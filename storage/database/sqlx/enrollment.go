package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/enrollment"
)

type dbEnrollment struct {
	ID                   string    `db:"id"`
	StudentID            string    `db:"student_id"`
	CourseID             string    `db:"course_id"`
	Semester             string    `db:"semester"`
	AcademicYear         string    `db:"academic_year"`
	Section              string    `db:"section"`
	Status               string    `db:"status"`
	AmountDue            float64   `db:"amount_due"`
	AmountPaid           float64   `db:"amount_paid"`
	TotalClasses         int       `db:"total_classes"`
	AttendedClasses      int       `db:"attended_classes"`
	AttendancePercentage int       `db:"attendance_percentage"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

func (e dbEnrollment) toCore() enrollment.Record {
	return enrollment.Record{
		ID:                   e.ID,
		StudentID:            e.StudentID,
		CourseID:             e.CourseID,
		Semester:             e.Semester,
		AcademicYear:         e.AcademicYear,
		Section:              e.Section,
		Status:               e.Status,
		AmountDue:            e.AmountDue,
		AmountPaid:           e.AmountPaid,
		TotalClasses:         e.TotalClasses,
		AttendedClasses:      e.AttendedClasses,
		AttendancePercentage: e.AttendancePercentage,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, rec enrollment.Record) (enrollment.Record, error) {
	rec.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO enrollment (id, student_id, course_id, semester, academic_year, section, status,
		                         amount_due, amount_paid, total_classes, attended_classes, attendance_percentage,
		                         created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.StudentID, rec.CourseID, rec.Semester, rec.AcademicYear, rec.Section, rec.Status,
		rec.AmountDue, rec.AmountPaid, rec.TotalClasses, rec.AttendedClasses, rec.AttendancePercentage,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return enrollment.Record{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Record{}, errors.Wrap(err, "inserting enrollment")
	}
	return rec, nil
}

func (repo enrollmentRepository) GetEnrollmentByID(ctx context.Context, id string) (enrollment.Record, error) {
	var e dbEnrollment
	if err := repo.db.GetContext(ctx, &e, `SELECT * FROM enrollment WHERE id = $1`, id); err != nil {
		return enrollment.Record{}, trapNoRowsErr(err, enrollment.ErrNotFound, "getting enrollment")
	}
	return e.toCore(), nil
}

func (repo enrollmentRepository) QueryEnrollments(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering) ([]enrollment.Record, error) {
	query := `SELECT * FROM enrollment`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.StudentID != "" {
			conds = append(conds, "student_id = "+arg(filter.StudentID))
		}
		if filter.CourseID != "" {
			conds = append(conds, "course_id = "+arg(filter.CourseID))
		}
		if filter.Semester != "" {
			conds = append(conds, "semester = "+arg(filter.Semester))
		}
		if filter.AcademicYear != "" {
			conds = append(conds, "academic_year = "+arg(filter.AcademicYear))
		}
		if filter.Status != "" {
			conds = append(conds, "status = "+arg(filter.Status))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "created_at DESC")

	var rows []dbEnrollment
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	recs := make([]enrollment.Record, 0, len(rows))
	for _, e := range rows {
		recs = append(recs, e.toCore())
	}
	return recs, nil
}

func (repo enrollmentRepository) UpdateEnrollmentStatus(ctx context.Context, id, status string) (enrollment.Record, error) {
	var e dbEnrollment
	err := repo.db.GetContext(ctx, &e,
		`UPDATE enrollment SET status = $2, updated_at = $3 WHERE id = $1 RETURNING *`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		return enrollment.Record{}, trapNoRowsErr(err, enrollment.ErrNotFound, "updating enrollment status")
	}
	return e.toCore(), nil
}

func (repo enrollmentRepository) UpdateAttendanceCounters(ctx context.Context, id string, attended, total, pct int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE enrollment SET attended_classes = $2, total_classes = $3, attendance_percentage = $4, updated_at = $5
		 WHERE id = $1`,
		id, attended, total, pct, time.Now().UTC(),
	)
	return errors.Wrap(err, "updating attendance counters")
}

func (repo enrollmentRepository) RecordPayment(ctx context.Context, id string, amount float64) (enrollment.Record, error) {
	var e dbEnrollment
	err := repo.db.GetContext(ctx, &e,
		`UPDATE enrollment SET amount_paid = amount_paid + $2, updated_at = $3 WHERE id = $1 RETURNING *`,
		id, amount, time.Now().UTC(),
	)
	if err != nil {
		return enrollment.Record{}, trapNoRowsErr(err, enrollment.ErrNotFound, "recording enrollment payment")
	}
	return e.toCore(), nil
}
