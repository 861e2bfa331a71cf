package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/enrollment"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db.enrollment}
}

func (repo *enrollmentRepository) query() []enrollment.Record {
	recs := make([]enrollment.Record, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		recs = append(recs, *r)
	}
	return recs
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, rec enrollment.Record) (enrollment.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, r := range repo.db.table {
		if r.StudentID == rec.StudentID && r.CourseID == rec.CourseID &&
			r.Semester == rec.Semester && r.AcademicYear == rec.AcademicYear && r.Section == rec.Section {
			return enrollment.Record{}, enrollment.ErrAlreadyEnrolled
		}
	}
	rec.ID = uuid.New().String()
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *enrollmentRepository) GetEnrollmentByID(_ context.Context, id string) (enrollment.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return enrollment.Record{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter *enrollment.QueryFilter, _ []core.DBOrdering) ([]enrollment.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := repo.query()
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	if filter == nil {
		return recs, nil
	}

	filtered := make([]enrollment.Record, 0, len(recs))
	for _, r := range recs {
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && r.CourseID != filter.CourseID {
			continue
		}
		if filter.Semester != "" && r.Semester != filter.Semester {
			continue
		}
		if filter.AcademicYear != "" && r.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

func (repo *enrollmentRepository) UpdateEnrollmentStatus(_ context.Context, id, status string) (enrollment.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.table[id]
	if !ok {
		return enrollment.Record{}, enrollment.ErrNotFound
	}
	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	return *rec, nil
}

func (repo *enrollmentRepository) UpdateAttendanceCounters(_ context.Context, id string, attended, total, pct int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.table[id]
	if !ok {
		return enrollment.ErrNotFound
	}
	rec.AttendedClasses = attended
	rec.TotalClasses = total
	rec.AttendancePercentage = pct
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *enrollmentRepository) RecordPayment(_ context.Context, id string, amount float64) (enrollment.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.table[id]
	if !ok {
		return enrollment.Record{}, enrollment.ErrNotFound
	}
	rec.AmountPaid += amount
	rec.UpdatedAt = time.Now().UTC()
	return *rec, nil
}
