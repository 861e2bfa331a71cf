package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/rekodi/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) UpsertGrade(_ context.Context, rec grade.Record) (grade.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// replace the existing entry for the same tuple, keeping its identity
	for id, r := range repo.db.table {
		if r.StudentID == rec.StudentID && r.CourseID == rec.CourseID &&
			r.Semester == rec.Semester && r.AcademicYear == rec.AcademicYear {
			rec.ID = id
			rec.CreatedAt = r.CreatedAt
			rec.Modifications = r.Modifications
			repo.db.table[id] = &rec
			return rec, nil
		}
	}
	rec.ID = uuid.New().String()
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *gradeRepository) GetGradeByID(_ context.Context, id string) (grade.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return grade.Record{}, grade.ErrNotFound
}

func (repo *gradeRepository) QueryStudentGrades(_ context.Context, studentID string, statuses ...string) ([]grade.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	recs := make([]grade.Record, 0)
	for _, r := range repo.db.table {
		if r.StudentID != studentID {
			continue
		}
		if len(wanted) > 0 && !wanted[r.Status] {
			continue
		}
		recs = append(recs, *r)
	}
	return recs, nil
}

func (repo *gradeRepository) UpdateGradeOutcome(_ context.Context, rec grade.Record) (grade.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[rec.ID]
	if !ok {
		return grade.Record{}, grade.ErrNotFound
	}
	orig.LetterGrade = rec.LetterGrade
	orig.NumericGrade = rec.NumericGrade
	orig.GradePoints = rec.GradePoints
	orig.Modifications = rec.Modifications
	orig.UpdatedAt = rec.UpdatedAt
	return *orig, nil
}
