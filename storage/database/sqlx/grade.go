package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core/grade"
)

type dbGrade struct {
	ID            string    `db:"id"`
	StudentID     string    `db:"student_id"`
	CourseID      string    `db:"course_id"`
	Semester      string    `db:"semester"`
	AcademicYear  string    `db:"academic_year"`
	Assessments   []byte    `db:"assessments"`
	LetterGrade   string    `db:"letter_grade"`
	NumericGrade  float64   `db:"numeric_grade"`
	GradePoints   float64   `db:"grade_points"`
	Credits       float64   `db:"credits"`
	Status        string    `db:"status"`
	InstructorID  string    `db:"instructor_id"`
	Modifications []byte    `db:"modifications"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	// denormalized catalog columns, joined in
	CourseCode  string `db:"course_code"`
	CourseTitle string `db:"course_title"`
	Category    string `db:"category"`
}

func (g dbGrade) toCore() (grade.Record, error) {
	rec := grade.Record{
		ID:           g.ID,
		StudentID:    g.StudentID,
		CourseID:     g.CourseID,
		CourseCode:   g.CourseCode,
		CourseTitle:  g.CourseTitle,
		Category:     g.Category,
		Semester:     g.Semester,
		AcademicYear: g.AcademicYear,
		LetterGrade:  g.LetterGrade,
		NumericGrade: g.NumericGrade,
		GradePoints:  g.GradePoints,
		Credits:      g.Credits,
		Status:       g.Status,
		InstructorID: g.InstructorID,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
	if len(g.Assessments) > 0 {
		if err := json.Unmarshal(g.Assessments, &rec.Assessments); err != nil {
			return grade.Record{}, errors.Wrap(err, "unmarshalling assessments")
		}
	}
	if len(g.Modifications) > 0 {
		if err := json.Unmarshal(g.Modifications, &rec.Modifications); err != nil {
			return grade.Record{}, errors.Wrap(err, "unmarshalling modifications")
		}
	}
	return rec, nil
}

const selectGrade = `
SELECT g.*, c.code AS course_code, c.title AS course_title, c.category
FROM grade g
JOIN course c ON c.id = g.course_id`

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

// UpsertGrade relies on the unique (student, course, semester, year) index:
// ON CONFLICT resubmissions replace the assessments and outcome in place.
func (repo gradeRepository) UpsertGrade(ctx context.Context, rec grade.Record) (grade.Record, error) {
	assessments, err := json.Marshal(rec.Assessments)
	if err != nil {
		return grade.Record{}, errors.Wrap(err, "marshalling assessments")
	}

	var id string
	err = repo.db.GetContext(ctx, &id,
		`INSERT INTO grade (id, student_id, course_id, semester, academic_year, assessments,
		                    letter_grade, numeric_grade, grade_points, credits, status, instructor_id,
		                    created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (student_id, course_id, semester, academic_year) DO UPDATE SET
		     assessments   = EXCLUDED.assessments,
		     letter_grade  = EXCLUDED.letter_grade,
		     numeric_grade = EXCLUDED.numeric_grade,
		     grade_points  = EXCLUDED.grade_points,
		     credits       = EXCLUDED.credits,
		     status        = EXCLUDED.status,
		     instructor_id = EXCLUDED.instructor_id,
		     updated_at    = EXCLUDED.updated_at
		 RETURNING id`,
		uuid.New().String(), rec.StudentID, rec.CourseID, rec.Semester, rec.AcademicYear, assessments,
		rec.LetterGrade, rec.NumericGrade, rec.GradePoints, rec.Credits, rec.Status, rec.InstructorID,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return grade.Record{}, errors.Wrap(err, "upserting grade")
	}
	return repo.GetGradeByID(ctx, id)
}

func (repo gradeRepository) GetGradeByID(ctx context.Context, id string) (grade.Record, error) {
	var g dbGrade
	if err := repo.db.GetContext(ctx, &g, selectGrade+` WHERE g.id = $1`, id); err != nil {
		return grade.Record{}, trapNoRowsErr(err, grade.ErrNotFound, "getting grade")
	}
	return g.toCore()
}

func (repo gradeRepository) QueryStudentGrades(ctx context.Context, studentID string, statuses ...string) ([]grade.Record, error) {
	query := selectGrade + ` WHERE g.student_id = $1`
	args := []interface{}{studentID}
	if len(statuses) > 0 {
		query += ` AND g.status = ANY($2)`
		args = append(args, pq.StringArray(statuses))
	}
	query += ` ORDER BY g.academic_year ASC, g.semester ASC, c.code ASC`

	var rows []dbGrade
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying student grades")
	}
	recs := make([]grade.Record, 0, len(rows))
	for _, g := range rows {
		rec, err := g.toCore()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (repo gradeRepository) UpdateGradeOutcome(ctx context.Context, rec grade.Record) (grade.Record, error) {
	modifications, err := json.Marshal(rec.Modifications)
	if err != nil {
		return grade.Record{}, errors.Wrap(err, "marshalling modifications")
	}

	res, err := repo.db.ExecContext(ctx,
		`UPDATE grade SET letter_grade = $2, numeric_grade = $3, grade_points = $4, modifications = $5, updated_at = $6
		 WHERE id = $1`,
		rec.ID, rec.LetterGrade, rec.NumericGrade, rec.GradePoints, modifications, rec.UpdatedAt,
	)
	if err != nil {
		return grade.Record{}, errors.Wrap(err, "updating grade outcome")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.Record{}, grade.ErrNotFound
	}
	return rec, nil
}
