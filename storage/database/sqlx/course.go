package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/course"
)

type dbCourse struct {
	ID          string      `db:"id"`
	Code        string      `db:"code"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Credits     float64     `db:"credits"`
	Department  string      `db:"department"`
	Category    string      `db:"category"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (c dbCourse) toCore() course.Course {
	return course.Course{
		ID:          c.ID,
		Code:        c.Code,
		Title:       c.Title,
		Description: c.Description,
		Credits:     c.Credits,
		Department:  c.Department,
		Category:    c.Category,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...course.Course) error {
	query := `SELECT EXISTS (SELECT 1 FROM course WHERE code = $1`
	args := []interface{}{code}
	if len(excludedCourses) > 0 {
		ids := make([]string, 0, len(excludedCourses))
		for _, c := range excludedCourses {
			ids = append(ids, c.ID)
		}
		query += ` AND NOT (id = ANY($2))`
		args = append(args, pq.StringArray(ids))
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking course code uniqueness")
	}
	if exists {
		return course.ErrCodeExists
	}
	return nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course (id, code, title, description, credits, department, category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		crs.ID, crs.Code, crs.Title, crs.Description, crs.Credits, crs.Department, crs.Category,
		crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "course_code_key") {
			return course.Course{}, course.ErrCodeExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, filter course.GetFilter) (course.Course, error) {
	var where string
	var arg interface{}
	switch {
	case filter.ID != "":
		where, arg = "id = $1", filter.ID
	case filter.Code != "":
		where, arg = "code = $1", filter.Code
	default:
		return course.Course{}, course.ErrNotFound
	}

	var c dbCourse
	if err := repo.db.GetContext(ctx, &c, `SELECT * FROM course WHERE `+where, arg); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "getting course")
	}
	return c.toCore(), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]course.Course, error) {
	var rows []dbCourse
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM course`+orderBy(ordering, "code ASC")); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, c := range rows {
		courses = append(courses, c.toCore())
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE course SET title = $2, description = $3, credits = $4, department = $5, category = $6, updated_at = $7
		 WHERE id = $1`,
		crs.ID, crs.Title, crs.Description, crs.Credits, crs.Department, crs.Category, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return crs, nil
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting courses")
}
