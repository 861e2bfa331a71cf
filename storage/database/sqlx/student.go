package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/core/user"
)

type dbStudent struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	StudentNumber string    `db:"student_number"`
	Program       string    `db:"program"`
	Level         string    `db:"level"`
	EntryYear     string    `db:"entry_year"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	User dbUser `db:"user"`
}

func (s dbStudent) toCore() student.Student {
	return student.Student{
		ID:            s.ID,
		UserID:        s.UserID,
		StudentNumber: s.StudentNumber,
		Program:       s.Program,
		Level:         s.Level,
		EntryYear:     s.EntryYear,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		User:          s.User.toCore(),
	}
}

// selectStudent joins the base user in; dbStudent.User maps the "user." prefixed columns.
const selectStudent = `
SELECT s.*,
       u.id            AS "user.id",
       u.name          AS "user.name",
       u.username      AS "user.username",
       u.email         AS "user.email",
       u.is_active     AS "user.is_active",
       u.roles         AS "user.roles",
       u.password_hash AS "user.password_hash",
       u.created_at    AS "user.created_at",
       u.updated_at    AS "user.updated_at",
       u.last_login    AS "user.last_login"
FROM student s
JOIN "user" u ON u.id = s.user_id`

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CheckNumberUniqueness(ctx context.Context, number string, excludedStudents ...student.Student) error {
	query := `SELECT EXISTS (SELECT 1 FROM student WHERE student_number = $1`
	args := []interface{}{number}
	if len(excludedStudents) > 0 {
		ids := make([]string, 0, len(excludedStudents))
		for _, s := range excludedStudents {
			ids = append(ids, s.ID)
		}
		query += ` AND NOT (id = ANY($2))`
		args = append(args, pq.StringArray(ids))
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking student number uniqueness")
	}
	if exists {
		return student.ErrNumberExists
	}
	return nil
}

// CreateStudentWithUser writes both rows in one transaction; a failure on
// either side rolls back the whole provisioning.
func (repo studentRepository) CreateStudentWithUser(ctx context.Context, usr user.User, st student.Student) (student.Student, error) {
	usr.ID = uuid.New().String()
	st.ID = uuid.New().String()
	st.UserID = usr.ID

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err = createUser(ctx, tx, usr); err != nil {
		return student.Student{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO student (id, user_id, student_number, program, level, entry_year, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		st.ID, st.UserID, st.StudentNumber, st.Program, st.Level, st.EntryYear, st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "student_student_number_key") {
			return student.Student{}, student.ErrNumberExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}

	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing transaction")
	}
	st.User = usr
	return st, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	var where string
	var arg interface{}
	switch {
	case filter.ID != "":
		where, arg = "s.id = $1", filter.ID
	case filter.UserID != "":
		where, arg = "s.user_id = $1", filter.UserID
	case filter.StudentNumber != "":
		where, arg = "s.student_number = $1", filter.StudentNumber
	default:
		return student.Student{}, student.ErrNotFound
	}

	var s dbStudent
	if err := repo.db.GetContext(ctx, &s, selectStudent+` WHERE `+where, arg); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	return s.toCore(), nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, page core.PageQuery) ([]student.Student, int, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			conds = append(conds,
				fmt.Sprintf("(u.name ILIKE %[1]s OR u.username ILIKE %[1]s OR u.email ILIKE %[1]s OR s.student_number ILIKE %[1]s)", p))
		}
		if filter.Program != "" {
			conds = append(conds, "s.program = "+arg(filter.Program))
		}
		if filter.Level != "" {
			conds = append(conds, "s.level = "+arg(filter.Level))
		}
	}
	var where string
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM student s JOIN "user" u ON u.id = s.user_id` + where
	if err := repo.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting students")
	}

	query := selectStudent + where +
		fmt.Sprintf(" ORDER BY s.student_number ASC LIMIT %d OFFSET %d", page.PageSize, page.Offset())
	var rows []dbStudent
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, s := range rows {
		students = append(students, s.toCore())
	}
	return students, total, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE student SET program = $2, level = $3, updated_at = $4 WHERE id = $1`,
		st.ID, st.Program, st.Level, st.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return st, nil
}
