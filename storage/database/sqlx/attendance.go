package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core/attendance"
)

type dbSession struct {
	ID           string    `db:"id"`
	EnrollmentID string    `db:"enrollment_id"`
	Date         time.Time `db:"date"`
	Present      bool      `db:"present"`
	RecordedBy   string    `db:"recorded_by"`
	CreatedAt    time.Time `db:"created_at"`
}

func (s dbSession) toCore() attendance.Session {
	return attendance.Session{
		ID:           s.ID,
		EnrollmentID: s.EnrollmentID,
		Date:         s.Date.Format("2006-01-02"),
		Present:      s.Present,
		RecordedBy:   s.RecordedBy,
		CreatedAt:    s.CreatedAt,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) CreateSession(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	s.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO attendance_session (id, enrollment_id, date, present, recorded_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.EnrollmentID, s.Date, s.Present, s.RecordedBy, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return attendance.Session{}, attendance.ErrDuplicateSession
		}
		return attendance.Session{}, errors.Wrap(err, "inserting attendance session")
	}
	return s, nil
}

func (repo attendanceRepository) CountSessions(ctx context.Context, enrollmentID string) (total, attended int, err error) {
	err = repo.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE present) FROM attendance_session WHERE enrollment_id = $1`,
		enrollmentID,
	).Scan(&total, &attended)
	return total, attended, errors.Wrap(err, "counting attendance sessions")
}

func (repo attendanceRepository) QuerySessions(ctx context.Context, enrollmentID string) ([]attendance.Session, error) {
	var rows []dbSession
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM attendance_session WHERE enrollment_id = $1 ORDER BY date ASC`, enrollmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance sessions")
	}
	sessions := make([]attendance.Session, 0, len(rows))
	for _, s := range rows {
		sessions = append(sessions, s.toCore())
	}
	return sessions, nil
}
