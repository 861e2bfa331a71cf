package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/rekodi/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) CreateSession(_ context.Context, s attendance.Session) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, sess := range repo.db.table {
		if sess.EnrollmentID == s.EnrollmentID && sess.Date == s.Date {
			return attendance.Session{}, attendance.ErrDuplicateSession
		}
	}
	s.ID = uuid.New().String()
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *attendanceRepository) CountSessions(_ context.Context, enrollmentID string) (total, attended int, err error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.table {
		if s.EnrollmentID != enrollmentID {
			continue
		}
		total++
		if s.Present {
			attended++
		}
	}
	return total, attended, nil
}

func (repo *attendanceRepository) QuerySessions(_ context.Context, enrollmentID string) ([]attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]attendance.Session, 0)
	for _, s := range repo.db.table {
		if s.EnrollmentID == enrollmentID {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date < sessions[j].Date })
	return sessions, nil
}
