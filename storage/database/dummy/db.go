// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/trezcool/rekodi/core/attendance"
	"github.com/trezcool/rekodi/core/course"
	"github.com/trezcool/rekodi/core/enrollment"
	"github.com/trezcool/rekodi/core/grade"
	"github.com/trezcool/rekodi/core/payment"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/core/transcript"
	"github.com/trezcool/rekodi/core/user"
)

type (
	DB struct {
		user       *userTable
		student    *studentTable
		course     *courseTable
		enrollment *enrollmentTable
		attendance *attendanceTable
		grade      *gradeTable
		transcript *transcriptTable
		payment    *paymentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}
	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}
	enrollmentTable struct {
		sync.RWMutex
		table map[string]*enrollment.Record
	}
	attendanceTable struct {
		sync.RWMutex
		table map[string]*attendance.Session
	}
	gradeTable struct {
		sync.RWMutex
		table map[string]*grade.Record
	}
	transcriptTable struct {
		sync.RWMutex
		table map[string]*transcript.Transcript
	}
	paymentTable struct {
		sync.RWMutex
		table map[string]*payment.Payment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		student:    &studentTable{table: make(map[string]*student.Student)},
		course:     &courseTable{table: make(map[string]*course.Course)},
		enrollment: &enrollmentTable{table: make(map[string]*enrollment.Record)},
		attendance: &attendanceTable{table: make(map[string]*attendance.Session)},
		grade:      &gradeTable{table: make(map[string]*grade.Record)},
		transcript: &transcriptTable{table: make(map[string]*transcript.Transcript)},
		payment:    &paymentTable{table: make(map[string]*payment.Payment)},
	}
	return db, nil
}
