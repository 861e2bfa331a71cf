package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/rekodi/core/course"
	"github.com/trezcool/rekodi/core/enrollment"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, uname, email, pwd, number, program, level, entryYear string,
) student.Student {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     user.StudentRoles,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
	}
	st := student.Student{
		StudentNumber: number,
		Program:       program,
		Level:         level,
		EntryYear:     entryYear,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	st, err := repo.CreateStudentWithUser(context.Background(), usr, st)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	code, title, department, category string,
	credits float64,
) course.Course {
	t.Helper()

	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Code:       code,
		Title:      title,
		Credits:    credits,
		Department: department,
		Category:   category,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateEnrollment(
	t *testing.T,
	repo enrollment.Repository,
	studentID, courseID, semester, year, section string,
	amountDue float64,
) enrollment.Record {
	t.Helper()

	now := time.Now().UTC()
	rec, err := repo.CreateEnrollment(context.Background(), enrollment.Record{
		StudentID:    studentID,
		CourseID:     courseID,
		Semester:     semester,
		AcademicYear: year,
		Section:      section,
		Status:       enrollment.StatusEnrolled,
		AmountDue:    amountDue,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment() failed: %v", err)
	}
	return rec
}
