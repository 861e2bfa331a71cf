package grade

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/course"
)

// in-memory fakes

type gradeRepoMock struct {
	table  map[string]*Record
	nextID int
}

var _ Repository = (*gradeRepoMock)(nil)

func newGradeRepoMock() *gradeRepoMock {
	return &gradeRepoMock{table: make(map[string]*Record)}
}

func (m *gradeRepoMock) UpsertGrade(_ context.Context, rec Record) (Record, error) {
	for id, r := range m.table {
		if r.StudentID == rec.StudentID && r.CourseID == rec.CourseID &&
			r.Semester == rec.Semester && r.AcademicYear == rec.AcademicYear {
			rec.ID = id
			rec.CreatedAt = r.CreatedAt
			rec.Modifications = r.Modifications
			m.table[id] = &rec
			return rec, nil
		}
	}
	m.nextID++
	rec.ID = strconv.Itoa(m.nextID)
	m.table[rec.ID] = &rec
	return rec, nil
}

func (m *gradeRepoMock) GetGradeByID(_ context.Context, id string) (Record, error) {
	if rec, ok := m.table[id]; ok {
		return *rec, nil
	}
	return Record{}, ErrNotFound
}

func (m *gradeRepoMock) QueryStudentGrades(_ context.Context, studentID string, statuses ...string) ([]Record, error) {
	var recs []Record
	for _, r := range m.table {
		if r.StudentID != studentID {
			continue
		}
		if len(statuses) > 0 {
			var match bool
			for _, s := range statuses {
				if r.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		recs = append(recs, *r)
	}
	return recs, nil
}

func (m *gradeRepoMock) UpdateGradeOutcome(_ context.Context, rec Record) (Record, error) {
	if _, ok := m.table[rec.ID]; !ok {
		return Record{}, ErrNotFound
	}
	m.table[rec.ID] = &rec
	return rec, nil
}

type courseRepoMock struct {
	courses map[string]course.Course
}

var _ course.Repository = (*courseRepoMock)(nil)

func (m *courseRepoMock) CheckCodeUniqueness(_ context.Context, _ string, _ ...course.Course) error {
	return nil
}

func (m *courseRepoMock) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	m.courses[crs.ID] = crs
	return crs, nil
}

func (m *courseRepoMock) GetCourse(_ context.Context, filter course.GetFilter) (course.Course, error) {
	if crs, ok := m.courses[filter.ID]; ok {
		return crs, nil
	}
	for _, crs := range m.courses {
		if filter.Code != "" && crs.Code == filter.Code {
			return crs, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (m *courseRepoMock) QueryCourses(_ context.Context, _ []core.DBOrdering) ([]course.Course, error) {
	return nil, nil
}

func (m *courseRepoMock) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	m.courses[crs.ID] = crs
	return crs, nil
}

func (m *courseRepoMock) DeleteCoursesByID(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(m.courses, id)
	}
	return nil
}

func setupService() (*Service, *gradeRepoMock) {
	repo := newGradeRepoMock()
	crsRepo := &courseRepoMock{courses: map[string]course.Course{
		"c1": {ID: "c1", Code: "CS101", Title: "Intro to Computer Science", Credits: 3, Category: "core"},
		"c2": {ID: "c2", Code: "MATH101", Title: "Calculus I", Credits: 4, Category: "core"},
	}}
	return NewService(repo, course.NewService(crsRepo)), repo
}

func TestWeightedPercent(t *testing.T) {
	tests := []struct {
		name        string
		assessments []Assessment
		want        float64
	}{
		{name: "no assessments", want: 0},
		{
			name:        "single component",
			assessments: []Assessment{{Type: "final", EarnedPoints: 45, MaxPoints: 50, Weight: 100}},
			want:        90,
		},
		{
			name: "weighted components",
			assessments: []Assessment{
				{Type: "quiz", EarnedPoints: 8, MaxPoints: 10, Weight: 20},
				{Type: "midterm", EarnedPoints: 70, MaxPoints: 100, Weight: 30},
				{Type: "final", EarnedPoints: 90, MaxPoints: 100, Weight: 50},
			},
			want: (0.8*20 + 0.7*30 + 0.9*50) / 100 * 100,
		},
		{
			name: "zero max points skipped",
			assessments: []Assessment{
				{Type: "bonus", EarnedPoints: 5, MaxPoints: 0, Weight: 10},
				{Type: "final", EarnedPoints: 80, MaxPoints: 100, Weight: 90},
			},
			want: 80,
		},
		{
			name:        "all zero weights",
			assessments: []Assessment{{Type: "quiz", EarnedPoints: 8, MaxPoints: 10}},
			want:        0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedPercent(tt.assessments); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("WeightedPercent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestService_Submit(t *testing.T) {
	svc, _ := setupService()

	tests := []struct {
		name        string
		ng          NewGrade
		wantLetter  string
		wantPoints  float64
		wantNumeric float64
		wantCredits float64
		wantStatus  string
		wantErr     error
	}{
		{
			name: "course not found",
			ng: NewGrade{
				StudentID: "s1", CourseID: "nope",
				Semester: "fall", AcademicYear: "2023-2024",
			},
			wantErr: course.ErrNotFound,
		},
		{
			name: "completed grade gets a letter",
			ng: NewGrade{
				StudentID: "s1", CourseID: "c1",
				Semester: "fall", AcademicYear: "2023-2024",
				Assessments: []Assessment{{Type: "final", EarnedPoints: 92, MaxPoints: 100, Weight: 100}},
			},
			wantLetter: "A", wantPoints: 4, wantNumeric: 92, wantCredits: 3,
			wantStatus: StatusCompleted,
		},
		{
			name: "credits override",
			ng: NewGrade{
				StudentID: "s2", CourseID: "c2",
				Semester: "fall", AcademicYear: "2023-2024",
				Assessments: []Assessment{{Type: "final", EarnedPoints: 82, MaxPoints: 100, Weight: 100}},
				Credits:     2,
			},
			wantLetter: "B", wantPoints: 3, wantNumeric: 82, wantCredits: 2,
			wantStatus: StatusCompleted,
		},
		{
			name: "withdrawal records W without points",
			ng: NewGrade{
				StudentID: "s3", CourseID: "c1",
				Semester: "spring", AcademicYear: "2023-2024",
				Status: StatusWithdrawn,
			},
			wantLetter: LetterWithdrawn, wantCredits: 3,
			wantStatus: StatusWithdrawn,
		},
		{
			name: "incomplete records I without points",
			ng: NewGrade{
				StudentID: "s4", CourseID: "c1",
				Semester: "spring", AcademicYear: "2023-2024",
				Status: StatusIncomplete,
			},
			wantLetter: LetterIncomplete, wantCredits: 3,
			wantStatus: StatusIncomplete,
		},
		{
			name: "in progress has a numeric but no letter",
			ng: NewGrade{
				StudentID: "s5", CourseID: "c1",
				Semester: "spring", AcademicYear: "2023-2024",
				Assessments: []Assessment{{Type: "midterm", EarnedPoints: 70, MaxPoints: 100, Weight: 100}},
				Status:      StatusInProgress,
			},
			wantNumeric: 70, wantCredits: 3,
			wantStatus: StatusInProgress,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := svc.Submit(tt.ng, "instructor1")
			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Fatalf("Submit() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit() failed: %v", err)
			}
			if rec.ID == "" {
				t.Error("expected an ID to be assigned")
			}
			if rec.LetterGrade != tt.wantLetter {
				t.Errorf("LetterGrade = %s, want %s", rec.LetterGrade, tt.wantLetter)
			}
			if rec.GradePoints != tt.wantPoints {
				t.Errorf("GradePoints = %v, want %v", rec.GradePoints, tt.wantPoints)
			}
			if math.Abs(rec.NumericGrade-tt.wantNumeric) > 1e-9 {
				t.Errorf("NumericGrade = %v, want %v", rec.NumericGrade, tt.wantNumeric)
			}
			if rec.Credits != tt.wantCredits {
				t.Errorf("Credits = %v, want %v", rec.Credits, tt.wantCredits)
			}
			if rec.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", rec.Status, tt.wantStatus)
			}
			if rec.InstructorID != "instructor1" {
				t.Errorf("InstructorID = %s, want instructor1", rec.InstructorID)
			}
		})
	}
}

func TestService_Submit_resubmissionKeepsIdentity(t *testing.T) {
	svc, _ := setupService()

	ng := NewGrade{
		StudentID: "s1", CourseID: "c1",
		Semester: "fall", AcademicYear: "2023-2024",
		Assessments: []Assessment{{Type: "final", EarnedPoints: 70, MaxPoints: 100, Weight: 100}},
	}
	first, err := svc.Submit(ng, "instructor1")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	ng.Assessments = []Assessment{{Type: "final", EarnedPoints: 95, MaxPoints: 100, Weight: 100}}
	second, err := svc.Submit(ng, "instructor2")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("resubmission ID = %s, want %s", second.ID, first.ID)
	}
	if second.LetterGrade != "A" {
		t.Errorf("LetterGrade = %s, want A", second.LetterGrade)
	}
	if second.InstructorID != "instructor2" {
		t.Errorf("InstructorID = %s, want instructor2", second.InstructorID)
	}
}

func TestService_ApproveAppeal(t *testing.T) {
	svc, repo := setupService()

	completed, err := svc.Submit(NewGrade{
		StudentID: "s1", CourseID: "c1",
		Semester: "fall", AcademicYear: "2023-2024",
		Assessments: []Assessment{{Type: "final", EarnedPoints: 72, MaxPoints: 100, Weight: 100}},
	}, "instructor1")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	inProgress, err := svc.Submit(NewGrade{
		StudentID: "s1", CourseID: "c2",
		Semester: "fall", AcademicYear: "2023-2024",
		Assessments: []Assessment{{Type: "midterm", EarnedPoints: 50, MaxPoints: 100, Weight: 100}},
		Status:      StatusInProgress,
	}, "instructor1")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	t.Run("unknown grade", func(t *testing.T) {
		_, err := svc.ApproveAppeal("nope", GradeAppeal{NumericGrade: 80, Reason: "misgraded"}, "admin1")
		if err != ErrNotFound {
			t.Errorf("ApproveAppeal() error = %v, wantErr %v", err, ErrNotFound)
		}
	})

	t.Run("not completed", func(t *testing.T) {
		_, err := svc.ApproveAppeal(inProgress.ID, GradeAppeal{NumericGrade: 80, Reason: "misgraded"}, "admin1")
		if err != ErrNotCompleted {
			t.Errorf("ApproveAppeal() error = %v, wantErr %v", err, ErrNotCompleted)
		}
	})

	t.Run("outcome recomputed and history preserved", func(t *testing.T) {
		rec, err := svc.ApproveAppeal(completed.ID, GradeAppeal{NumericGrade: 86, Reason: "regrade of final"}, "admin1")
		if err != nil {
			t.Fatalf("ApproveAppeal() failed: %v", err)
		}
		if rec.NumericGrade != 86 || rec.LetterGrade != "B+" || rec.GradePoints != 3.5 {
			t.Errorf("outcome = (%v, %s, %v), want (86, B+, 3.5)", rec.NumericGrade, rec.LetterGrade, rec.GradePoints)
		}
		if len(rec.Modifications) != 1 {
			t.Fatalf("len(Modifications) = %d, want 1", len(rec.Modifications))
		}
		mod := rec.Modifications[0]
		if mod.PrevLetterGrade != "C" || mod.PrevNumericGrade != 72 || mod.PrevGradePoints != 2 {
			t.Errorf("modification = %+v, want previous (C, 72, 2)", mod)
		}
		if mod.ApprovedBy != "admin1" || mod.Reason != "regrade of final" {
			t.Errorf("modification audit = %+v", mod)
		}

		// a second appeal appends, never replaces
		rec, err = svc.ApproveAppeal(completed.ID, GradeAppeal{NumericGrade: 91, Reason: "second review"}, "admin2")
		if err != nil {
			t.Fatalf("ApproveAppeal() failed: %v", err)
		}
		if len(rec.Modifications) != 2 {
			t.Fatalf("len(Modifications) = %d, want 2", len(rec.Modifications))
		}
		if rec.Modifications[1].PrevLetterGrade != "B+" {
			t.Errorf("PrevLetterGrade = %s, want B+", rec.Modifications[1].PrevLetterGrade)
		}

		stored, err := repo.GetGradeByID(context.Background(), completed.ID)
		if err != nil {
			t.Fatalf("GetGradeByID() failed: %v", err)
		}
		if stored.LetterGrade != "A" {
			t.Errorf("stored LetterGrade = %s, want A", stored.LetterGrade)
		}
	})
}
