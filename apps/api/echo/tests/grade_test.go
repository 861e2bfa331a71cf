package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/trezcool/rekodi/core/grade"
	"github.com/trezcool/rekodi/core/user"
	testutil "github.com/trezcool/rekodi/tests"
)

func Test_gradeApi_submit(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "Teacher GS", "teachergs", "teachergs@test.cd", "", user.TeacherRoles, true)
	st := testutil.CreateStudent(t, stRepo, "Graded", "gradedst", "gradedst@test.cd", "", "STU-5001", "Computer Science", "undergraduate", "2023-2024")
	crs := testutil.CreateCourse(t, crsRepo, "CS501", "Compilers", "Computer Science", "core", 3)

	stUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: st.UserID})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}

	body := func(earned float64) []byte {
		return []byte(fmt.Sprintf(
			`{"student_id": %q, "course_id": %q, "semester": "fall", "academic_year": "2023-2024",
			  "assessments": [{"type": "final", "earned_points": %v, "max_points": 100, "weight": 100}]}`,
			st.ID, crs.ID, earned,
		))
	}

	t.Run("staff required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", getToken(t, stUsr), body(90))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	var gradeID string
	t.Run("submitted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", getToken(t, teacher), body(92))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var g grade.Record
		unmarchallObj(t, rec, &g)
		if g.LetterGrade != "A" || g.GradePoints != 4 || g.NumericGrade != 92 {
			t.Errorf("outcome = (%s, %v, %v), want (A, 4, 92)", g.LetterGrade, g.GradePoints, g.NumericGrade)
		}
		if g.CourseCode != "CS501" || g.Credits != 3 {
			t.Errorf("catalog copy = (%s, %v), want (CS501, 3)", g.CourseCode, g.Credits)
		}
		if g.InstructorID != teacher.ID {
			t.Errorf("InstructorID = %s, want %s", g.InstructorID, teacher.ID)
		}
		gradeID = g.ID
	})

	t.Run("resubmission lands on the same entry", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", getToken(t, teacher), body(75))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var g grade.Record
		unmarchallObj(t, rec, &g)
		if g.ID != gradeID {
			t.Errorf("ID = %s, want %s", g.ID, gradeID)
		}
		if g.LetterGrade != "C+" {
			t.Errorf("LetterGrade = %s, want C+", g.LetterGrade)
		}
	})

	t.Run("student reads own ledger", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/grades/students/"+st.ID, getToken(t, stUsr))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var recs []grade.Record
		unmarchallObj(t, rec, &recs)
		if len(recs) != 1 {
			t.Errorf("len(recs) = %d, want 1", len(recs))
		}
	})

	t.Run("student cannot read another ledger", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		req, rec := newAuthRequest(http.MethodGet, "/v1/grades/students/nope", getToken(t, stUsr))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_gradeApi_approveAppeal(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Admin GA", "adminga", "adminga@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher GA", "teacherga", "teacherga@test.cd", "", user.TeacherRoles, true)
	st := testutil.CreateStudent(t, stRepo, "Appealer", "appealer", "appealer@test.cd", "", "STU-5002", "Computer Science", "undergraduate", "2023-2024")
	crs := testutil.CreateCourse(t, crsRepo, "CS502", "Graphics", "Computer Science", "elective", 3)

	g, err := gradeSvc.Submit(grade.NewGrade{
		StudentID: st.ID, CourseID: crs.ID, Semester: "fall", AcademicYear: "2023-2024",
		Assessments: []grade.Assessment{{Type: "final", EarnedPoints: 72, MaxPoints: 100, Weight: 100}},
	}, teacher.ID)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	appeal := []byte(`{"numeric_grade": 88, "reason": "final was misgraded"}`)

	t.Run("admin required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades/"+g.ID+"/appeal", getToken(t, teacher), appeal)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown grade", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: grade.ErrNotFound.Error()})}
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades/nope/appeal", getToken(t, admin), appeal)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("approved", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades/"+g.ID+"/appeal", getToken(t, admin), appeal)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var updated grade.Record
		unmarchallObj(t, rec, &updated)
		if updated.NumericGrade != 88 || updated.LetterGrade != "B+" {
			t.Errorf("outcome = (%v, %s), want (88, B+)", updated.NumericGrade, updated.LetterGrade)
		}
		if len(updated.Modifications) != 1 {
			t.Fatalf("len(Modifications) = %d, want 1", len(updated.Modifications))
		}
		mod := updated.Modifications[0]
		if mod.ApprovedBy != admin.ID || mod.PrevLetterGrade != "C" {
			t.Errorf("modification audit = %+v", mod)
		}
	})
}
