package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/core/user"
	testutil "github.com/trezcool/rekodi/tests"
)

func Test_studentApi_create(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Admin SC", "adminsc", "adminsc@test.cd", "", []string{user.RoleAdminRegistrar}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher SC", "teachersc", "teachersc@test.cd", "", user.TeacherRoles, true)

	newStudent := func(name, uname, email, number string) []byte {
		return []byte(fmt.Sprintf(
			`{"name": %q, "username": %q, "email": %q, "password": "LePassword1!", "password_confirm": "LePassword1!",
			  "student_number": %q, "program": "Computer Science", "level": "undergraduate", "entry_year": "2023-2024"}`,
			name, uname, email, number,
		))
	}

	tests := []httpTest{
		{
			name: "auth required", body: newStudent("A", "studenta", "sa@test.cd", "STU-1001"),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required", token: getToken(t, teacher),
			body:     newStudent("A", "studenta", "sa@test.cd", "STU-1001"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "created", token: getToken(t, admin),
			body: newStudent("Alice", "studenta", "sa@test.cd", "STU-1001"), wantCode: http.StatusCreated,
		},
		{
			name: "duplicate student number", token: getToken(t, admin),
			body:     newStudent("Bob", "studentb", "sb@test.cd", "STU-1001"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_number": student.ErrNumberExists.Error()}),
		},
		{
			name: "duplicate username", token: getToken(t, admin),
			body:     newStudent("Carl", "studenta", "sc@test.cd", "STU-1002"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/students", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != http.StatusCreated {
					t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
				}
				var st student.Student
				unmarchallObj(t, rec, &st)
				if st.ID == "" || st.UserID == "" {
					t.Errorf("expected IDs to be assigned: %+v", st)
				}
				if st.User.Username != "studenta" {
					t.Errorf("User.Username = %s, want studenta", st.User.Username)
				}
				if !st.User.RoleStartsWith(user.RoleStudent) {
					t.Errorf("User.Roles = %v, want a student role", st.User.Roles)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_query(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Admin SQ", "adminsq", "adminsq@test.cd", "", []string{user.RoleAdmin}, true)
	st1 := testutil.CreateStudent(t, stRepo, "Query One", "querysta", "qsa@test.cd", "", "STU-2001", "Computer Science", "undergraduate", "2023-2024")
	testutil.CreateStudent(t, stRepo, "Query Two", "querystb", "qsb@test.cd", "", "STU-2002", "Mathematics", "graduate", "2022-2023")

	t.Run("student cannot list", func(t *testing.T) {
		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: st1.UserID})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/students", getToken(t, usr))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("paginated list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students?page=1&page_size=1", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Items      []student.Student `json:"items"`
			Pagination core.Pagination   `json:"pagination"`
		}
		unmarchallObj(t, rec, &resp)
		if len(resp.Items) != 1 {
			t.Errorf("len(items) = %d, want 1", len(resp.Items))
		}
		if resp.Pagination.TotalItems < 2 {
			t.Errorf("pagination.TotalItems = %d, want at least 2", resp.Pagination.TotalItems)
		}
		if !resp.Pagination.HasNext {
			t.Error("expected pagination.HasNext")
		}
	})

	t.Run("search by student number", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students?search=STU-2001", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Items []student.Student `json:"items"`
		}
		unmarchallObj(t, rec, &resp)
		if len(resp.Items) != 1 || resp.Items[0].ID != st1.ID {
			t.Errorf("items = %+v, want [%s]", resp.Items, st1.ID)
		}
	})
}

func Test_studentApi_retrieve(t *testing.T) {
	st := testutil.CreateStudent(t, stRepo, "Self SR", "selfstr", "selfstr@test.cd", "", "STU-3001", "Computer Science", "undergraduate", "2023-2024")
	other := testutil.CreateStudent(t, stRepo, "Other SR", "otherstr", "otherstr@test.cd", "", "STU-3002", "Computer Science", "undergraduate", "2023-2024")
	teacher := testutil.CreateUser(t, usrRepo, "Teacher SR", "teachersr", "teachersr@test.cd", "", user.TeacherRoles, true)

	stUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: st.UserID})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}

	tests := []httpTest{
		{name: "own profile", path: "/v1/students/" + st.ID, token: getToken(t, stUsr), wantData: marchallObj(t, st)},
		{
			name: "someone else's profile", path: "/v1/students/" + other.ID, token: getToken(t, stUsr),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "staff reads any profile", path: "/v1/students/" + other.ID, token: getToken(t, teacher), wantData: marchallObj(t, other)},
		{
			name: "unknown ID", path: "/v1/students/nope", token: getToken(t, teacher),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
