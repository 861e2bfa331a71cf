package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/rekodi/core/user"
	testutil "github.com/trezcool/rekodi/tests"
)

func Test_userApi_login(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "Active", "active", "active@test.cd", "LePassword", nil, true)
	testutil.CreateUser(t, usrRepo, "Naughty", "naughty", "naughty@test.cd", "LePassword", nil, false)

	tests := []httpTest{
		{
			name: "empty body", wantCode: http.StatusBadRequest,
			body:     []byte(`{}`),
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     []byte(`{"username": "ghost", "password": "LePassword"}`),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     []byte(`{"username": "active", "password": "nope"}`),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     []byte(`{"username": "naughty", "password": "LePassword"}`),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", wantCode: http.StatusOK, body: []byte(`{"username": "active", "password": "LePassword"}`)},
		{name: "login with email", wantCode: http.StatusOK, body: []byte(`{"username": "active@test.cd", "password": "LePassword"}`)},
		{name: "username is case-insensitive", wantCode: http.StatusOK, body: []byte(`{"username": "ACTIVE", "password": "LePassword"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != http.StatusOK {
					t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
				}
				var resp struct {
					Token string `json:"token"`
				}
				unmarchallObj(t, rec, &resp)
				if resp.Token == "" {
					t.Error("expected a token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("last login is updated", func(t *testing.T) {
		got, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if got.LastLogin.IsZero() {
			t.Error("expected LastLogin to be set")
		}
	})
}

func Test_userApi_query_permissions(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Student Q", "studentq", "studentq@test.cd", "", user.StudentRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin Q", "adminq", "adminq@test.cd", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{
			name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required", path: "/v1/users", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("admin sees the user list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var users []user.User
		unmarchallObj(t, rec, &users)
		if len(users) < 2 {
			t.Errorf("len(users) = %d, want at least 2", len(users))
		}
	})
}

func Test_userApi_retrieve(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "Self R", "selfr", "selfr@test.cd", "", user.StudentRoles, true)
	other := testutil.CreateUser(t, usrRepo, "Other R", "otherr", "otherr@test.cd", "", user.StudentRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin R", "adminr", "adminr@test.cd", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{name: "own profile", path: "/v1/users/" + usr.ID, token: getToken(t, usr), wantData: marchallObj(t, usr)},
		{
			name: "someone else's profile", path: "/v1/users/" + other.ID, token: getToken(t, usr),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "admin reads any profile", path: "/v1/users/" + other.ID, token: getToken(t, admin), wantData: marchallObj(t, other)},
		{
			name: "admin reads unknown ID", path: "/v1/users/nope", token: getToken(t, admin),
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
