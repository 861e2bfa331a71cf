package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/rekodi/apps/api/echo"
	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/attendance"
	"github.com/trezcool/rekodi/core/course"
	"github.com/trezcool/rekodi/core/enrollment"
	"github.com/trezcool/rekodi/core/grade"
	"github.com/trezcool/rekodi/core/payment"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/core/transcript"
	"github.com/trezcool/rekodi/core/user"
	dummymail "github.com/trezcool/rekodi/services/email/dummy"
	logsvc "github.com/trezcool/rekodi/services/logger"
	dummydb "github.com/trezcool/rekodi/storage/database/dummy"
)

var (
	app Server

	usrRepo  user.Repository
	stRepo   student.Repository
	crsRepo  course.Repository
	enrRepo  enrollment.Repository
	attRepo  attendance.Repository
	grdRepo  grade.Repository
	payRepo  payment.Repository
	trRepo   transcript.Repository
	enrSvc   *enrollment.Service
	gradeSvc *grade.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	db, err := dummydb.Open()
	if err != nil {
		log.Fatalf("dummydb.Open(): %v", err)
	}

	usrRepo = dummydb.NewUserRepository(db)
	stRepo = dummydb.NewStudentRepository(db)
	crsRepo = dummydb.NewCourseRepository(db)
	enrRepo = dummydb.NewEnrollmentRepository(db)
	attRepo = dummydb.NewAttendanceRepository(db)
	grdRepo = dummydb.NewGradeRepository(db)
	payRepo = dummydb.NewPaymentRepository(db)
	trRepo = dummydb.NewTranscriptRepository(db)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	logger.Enable(false)

	mailSvc := dummymail.NewService(core.Conf.AppName, core.Conf.DefaultFromEmail().Address)
	usrSvc := user.NewService(usrRepo, mailSvc)
	studentSvc := student.NewService(stRepo)
	courseSvc := course.NewService(crsRepo)
	enrSvc = enrollment.NewService(enrRepo)
	attendanceSvc := attendance.NewService(attRepo, enrSvc)
	gradeSvc = grade.NewService(grdRepo, courseSvc)
	paymentSvc := payment.NewService(payRepo, studentSvc, enrSvc, mailSvc)
	transcriptSvc := transcript.NewService(trRepo, grdRepo, studentSvc)

	app = NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			UserSvc:        usrSvc,
			StudentSvc:     studentSvc,
			CourseSvc:      courseSvc,
			EnrollmentSvc:  enrSvc,
			AttendanceSvc:  attendanceSvc,
			GradeSvc:       gradeSvc,
			PaymentSvc:     paymentSvc,
			TranscriptSvc:  transcriptSvc,
		},
	)

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func unmarchallObj(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarchallObj(): %v; body = %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if tt.wantCode == 0 {
		tt.wantCode = http.StatusOK
	}
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
