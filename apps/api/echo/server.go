package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/rekodi/core"
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
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger
		// SignalShutdown is called when an unrecoverable error is caught.
		SignalShutdown func()

		UserSvc       *user.Service
		StudentSvc    *student.Service
		CourseSvc     *course.Service
		EnrollmentSvc *enrollment.Service
		AttendanceSvc *attendance.Service
		GradeSvc      *grade.Service
		PaymentSvc    *payment.Service
		TranscriptSvc *transcript.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc, s.opts.UserSvc)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc)
	registerEnrollmentAPI(v1, jwt, s.opts.EnrollmentSvc)
	registerGradeAPI(v1, jwt, s.opts.GradeSvc, s.opts.StudentSvc, s.opts.UserSvc)
	registerAttendanceAPI(v1, jwt, s.opts.AttendanceSvc)
	registerPaymentAPI(v1, jwt, s.opts.PaymentSvc, s.opts.StudentSvc, s.opts.UserSvc)
	registerTranscriptAPI(v1, jwt, s.opts.TranscriptSvc, s.opts.StudentSvc, s.opts.UserSvc)

	// TODO: swagger !!
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Rekodi API!")
}
