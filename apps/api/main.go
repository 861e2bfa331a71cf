package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/rekodi/apps/api/echo"
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
	sendgridmail "github.com/trezcool/rekodi/services/email/sendgrid"
	logsvc "github.com/trezcool/rekodi/services/logger"
	"github.com/trezcool/rekodi/storage/database"
	sqlxrepos "github.com/trezcool/rekodi/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	conf := core.Conf

	// set up logger
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		from := conf.DefaultFromEmail()
		mailSvc = dummymail.NewService(conf.AppName, from.String())
	} else {
		mailSvc = sendgridmail.NewService(conf.SendgridApiKey, conf.AppName, conf.DefaultFromAddr, logger)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sdb), mailSvc)
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(sdb))
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(sdb))
	enrSvc := enrollment.NewService(sqlxrepos.NewEnrollmentRepository(sdb))
	attSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(sdb), enrSvc)
	gradeRepo := sqlxrepos.NewGradeRepository(sdb)
	gradeSvc := grade.NewService(gradeRepo, courseSvc)
	paymentSvc := payment.NewService(sqlxrepos.NewPaymentRepository(sdb), studentSvc, enrSvc, mailSvc)
	transcriptSvc := transcript.NewService(sqlxrepos.NewTranscriptRepository(sdb), gradeRepo, studentSvc)

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:        conf.Server.Host + ":" + conf.Server.Port,
			Logger:         logger,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },

			UserSvc:       usrSvc,
			StudentSvc:    studentSvc,
			CourseSvc:     courseSvc,
			EnrollmentSvc: enrSvc,
			AttendanceSvc: attSvc,
			GradeSvc:      gradeSvc,
			PaymentSvc:    paymentSvc,
			TranscriptSvc: transcriptSvc,
		},
	)

	go server.Start()

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
