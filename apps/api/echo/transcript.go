package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/core/transcript"
	"github.com/trezcool/rekodi/core/user"
)

type transcriptApi struct {
	svc        *transcript.Service
	studentSvc *student.Service
	usrSvc     *user.Service
}

func registerTranscriptAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *transcript.Service, studentSvc *student.Service, usrSvc *user.Service) {
	api := transcriptApi{svc: svc, studentSvc: studentSvc, usrSvc: usrSvc}

	tg := g.Group("/transcripts")

	// public verification
	tg.GET("/verify/:code", api.verify)

	ag := tg.Group("", jwt)
	ag.POST("/generate/:studentID", api.generate)
	ag.GET("/students/:id", api.queryByStudent)
	ag.GET("/:id", api.retrieve)
}

// generate compiles a fresh snapshot; a student may only generate their own.
func (api *transcriptApi) generate(ctx echo.Context) error {
	studentID := ctx.Param("studentID")
	if err := api.checkOwnership(ctx, studentID); err != nil {
		return err
	}

	var data transcript.GenerateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tr, err := api.svc.Generate(studentID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tr)
}

func (api *transcriptApi) verify(ctx echo.Context) error {
	tr, err := api.svc.VerifyByCode(ctx.Param("code"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *transcriptApi) queryByStudent(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if err := api.checkOwnership(ctx, studentID); err != nil {
		return err
	}

	transcripts, err := api.svc.QueryByStudent(studentID)
	if err != nil {
		return errors.Wrap(err, "querying transcripts")
	}
	if transcripts == nil {
		transcripts = []transcript.Transcript{}
	}
	return ctx.JSON(http.StatusOK, transcripts)
}

// retrieve fetches an issued transcript and bumps its download bookkeeping.
func (api *transcriptApi) retrieve(ctx echo.Context) error {
	tr, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := api.checkOwnership(ctx, tr.StudentID); err != nil {
		return err
	}

	if err := api.svc.RecordDownload(tr.ID); err != nil {
		return errors.Wrap(err, "recording download")
	}
	tr.DownloadCount++
	return ctx.JSON(http.StatusOK, tr)
}

// checkOwnership allows staff through and restricts students to their own records.
func (api *transcriptApi) checkOwnership(ctx echo.Context, studentID string) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if ctxUsr.IsAdmin() || ctxUsr.IsTeacher() {
		return nil
	}

	st, err := api.studentSvc.GetByUserID(ctxUsr.ID)
	if err != nil || st.ID != studentID {
		return errHttpForbidden
	}
	return nil
}
