package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core/grade"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/core/user"
)

type gradeApi struct {
	svc        *grade.Service
	studentSvc *student.Service
	usrSvc     *user.Service
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *grade.Service, studentSvc *student.Service, usrSvc *user.Service) {
	api := gradeApi{svc: svc, studentSvc: studentSvc, usrSvc: usrSvc}

	gg := g.Group("/grades", jwt)
	gg.POST("", api.submit, staffMiddleware())
	gg.GET("/:id", api.retrieve, staffMiddleware())
	gg.POST("/:id/appeal", api.approveAppeal, adminMiddleware())
	gg.GET("/students/:id", api.queryByStudent)
}

// submit finalizes (or resubmits) a grade; concurrent submissions for the same
// (student, course, term) land on the same ledger entry.
func (api *gradeApi) submit(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.Submit(data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

// queryByStudent returns a student's grade ledger; staff may read any
// student's, a student only their own.
func (api *gradeApi) queryByStudent(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	studentID := ctx.Param("id")
	if !(ctxUsr.IsAdmin() || ctxUsr.IsTeacher()) {
		st, err := api.studentSvc.GetByUserID(ctxUsr.ID)
		if err != nil || st.ID != studentID {
			return errHttpNotFound
		}
	}

	var statuses []string
	if s := ctx.QueryParam("status"); s != "" {
		statuses = append(statuses, s)
	}
	recs, err := api.svc.QueryByStudent(studentID, statuses...)
	if err != nil {
		return errors.Wrap(err, "querying student grades")
	}
	if recs == nil {
		recs = []grade.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *gradeApi) approveAppeal(ctx echo.Context) error {
	var data grade.GradeAppeal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeAppeal")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.ApproveAppeal(ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}
