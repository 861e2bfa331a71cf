package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance", jwt, staffMiddleware())
	ag.POST("", api.record)
	ag.POST("/bulk", api.recordBulk)
	ag.GET("/enrollments/:id", api.queryByEnrollment)
}

func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	s, err := api.svc.Record(data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

// recordBulk records marks one by one; a bad row is reported in the result,
// never aborting the batch.
func (api *attendanceApi) recordBulk(ctx echo.Context) error {
	var data []attendance.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to []NewSession")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res := api.svc.RecordBulk(data, claims.Subject)
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) queryByEnrollment(ctx echo.Context) error {
	sessions, err := api.svc.QueryByEnrollment(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance sessions")
	}
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}
