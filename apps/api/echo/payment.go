package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core/payment"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/core/user"
)

type paymentApi struct {
	svc        *payment.Service
	studentSvc *student.Service
	usrSvc     *user.Service
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *payment.Service, studentSvc *student.Service, usrSvc *user.Service) {
	api := paymentApi{svc: svc, studentSvc: studentSvc, usrSvc: usrSvc}

	pg := g.Group("/payments", jwt)
	pg.POST("", api.create, staffMiddleware())
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve, staffMiddleware())
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Create(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

// query returns the payment ledger; a student only ever sees their own rows.
func (api *paymentApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}
	if !(ctxUsr.IsAdmin() || ctxUsr.IsTeacher()) {
		st, err := api.studentSvc.GetByUserID(ctxUsr.ID)
		if err != nil {
			return errHttpForbidden
		}
		filter.StudentID = st.ID
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	payments, err := api.svc.Query(filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}
