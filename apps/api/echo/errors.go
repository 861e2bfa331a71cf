package echoapi

import (
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

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

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// notFoundErrs are domain lookups that map to a 404.
var notFoundErrs = map[error]bool{
	user.ErrNotFound:       true,
	student.ErrNotFound:    true,
	course.ErrNotFound:     true,
	enrollment.ErrNotFound: true,
	grade.ErrNotFound:      true,
	payment.ErrNotFound:    true,
	transcript.ErrNotFound: true,
}

// conflictErrs are domain writes rejected by a uniqueness or state rule; they
// map to a 400 with the domain message.
var conflictErrs = map[error]bool{
	enrollment.ErrAlreadyEnrolled:  true,
	attendance.ErrDuplicateSession: true,
	grade.ErrNotCompleted:          true,
}

// isSentinelErr reports whether err is one of the sentinels in errs. The cause
// may be of an unhashable type (eg. validator.ValidationErrors is a slice), in
// which case indexing the map would panic; such a cause is never a sentinel.
func isSentinelErr(errs map[error]bool, err error) bool {
	if t := reflect.TypeOf(err); t == nil || !t.Comparable() {
		return false
	}
	return errs[err]
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch {
		case isSentinelErr(notFoundErrs, cause):
			code = http.StatusNotFound
			message = cause.Error()
		case isSentinelErr(conflictErrs, cause):
			code = http.StatusBadRequest
			message = cause.Error()
		default:
			code, message = handleErrByType(err, ctx, logger, signalShutdown)
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func handleErrByType(err error, ctx echo.Context, logger core.Logger, signalShutdown func()) (int, interface{}) {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if origErr == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, origErr.Message
		}
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		return origErr.Code, origErr.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
		}
		return http.StatusBadRequest, fldErrs
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs
		}
		return http.StatusBadRequest, origErr.Error()
	default: // any other error is a server error
		msg := http.StatusText(http.StatusInternalServerError)

		var usr user.User
		if claims, cErr := getContextClaims(ctx); cErr == nil {
			usr.ID = claims.Subject
			usr.Username = claims.Username
			usr.Email = claims.Email
		}
		logger.Error(msg, errors.Wrap(err, msg), usr)

		// shutting down...
		if core.IsShutdown(err) {
			signalShutdown()
		}
		return http.StatusInternalServerError, msg
	}
}
