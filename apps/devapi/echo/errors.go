package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/apps/devapi/inmemdb"
	"github.com/trezcool/edumaster/core"
)

var (
	errMissingToken      = echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	errInvalidToken      = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	errInvalidLogin      = echo.NewHTTPError(http.StatusBadRequest, "invalid email or password")
	errHttpForbidden     = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound      = echo.NewHTTPError(http.StatusNotFound, "not found")
	errValidationMessage = "validation failed"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var resp errorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				resp.Message = msg
			} else {
				resp.Message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			resp.Message = errValidationMessage
			resp.Errors = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				resp.Errors[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
		case *core.ValidationError:
			if origErr.Fields != nil {
				resp.Message = errValidationMessage
				resp.Errors = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					resp.Errors[fErr.Field] = fErr.Error
				}
			} else {
				resp.Message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch origErr {
			case inmemdb.ErrNotFound:
				code = http.StatusNotFound
				resp.Message = err.Error()
			case inmemdb.ErrEmailExists, inmemdb.ErrAlreadyPurchased, inmemdb.ErrNotStarted, inmemdb.ErrAlreadySubmitted:
				code = http.StatusBadRequest
				resp.Message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				resp.Message = http.StatusText(code)

				var args []interface{}
				args = append(args, errors.Wrap(err, resp.Message))
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					args = append(args, map[string]interface{}{"userId": claims.UserID, "email": claims.Email})
				}
				logger.Error(resp.Message, args...)

				if ctx.Echo().Debug {
					resp.Message = err.Error()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
