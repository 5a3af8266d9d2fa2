package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler replaces echo's default error handler. In development the
// error message is returned as is; otherwise internal errors are logged and
// answered with the generic body of the error page.
func ErrorHandler(dev bool, log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		var body echo.Map
		switch {
		case code < http.StatusInternalServerError && he != nil:
			body = echo.Map{"error": he.Message}
		case dev:
			body = echo.Map{"error": err.Error()}
		default:
			log.Error("unhandled error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
			body = errorBody(c)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Warn("writing error response failed", zap.Error(err))
		}
	}
}
