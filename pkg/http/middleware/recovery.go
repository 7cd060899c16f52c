package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "LoadCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns panics into a 500 {"detail": "Internal Server Error"} response.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				l.Error("panic recovered",
					applogger.String("path", c.Path()),
					applogger.Error(perr),
					applogger.String("stack", string(debug.Stack())))
				if !c.Response().Committed {
					err = c.JSON(http.StatusInternalServerError, map[string]string{"detail": "Internal Server Error"})
				}
			}()
			return next(c)
		}
	}
}
