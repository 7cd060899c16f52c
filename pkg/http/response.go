package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DetailBody is the error envelope: {"detail": "..."}.
type DetailBody struct {
	Detail string `json:"detail"`
}

// JSONResponse writes v with status.
func JSONResponse(c echo.Context, status int, v interface{}) error {
	return c.JSON(status, v)
}

// SuccessResponse writes v with 200.
func SuccessResponse(c echo.Context, v interface{}) error {
	return c.JSON(http.StatusOK, v)
}

// DetailResponse writes {"detail": detail} with status.
func DetailResponse(c echo.Context, status int, detail string) error {
	return c.JSON(status, DetailBody{Detail: detail})
}

// AppErrorResponse renders an AppError; anything else becomes a generic 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DetailResponse(c, appErr.Status, appErr.Detail)
	}
	return DetailResponse(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// ErrorHandler is an echo.HTTPErrorHandler that keeps every error in the detail envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		_ = DetailResponse(c, he.Code, msg)
		return
	}
	_ = AppErrorResponse(c, err)
}
