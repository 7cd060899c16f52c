package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/fail", func(c echo.Context) error {
		return BadRequestError("nope")
	})
	e.GET("/echo", func(c echo.Context) error {
		var req struct {
			Date string `query:"date" validate:"required,datetime=2006-01-02"`
			Mode string `query:"mode" default:"fast" validate:"oneof=fast slow"`
		}
		if err := BindAndValidate(c, &req); err != nil {
			return DetailResponse(c, http.StatusBadRequest, err.Error())
		}
		return SuccessResponse(c, map[string]string{"date": req.Date, "mode": req.Mode})
	})
}

func do(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServerRendersDetailErrors(t *testing.T) {
	s := NewServer(routes{})

	rec := do(s, "/fail")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"nope"}`, rec.Body.String())

	rec = do(s, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())
}

func TestBindAndValidate(t *testing.T) {
	s := NewServer(routes{})

	rec := do(s, "/echo?date=2023-02-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2023-02-01","mode":"fast"}`, rec.Body.String())

	rec = do(s, "/echo?date=2023-13-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Date must match layout")

	rec = do(s, "/echo")
	assert.Contains(t, rec.Body.String(), "Date is required")
}

func TestServerExposesMetrics(t *testing.T) {
	s := NewServer(routes{}, WithMetrics(prometheus.NewRegistry(), "/metrics"))
	do(s, "/fail")

	rec := do(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `http_requests_total{method="GET",route="/fail",status="400"} 1`))
}

func TestValidationErrorsHas(t *testing.T) {
	v := ValidationErrors{{Field: "Date", Message: "Date is required"}}
	assert.True(t, v.Has("Date"))
	assert.False(t, v.Has("Mode"))
	assert.Equal(t, "Date is required", v.Error())
}

func TestClientSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		if r.URL.Path == "/missing" {
			http.Error(w, "no such model", http.StatusNotFound)
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()
	c := NewClient(WithHTTPClient(srv.Client()), WithTimeout(0))

	var got struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.SendAndParse(context.Background(), &RequestOptions{Method: MethodPost, URL: srv.URL + "/v1", Body: map[string]int{"n": 1}}, &got))
	assert.True(t, got.OK)

	err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL + "/missing"}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, se.Body, "no such model")
}
