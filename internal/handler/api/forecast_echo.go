package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	models "LoadCast/internal/domain/models"
	xhttp "LoadCast/pkg/http"
	xlogger "LoadCast/pkg/logger"
	"LoadCast/pkg/util"

	"github.com/labstack/echo/v4"
)

const (
	welcomeMessage     = "Welcome to the Load Forecasting API"
	defaultHealthLimit = 5 * time.Second
)

// Forecaster runs one forecast. Errors carry a models.ErrorKind.
type Forecaster interface {
	Predict(ctx context.Context, ref time.Time, horizonHours int) (models.ForecastResult, error)
}

// HealthCheck is a named readiness check reported by GET /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ForecastEchoHandler serves the forecast endpoints.
type ForecastEchoHandler struct {
	logger      *xlogger.Logger
	forecaster  Forecaster
	checks      []HealthCheck
	healthLimit time.Duration
}

func NewForecastEchoHandler(logger *xlogger.Logger, f Forecaster, checks ...HealthCheck) *ForecastEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, forecaster: f, checks: checks, healthLimit: defaultHealthLimit}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	for _, hz := range models.Horizons() {
		e.GET("/predict/"+hz.Name, h.Predict(hz))
	}
}

func (h *ForecastEchoHandler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.MessageResponse{Message: welcomeMessage})
}

// Predict returns the handler for one horizon.
func (h *ForecastEchoHandler) Predict(hz models.Horizon) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := &models.PredictRequest{}
		if err := xhttp.BindAndValidate(c, req); err != nil {
			return xhttp.AppErrorResponse(c, toAppError(models.NewForecastError(models.KindInvalidDateFormat, err)))
		}
		ref, err := util.ParseDate(req.Date)
		if err != nil {
			return xhttp.AppErrorResponse(c, toAppError(models.NewForecastError(models.KindInvalidDateFormat, err)))
		}

		res, err := h.forecaster.Predict(c.Request().Context(), ref, hz.Hours)
		if err != nil {
			appErr := toAppError(err)
			if appErr.Status >= http.StatusInternalServerError {
				h.logger.Error("forecast error",
					xlogger.String("horizon", hz.Name),
					xlogger.String("date", req.Date),
					xlogger.Error(err))
			}
			return xhttp.AppErrorResponse(c, appErr)
		}
		return xhttp.SuccessResponse(c, toResponse(res))
	}
}

// Health runs every check concurrently and reports 503 if any fails.
func (h *ForecastEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.healthLimit)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]string, len(h.checks))
		failed bool
	)
	for _, hc := range h.checks {
		wg.Add(1)
		go func(hc HealthCheck) {
			defer wg.Done()
			status := "ok"
			if err := hc.Check(ctx); err != nil {
				status = "error"
				if errors.Is(err, context.DeadlineExceeded) {
					status = "timeout"
				}
				h.logger.Warn("health check failed", xlogger.String("check", hc.Name), xlogger.Error(err))
			}
			mu.Lock()
			defer mu.Unlock()
			checks[hc.Name] = status
			if status != "ok" {
				failed = true
			}
		}(hc)
	}
	wg.Wait()

	if failed {
		return xhttp.JSONResponse(c, http.StatusServiceUnavailable, models.HealthResponse{Status: "degraded", Checks: checks})
	}
	return xhttp.SuccessResponse(c, models.HealthResponse{Status: "ok", Checks: checks})
}

func toResponse(res models.ForecastResult) models.ForecastResponse {
	out := models.ForecastResponse{PredictedLoad: res.PredictedLoad, ActualLoad: res.ActualLoad}
	if out.PredictedLoad == nil {
		out.PredictedLoad = []float64{}
	}
	if out.ActualLoad == nil {
		out.ActualLoad = []float64{}
	}
	return out
}
