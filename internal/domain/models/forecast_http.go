package models

// Request and response shapes for the forecast HTTP endpoints.

type PredictRequest struct {
	Date string `query:"date" json:"date" validate:"required,datetime=2006-01-02"`
}

type ForecastResponse struct {
	PredictedLoad []float64 `json:"predicted_load"`
	ActualLoad    []float64 `json:"actual_load"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
