package models

import "time"

// Horizon is a named forecast length.
type Horizon struct {
	Name  string
	Hours int
}

var (
	HorizonDay   = Horizon{Name: "day", Hours: 24}
	HorizonWeek  = Horizon{Name: "week", Hours: 24 * 7}
	HorizonMonth = Horizon{Name: "month", Hours: 24 * 31}
)

// Horizons lists the horizons served over HTTP.
func Horizons() []Horizon {
	return []Horizon{HorizonDay, HorizonWeek, HorizonMonth}
}

// HorizonByName resolves "day", "week" or "month".
func HorizonByName(name string) (Horizon, bool) {
	for _, h := range Horizons() {
		if h.Name == name {
			return h, true
		}
	}
	return Horizon{}, false
}

// ForecastResult holds index-aligned predicted and actual load in original units.
type ForecastResult struct {
	PredictedLoad []float64
	ActualLoad    []float64
}

// Len returns the number of forecast points.
func (r ForecastResult) Len() int { return len(r.PredictedLoad) }

// ForecastEvent is emitted after a successful forecast.
// Note: no transport (json/http) concerns here beyond the wire names.
type ForecastEvent struct {
	ReferenceDate time.Time `json:"reference_date"`
	HorizonHours  int       `json:"horizon_hours"`
	Points        int       `json:"points"`
	Model         string    `json:"model"`
	Cached        bool      `json:"cached"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}
