package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	models "LoadCast/internal/domain/models"
	"LoadCast/internal/di"
	"LoadCast/internal/handler/api"
	"LoadCast/pkg/config"
	"LoadCast/pkg/util"

	"github.com/alecthomas/kong"
)

type Globals struct {
	Config string `help:"Config file path. A missing file falls back to defaults." default:"config/config.yaml" type:"path" env:"LOADCAST_CONFIG"`
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Run the forecast HTTP service."`
	Predict PredictCmd `cmd:"" help:"Run one forecast and print the JSON response."`
}

type ServeCmd struct{}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := config.LoadWithEnv(g.Config)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	log.Printf("env=%s data=%s model=%s port=%d", cfg.Environment, cfg.Data.Backend, cfg.Model.Backend, cfg.Server.Port)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()

	// Run application (blocks until signal)
	return app.Run(context.Background())
}

type PredictCmd struct {
	Date    string `required:"" help:"Reference date (YYYY-MM-DD)."`
	Horizon string `default:"day" enum:"day,week,month" help:"Forecast horizon: ${enum}."`
}

func (c *PredictCmd) Run(g *Globals) error {
	cfg, err := config.LoadWithEnv(g.Config)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	ref, err := util.ParseDate(c.Date)
	if err != nil {
		return fmt.Errorf("%s: %w", api.DetailInvalidDate, err)
	}
	hz, _ := models.HorizonByName(c.Horizon)

	f, cleanup, err := di.InitializeForecaster(cfg)
	if err != nil {
		return fmt.Errorf("forecaster initialization failed: %w", err)
	}
	defer cleanup()

	res, err := f.Predict(context.Background(), ref, hz.Hours)
	if err != nil {
		_, detail := api.StatusFor(models.KindOf(err))
		return fmt.Errorf("%s: %w", detail, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(models.ForecastResponse{
		PredictedLoad: nonNil(res.PredictedLoad),
		ActualLoad:    nonNil(res.ActualLoad),
	})
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("loadcast"),
		kong.Description("Electrical load forecasting service."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
