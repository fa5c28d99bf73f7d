// Command padwatch fetches weekly U.S. refinery utilization from the EIA API
// and writes a comparative html dashboard.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/padwatch/go-padwatch"
	"github.com/padwatch/go-padwatch/eia"
)

type config struct {
	APIKey      string `envconfig:"EIA_API_KEY" required:"true"`
	Window      int    `envconfig:"WINDOW" default:"4"`
	Lookback    string `envconfig:"LOOKBACK" default:"2010-01-01"`
	Output      string `envconfig:"OUTPUT" default:"refinery_dashboard.html"`
	Regions     string `envconfig:"REGIONS"`
	Concurrency int    `envconfig:"CONCURRENCY" default:"1"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("padwatch failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	// a local .env is a convenience, not a requirement
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("padwatch", &cfg); err != nil {
		return fmt.Errorf("loading config, %w", err)
	}

	lookback, err := time.Parse("2006-01-02", cfg.Lookback)
	if err != nil {
		return fmt.Errorf("parsing lookback %q, %w", cfg.Lookback, err)
	}

	labels := padwatch.DefaultLabels()
	if cfg.Regions != "" {
		labels, err = loadRegions(cfg.Regions)
		if err != nil {
			return fmt.Errorf("loading regions from %s, %w", cfg.Regions, err)
		}
	}

	opt := padwatch.NewDefaultOptions()
	opt.WindowSize = cfg.Window
	opt.Range = eia.Range{Start: lookback}
	opt.Concurrency = cfg.Concurrency

	reg, err := padwatch.NewRegistry(eia.NewClient(cfg.APIKey), opt)
	if err != nil {
		return err
	}

	slog.Info("building dataset", "labels", len(labels), "window", cfg.Window, "lookback", cfg.Lookback)
	dataset, err := reg.BuildDataset(context.Background(), labels)
	if err != nil {
		return err
	}
	for _, f := range dataset.Failures {
		slog.Warn("skipping failed label", "label", f.Label, "error", f.Err.Error())
	}
	if len(dataset.Labels) == 0 {
		return fmt.Errorf("no series built: %d of %d labels failed", len(dataset.Failures), len(labels))
	}

	if err := padwatch.Dashboard(dataset, cfg.Output); err != nil {
		return fmt.Errorf("rendering dashboard, %w", err)
	}
	slog.Info("dashboard written", "path", cfg.Output, "built", len(dataset.Labels), "failed", len(dataset.Failures))
	return nil
}

func loadRegions(path string) ([]padwatch.Label, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var labels []padwatch.Label
	if err := yaml.Unmarshal(raw, &labels); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, padwatch.ErrNoLabels
	}
	return labels, nil
}
