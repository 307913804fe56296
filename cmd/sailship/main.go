package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	sailship "github.com/MattCam2007/sailship-sub004"
)

const dateFormat = "2006-01-02"

type options struct {
	configDir   string
	start       string
	days        float64
	step        float64
	tickRate    float64
	steps       int
	target      string
	metricsAddr string
	ship        shipOptions
}

type shipOptions struct {
	name  string
	mass  float64
	sma   float64
	ecc   float64
	inc   float64 // degrees
	area  float64
	refl  float64
	angle float64 // degrees
	pitch float64 // degrees
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "sailship",
		Short:        "Solar sail trajectory simulator",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configDir, "config", "", "directory holding sailship.toml (defaults to $"+sailship.ConfigEnv+")")
	root.PersistentFlags().StringVar(&opts.start, "start", "2025-01-01", "start date (UTC, "+dateFormat+")")
	root.PersistentFlags().Float64Var(&opts.days, "days", 365, "simulated duration in days")
	root.PersistentFlags().StringVar(&opts.ship.name, "ship", "Sunjammer", "ship name")
	root.PersistentFlags().Float64Var(&opts.ship.mass, "mass", 1000, "ship mass (kg)")
	root.PersistentFlags().Float64Var(&opts.ship.sma, "sma", 1, "initial heliocentric semi-major axis (AU)")
	root.PersistentFlags().Float64Var(&opts.ship.ecc, "ecc", 0, "initial eccentricity")
	root.PersistentFlags().Float64Var(&opts.ship.inc, "inc", 0, "initial inclination (deg)")
	root.PersistentFlags().Float64Var(&opts.ship.area, "area", 250000, "sail area (m²), zero for no sail")
	root.PersistentFlags().Float64Var(&opts.ship.refl, "reflectivity", 0.9, "sail reflectivity")
	root.PersistentFlags().Float64Var(&opts.ship.angle, "angle", 35, "sail cone angle (deg)")
	root.PersistentFlags().Float64Var(&opts.ship.pitch, "pitch", 0, "sail pitch (deg)")

	run := &cobra.Command{
		Use:   "run",
		Short: "Propagate the ship and print its orbit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMission(cmd.Context(), opts)
		},
	}
	run.Flags().Float64Var(&opts.step, "step", 0.5, "time step (days)")
	run.Flags().Float64Var(&opts.tickRate, "rate", 0, "ticks per second of wall clock time, zero to run as fast as possible")
	run.Flags().StringVar(&opts.metricsAddr, "metrics", "", "address to serve Prometheus metrics on, e.g. :9100")

	predict := &cobra.Command{
		Use:   "predict",
		Short: "Print the predicted trajectory of the ship",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(cmd.Context(), opts)
		},
	}
	predict.Flags().IntVar(&opts.steps, "steps", 100, "number of samples")

	plan := &cobra.Command{
		Use:   "plan",
		Short: "Search the sail angle which brings the ship closest to a body",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), opts)
		},
	}
	plan.Flags().IntVar(&opts.steps, "steps", 100, "samples per candidate trajectory")
	plan.Flags().StringVar(&opts.target, "target", "Mars", "destination body")

	root.AddCommand(run, predict, plan)
	return root
}

// setup loads the configuration and builds the engine, the clock and the ship.
func setup(opts *options, reg prometheus.Registerer) (*sailship.Engine, *sailship.Clock, *sailship.Ship, kitlog.Logger, error) {
	conf, err := sailship.LoadConfig(opts.configDir)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger := sailship.NewLogger(os.Stderr, conf.Debug)
	startDT, err := time.Parse(dateFormat, opts.start)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("--start: %w", err)
	}
	var metrics *sailship.Metrics
	if reg != nil {
		if metrics, err = sailship.NewMetrics(reg); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	clock := sailship.NewClock(startDT)
	elements := sailship.OrbitalElements{
		A:     opts.ship.sma,
		E:     opts.ship.ecc,
		I:     sailship.Deg2rad(opts.ship.inc),
		Epoch: clock.JD,
		Mu:    sailship.MuSun,
	}
	var sail *sailship.SailConfig
	if opts.ship.area > 0 {
		sail = &sailship.SailConfig{
			Area:         opts.ship.area,
			Reflectivity: opts.ship.refl,
			Deployment:   100,
			Condition:    100,
			Angle:        sailship.Deg2rad(opts.ship.angle),
			Pitch:        sailship.Deg2rad(opts.ship.pitch),
		}
	}
	ship, err := sailship.NewShip(opts.ship.name, opts.ship.mass, elements, sail)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	engine := sailship.NewEngine(conf, sailship.DefaultCatalog(), logger, metrics)
	return engine, clock, ship, logger, nil
}

func runMission(ctx context.Context, opts *options) error {
	reg := prometheus.NewRegistry()
	engine, clock, ship, logger, err := setup(opts, reg)
	if err != nil {
		return err
	}
	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				level.Error(logger).Log("subsys", "metrics", "err", err)
			}
		}()
		defer srv.Close()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := sailship.WriteElementsCSV(os.Stdout, ship, clock.JD, true); err != nil {
		return err
	}
	if opts.tickRate > 0 {
		err = engine.RunRealtime(ctx, ship, clock, opts.days, opts.step, opts.tickRate)
	} else {
		err = engine.Run(ctx, ship, clock, opts.days, opts.step)
	}
	if err != nil {
		return err
	}
	return sailship.WriteElementsCSV(os.Stdout, ship, clock.JD, false)
}

func runPredict(_ context.Context, opts *options) error {
	engine, clock, ship, _, err := setup(opts, nil)
	if err != nil {
		return err
	}
	samples := engine.Predict(ship, clock.JD, opts.days, opts.steps).Collect()
	return sailship.WriteSamples(os.Stdout, ship.Name, samples)
}

func runPlan(ctx context.Context, opts *options) error {
	engine, clock, ship, logger, err := setup(opts, nil)
	if err != nil {
		return err
	}
	target, ok := sailship.DefaultCatalog().Body(opts.target)
	if !ok {
		return fmt.Errorf("unknown body %q", opts.target)
	}
	plan, err := sailship.NewPlanner(engine).Search(ctx, ship, sailship.PlanRequest{
		Target:  target,
		Start:   clock.JD,
		Horizon: opts.days,
		Steps:   opts.steps,
	})
	if err != nil {
		return err
	}
	level.Info(logger).Log("subsys", "plan", "target", plan.Target, "angle(deg)", sailship.Rad2deg(plan.Angle),
		"closest(AU)", plan.Intercept.Distance, "at", clock.Time().Add(time.Duration((plan.Intercept.Time-clock.JD)*24*float64(time.Hour))).Format(dateFormat),
		"inSOI", plan.Intercept.InsideSOI)
	return nil
}
