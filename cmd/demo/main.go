// Command demo wires the engine's ambient stack together and runs the
// worked scenarios: a marker on a boosted object, a light pulse between
// two stationary observers, a constantly accelerating rocket, the twin
// paradox, and an accelerating rocket with a periodic light sender.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/flatspace/worldline/eventlog"
	"github.com/flatspace/worldline/internal/engineconfig"
	"github.com/flatspace/worldline/internal/eventsink"
	"github.com/flatspace/worldline/internal/obslog"
	"github.com/flatspace/worldline/internal/telemetry"
	"github.com/flatspace/worldline/object"
	"github.com/flatspace/worldline/scheduler"
	"github.com/flatspace/worldline/vector"
)

func main() {
	configDir := flag.String("config-dir", ".", "directory to search for a worldline config file")
	configName := flag.String("config-name", "worldline", "config file base name (without extension)")
	scenario := flag.String("scenario", "twin-paradox", "scenario to run: marker, pulse, rocket, twin-paradox, rocket-sender")
	flag.Parse()

	cfg, err := engineconfig.Load(*configDir, *configName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLogger, err := obslog.New(obslog.Options{
		Level:          cfg.Log.Level,
		GraylogEnabled: cfg.Log.Graylog.Enabled,
		GraylogAddress: cfg.Log.Graylog.Address,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLogger()

	rec, err := telemetry.New()
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize telemetry, continuing without it")
		rec = nil
	}

	opts := []scheduler.Option{scheduler.WithLogger(logger)}
	if rec != nil {
		opts = append(opts, scheduler.WithTelemetry(rec))
	}

	var sink *eventsink.Sink
	if cfg.Influx.Enabled {
		sink = eventsink.NewSink(eventsink.Config{
			Host:     cfg.Influx.Host,
			Port:     cfg.Influx.Port,
			Protocol: cfg.Influx.Protocol,
			Token:    cfg.Influx.Token,
			Org:      cfg.Influx.Org,
			Bucket:   cfg.Influx.Bucket,
		}, logger)
		defer sink.Close()
		opts = append(opts, scheduler.WithObserver(sink.Observer()))
	}

	e := scheduler.New(cfg.Scheduler, opts...)

	horizon, err := runScenario(e, *scenario)
	if err != nil {
		logger.Error().Err(err).Str("scenario", *scenario).Msg("scenario setup failed")
		os.Exit(1)
	}

	if err := e.SimulateTo(horizon); err != nil {
		logger.Error().Err(err).Msg("simulation failed")
		os.Exit(1)
	}

	printEvents(e.Events(eventlog.New()))
}

func runScenario(e *scheduler.Engine, name string) (horizon float64, err error) {
	switch name {
	case "marker":
		o := object.New("o1", "boosted marker carrier")
		if err := o.AddAction(object.Marker{Name: "mark", Tau: 0.5}); err != nil {
			return 0, err
		}
		e.AddObject(o, vector.Vector4{}, vector.Vector3{X: 0.5}, 0)
		return 1.0, nil

	case "pulse":
		sender := object.New("sender", "pulse sender")
		if err := sender.AddAction(object.Pulse{Name: "beep", Start: 0}); err != nil {
			return 0, err
		}
		receiver := object.New("receiver", "pulse receiver")
		e.AddObject(sender, vector.Vector4{}, vector.Zero3, 0)
		e.AddObject(receiver, vector.NewVector4(0, vector.Vector3{X: 1}), vector.Zero3, 0)
		return 2.0, nil

	case "rocket":
		o := object.New("rocket", "constantly accelerating rocket")
		if err := o.AddMotion(object.LongitudinalAcceleration{Start: 0, End: math.Inf(1), A: vector.Vector3{X: 1}}); err != nil {
			return 0, err
		}
		if err := o.AddAction(object.Marker{Name: "checkpoint", Tau: 1}); err != nil {
			return 0, err
		}
		e.AddObject(o, vector.Vector4{}, vector.Zero3, 0)
		return 2.0, nil

	case "twin-paradox":
		old := object.New("old", "stationary twin")
		young := object.New("young", "traveling twin")
		segs := []struct {
			start, dur, dir float64
		}{
			{0, 4, 1},
			{4, 8, -1},
			{12, 4, 1},
		}
		for _, s := range segs {
			m := object.LongitudinalAcceleration{Start: s.start, End: s.start + s.dur, A: vector.Vector3{X: s.dir}}
			if err := young.AddMotion(m); err != nil {
				return 0, err
			}
		}
		if err := young.AddAction(object.DetectCollision{Name: "reunite", Start: 4, Until: math.Inf(1), Targets: []string{"old"}}); err != nil {
			return 0, err
		}
		e.AddObject(old, vector.Vector4{}, vector.Zero3, 0)
		e.AddObject(young, vector.Vector4{}, vector.Zero3, 0)
		return 110.0, nil

	case "rocket-sender":
		bottom := object.New("bottom", "rocket bottom")
		top := object.New("top", "rocket top")
		accel := vector.Vector3{X: 0.1}
		if err := bottom.AddMotion(object.LongitudinalAcceleration{Start: 0, End: math.Inf(1), A: accel}); err != nil {
			return 0, err
		}
		if err := top.AddMotion(object.LongitudinalAcceleration{Start: 0, End: math.Inf(1), A: accel}); err != nil {
			return 0, err
		}
		if err := bottom.AddAction(object.Sender{Name: "A", Start: 0, Period: 1}); err != nil {
			return 0, err
		}
		e.AddObject(bottom, vector.Vector4{}, vector.Zero3, 0)
		e.AddObject(top, vector.NewVector4(0, vector.Vector3{X: 1}), vector.Zero3, 0)
		return 10.0, nil

	default:
		return 0, fmt.Errorf("unknown scenario %q", name)
	}
}

func printEvents(events []eventlog.Event) {
	for _, ev := range events {
		if ev.ReceiverID != "" {
			fmt.Printf("%-12s cause=%-14s %s@tau=%.4f -> %s@tau=%.4f (r=%.4f,%.4f,%.4f t=%.4f)\n",
				ev.Name, ev.Cause, ev.SenderID, ev.SenderState.Tau, ev.ReceiverID, ev.ReceiverState.Tau,
				ev.SenderState.R.X, ev.SenderState.R.Y, ev.SenderState.R.Z, ev.SenderState.R.T)
			continue
		}
		fmt.Printf("%-12s cause=%-14s %s@tau=%.4f (r=%.4f,%.4f,%.4f t=%.4f)\n",
			ev.Name, ev.Cause, ev.SenderID, ev.SenderState.Tau,
			ev.SenderState.R.X, ev.SenderState.R.Y, ev.SenderState.R.Z, ev.SenderState.R.T)
	}
}
