// Package eventsink mirrors committed simulation events to InfluxDB as
// one-way telemetry. It never feeds data back into the simulation; the
// World remains the sole source of truth.
package eventsink

import (
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/flatspace/worldline/eventlog"
	"github.com/flatspace/worldline/simworld"
)

// epoch anchors the synthetic point timestamps derived from simulation
// coordinate time below; coordinate time has no wall-clock epoch of its
// own, but InfluxDB line protocol requires a real timestamp per point.
var epoch = time.Unix(0, 0).UTC()

// Config names the InfluxDB endpoint and bucket events are written to.
type Config struct {
	Host     string
	Port     string
	Protocol string
	Token    string
	Org      string
	Bucket   string
}

// Sink owns an InfluxDB write API and remembers how many events of the
// observed World it has already flushed.
type Sink struct {
	client influxdb2.Client
	writer influxdb2_api.WriteAPI
	logger zerolog.Logger

	flushed int
}

// NewSink connects to InfluxDB and prepares a write API for cfg.Bucket.
func NewSink(cfg Config, logger zerolog.Logger) *Sink {
	client := influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", cfg.Protocol, cfg.Host, cfg.Port),
		cfg.Token,
		influxdb2.DefaultOptions().SetBatchSize(500).SetFlushInterval(1000),
	)

	s := &Sink{
		client: client,
		writer: client.WriteAPI(cfg.Org, cfg.Bucket),
		logger: logger,
	}

	go func() {
		for err := range s.writer.Errors() {
			s.logger.Error().Err(err).Msg("error sending simulation event to InfluxDB")
		}
	}()

	return s
}

// Close flushes any buffered points and releases the underlying client.
func (s *Sink) Close() {
	s.writer.Flush()
	s.client.Close()
}

// Observer returns a scheduler.Observer (by structural shape: func(*simworld.World) bool)
// that mirrors every event newly committed to w since the last call, and
// never requests the engine to stop.
func (s *Sink) Observer() func(w *simworld.World) bool {
	return func(w *simworld.World) bool {
		events := w.Events()
		for _, e := range events[s.flushed:] {
			s.writer.WritePoint(pointFromEvent(e))
		}
		s.flushed = len(events)
		return false
	}
}

func pointFromEvent(e eventlog.Event) *influxdb2_write.Point {
	tags := map[string]string{
		"name":   e.Name,
		"cause":  e.Cause,
		"sender": e.SenderID,
	}
	if e.ReceiverID != "" {
		tags["receiver"] = e.ReceiverID
	}

	fields := map[string]any{
		"sender_t":   e.SenderState.R.T,
		"sender_x":   e.SenderState.R.X,
		"sender_y":   e.SenderState.R.Y,
		"sender_z":   e.SenderState.R.Z,
		"sender_tau": e.SenderState.Tau,
	}
	if e.ReceiverID != "" {
		fields["receiver_t"] = e.ReceiverState.R.T
		fields["receiver_x"] = e.ReceiverState.R.X
		fields["receiver_y"] = e.ReceiverState.R.Y
		fields["receiver_z"] = e.ReceiverState.R.Z
		fields["receiver_tau"] = e.ReceiverState.Tau
	}

	return influxdb2_write.NewPoint("worldline_event", tags, fields, eventTimestamp(e))
}

// eventTimestamp maps an event's sender coordinate time onto a synthetic
// wall-clock timestamp, seconds after epoch, so points land in InfluxDB in
// simulation order.
func eventTimestamp(e eventlog.Event) time.Time {
	return epoch.Add(time.Duration(e.SenderState.R.T * float64(time.Second)))
}
