// Package lookup runs postal-code submissions: address resolution followed by
// a weather query at the resolved coordinates.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/cep-weather-service/internal/domain"
	"github.com/couchcryptid/cep-weather-service/internal/observability"
)

// publishTimeout bounds event publishing after the caller's request is done.
const publishTimeout = 5 * time.Second

// EventPublisher receives one event per completed lookup.
type EventPublisher interface {
	PublishLookup(ctx context.Context, event domain.LookupEvent) error
}

// Orchestrator turns raw postal codes into view states. It is safe for
// concurrent use; every submission gets its own sequence number.
type Orchestrator struct {
	addresses domain.AddressResolver
	weather   domain.WeatherProvider
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	seq       atomic.Uint64
}

// New creates an Orchestrator. Pass a nil publisher to disable lookup events.
func New(addresses domain.AddressResolver, weather domain.WeatherProvider, publisher EventPublisher, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		addresses: addresses,
		weather:   weather,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once both upstream lookups are wired.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if o.addresses == nil {
		return errors.New("address resolver not configured")
	}
	if o.weather == nil {
		return errors.New("weather provider not configured")
	}
	return nil
}

// Submit normalizes raw, resolves its address, then reads the temperature at
// the address coordinates. Failures are reported in the returned state, never
// as an error, and the state is always terminal (InFlight false).
func (o *Orchestrator) Submit(ctx context.Context, raw string) domain.ViewState {
	return o.run(ctx, domain.Begin(o.nextSeq()), raw)
}

func (o *Orchestrator) nextSeq() uint64 {
	return o.seq.Add(1)
}

// run drives one submission from its reset in-flight state to a terminal state.
func (o *Orchestrator) run(ctx context.Context, state domain.ViewState, raw string) domain.ViewState {
	o.metrics.LookupsInFlight.Inc()
	defer o.metrics.LookupsInFlight.Dec()

	state.Code = domain.Normalize(raw)

	addr, temp, err := o.lookup(ctx, state.Code)
	if err != nil {
		state.Fail(err)
		o.logger.Warn("lookup failed",
			"seq", state.Seq,
			"code", state.Code,
			"kind", state.ErrorKind,
			"error", err,
		)
	} else {
		state.Address = &addr
		state.Temperature = temp
	}

	state.Finish()
	o.record(ctx, state)
	return state
}

func (o *Orchestrator) lookup(ctx context.Context, code string) (domain.AddressRecord, *float64, error) {
	addr, err := o.addresses.ResolveAddress(ctx, code)
	if err != nil {
		return domain.AddressRecord{}, nil, fmt.Errorf("resolve address %q: %w", code, err)
	}
	if !addr.HasCoordinates() {
		return domain.AddressRecord{}, nil, fmt.Errorf("address %q: %w", code, domain.ErrCoordinatesUnavailable)
	}

	temp, err := o.weather.CurrentTemperature(ctx, addr.Lat, addr.Lng)
	if err != nil {
		return domain.AddressRecord{}, nil, fmt.Errorf("temperature at %s,%s: %w", addr.Lat, addr.Lng, err)
	}
	return addr, temp, nil
}

// record emits metrics, the completion log line and the lookup event.
func (o *Orchestrator) record(ctx context.Context, state domain.ViewState) {
	o.metrics.LookupsTotal.WithLabelValues(state.Outcome()).Inc()
	o.metrics.LookupDuration.Observe(state.Duration().Seconds())

	o.logger.Info("lookup completed",
		"seq", state.Seq,
		"code", state.Code,
		"outcome", state.Outcome(),
		"has_temperature", state.Temperature != nil,
		"duration", state.Duration(),
	)

	if o.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := o.publisher.PublishLookup(pubCtx, domain.NewLookupEvent(state)); err != nil {
		o.metrics.EventPublishErrors.Inc()
		o.logger.Warn("publish lookup event failed", "seq", state.Seq, "code", state.Code, "error", err)
		return
	}
	o.metrics.EventsPublished.Inc()
}
