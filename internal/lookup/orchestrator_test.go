package lookup_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/cep-weather-service/internal/domain"
	"github.com/couchcryptid/cep-weather-service/internal/lookup"
	"github.com/couchcryptid/cep-weather-service/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockResolver struct {
	mu      sync.Mutex
	record  domain.AddressRecord
	err     error
	codes   []string
	release chan struct{} // when set, ResolveAddress waits for it
}

func (m *mockResolver) ResolveAddress(ctx context.Context, code string) (domain.AddressRecord, error) {
	m.mu.Lock()
	m.codes = append(m.codes, code)
	release := m.release
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return domain.AddressRecord{}, ctx.Err()
		}
	}
	return m.record, m.err
}

func (m *mockResolver) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.codes...)
}

type mockWeather struct {
	mu    sync.Mutex
	temp  *float64
	err   error
	calls int
	lat   domain.Coordinate
	lng   domain.Coordinate
}

func (m *mockWeather) CurrentTemperature(_ context.Context, lat, lng domain.Coordinate) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lat, m.lng = lat, lng
	return m.temp, m.err
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.LookupEvent
	err    error
}

func (m *mockPublisher) PublishLookup(_ context.Context, event domain.LookupEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

func saoPaulo() domain.AddressRecord {
	return domain.AddressRecord{
		Code:     "01001000",
		Address:  "Praça da Sé",
		District: "Sé",
		City:     "São Paulo",
		State:    "SP",
		Lat:      domain.NewCoordinate(-23.5),
		Lng:      domain.NewCoordinate(-46.6),
	}
}

func freezeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	fc := clockwork.NewFakeClockAt(time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fc)
	t.Cleanup(func() { domain.SetClock(nil) })
	return fc
}

func newOrchestratorMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func newOrchestrator(r *mockResolver, w *mockWeather, p lookup.EventPublisher) (*lookup.Orchestrator, *observability.Metrics) {
	metrics := newOrchestratorMetrics()
	return lookup.New(r, w, p, discardLogger(), metrics), metrics
}

// --- tests ---

func TestSubmit_Success(t *testing.T) {
	fc := freezeClock(t)

	res := &mockResolver{record: saoPaulo()}
	wx := &mockWeather{temp: ptr(21.4)}
	o, metrics := newOrchestrator(res, wx, nil)

	state := o.Submit(context.Background(), "01001-000")

	want := domain.ViewState{
		Seq:         1,
		Code:        "01001000",
		Address:     &domain.AddressRecord{Code: "01001000", Address: "Praça da Sé", District: "Sé", City: "São Paulo", State: "SP", Lat: domain.NewCoordinate(-23.5), Lng: domain.NewCoordinate(-46.6)},
		Temperature: ptr(21.4),
		StartedAt:   fc.Now(),
		CompletedAt: fc.Now(),
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("view state mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"01001000"}, res.calls())
	assert.Equal(t, 1, wx.calls)
	assert.Equal(t, domain.NewCoordinate(-23.5), wx.lat)
	assert.Equal(t, domain.NewCoordinate(-46.6), wx.lng)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.LookupsTotal.WithLabelValues("success")), 0)
	assert.Zero(t, testutil.ToFloat64(metrics.LookupsInFlight))
}

func TestSubmit_AddressNotFound(t *testing.T) {
	freezeClock(t)

	res := &mockResolver{err: fmt.Errorf("status 404: %w", domain.ErrAddressNotFound)}
	wx := &mockWeather{temp: ptr(20)}
	o, metrics := newOrchestrator(res, wx, nil)

	state := o.Submit(context.Background(), "00000000")

	assert.Equal(t, "CEP não encontrado", state.Error)
	assert.Equal(t, domain.KindAddressNotFound, state.ErrorKind)
	assert.Nil(t, state.Address)
	assert.Nil(t, state.Temperature)
	assert.False(t, state.InFlight)
	assert.Zero(t, wx.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.LookupsTotal.WithLabelValues("address_not_found")), 0)
}

func TestSubmit_CoordinatesUnavailable(t *testing.T) {
	freezeClock(t)

	rec := saoPaulo()
	rec.Lat = domain.Coordinate{}
	rec.Lng = domain.Coordinate{}
	res := &mockResolver{record: rec}
	wx := &mockWeather{temp: ptr(20)}
	o, _ := newOrchestrator(res, wx, nil)

	state := o.Submit(context.Background(), "01001000")

	assert.Equal(t, domain.KindCoordinatesUnavailable, state.ErrorKind)
	assert.Equal(t, domain.MsgCoordinatesUnavailable, state.Error)
	assert.Nil(t, state.Address, "no partial display of the resolved address")
	assert.Zero(t, wx.calls, "weather must not be queried without coordinates")
	assert.False(t, state.InFlight)
}

func TestSubmit_OneCoordinateMissing(t *testing.T) {
	freezeClock(t)

	rec := saoPaulo()
	rec.Lng = domain.Coordinate{}
	wx := &mockWeather{}
	o, _ := newOrchestrator(&mockResolver{record: rec}, wx, nil)

	state := o.Submit(context.Background(), "01001000")

	assert.Equal(t, domain.KindCoordinatesUnavailable, state.ErrorKind)
	assert.Zero(t, wx.calls)
}

func TestSubmit_WeatherQueryFailed(t *testing.T) {
	freezeClock(t)

	res := &mockResolver{record: saoPaulo()}
	wx := &mockWeather{err: fmt.Errorf("status 500: %w", domain.ErrWeatherQueryFailed)}
	o, _ := newOrchestrator(res, wx, nil)

	state := o.Submit(context.Background(), "01001000")

	assert.Equal(t, domain.MsgWeatherQueryFailed, state.Error)
	assert.Nil(t, state.Address)
	assert.Nil(t, state.Temperature)
	assert.False(t, state.InFlight)
}

func TestSubmit_TemperatureAbsentIsSuccess(t *testing.T) {
	freezeClock(t)

	o, _ := newOrchestrator(&mockResolver{record: saoPaulo()}, &mockWeather{temp: nil}, nil)

	state := o.Submit(context.Background(), "01001000")

	assert.Empty(t, state.Error)
	assert.NotNil(t, state.Address)
	assert.Nil(t, state.Temperature)
	assert.True(t, state.Succeeded())
}

func TestSubmit_TransportFailureIsUnknown(t *testing.T) {
	freezeClock(t)

	res := &mockResolver{err: errors.New("dial tcp: connection refused")}
	o, _ := newOrchestrator(res, &mockWeather{}, nil)

	state := o.Submit(context.Background(), "01001000")

	assert.Equal(t, domain.KindUnknown, state.ErrorKind)
	assert.Equal(t, domain.MsgUnknown, state.Error)
	assert.False(t, state.InFlight)
}

func TestSubmit_CancelledContext(t *testing.T) {
	freezeClock(t)

	res := &mockResolver{record: saoPaulo(), release: make(chan struct{})}
	o, _ := newOrchestrator(res, &mockWeather{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := o.Submit(ctx, "01001000")

	assert.Equal(t, domain.KindUnknown, state.ErrorKind)
	assert.False(t, state.InFlight)
}

func TestSubmit_NormalizesBeforeLookup(t *testing.T) {
	freezeClock(t)

	res := &mockResolver{err: domain.ErrAddressNotFound}
	o, _ := newOrchestrator(res, &mockWeather{}, nil)

	state := o.Submit(context.Background(), "abc")

	assert.Empty(t, state.Code)
	assert.Equal(t, []string{""}, res.calls())
	assert.Equal(t, domain.KindAddressNotFound, state.ErrorKind)
}

func TestSubmit_NeverInFlightAfterCompletion(t *testing.T) {
	freezeClock(t)

	cases := map[string]*mockResolver{
		"success":   {record: saoPaulo()},
		"not found": {err: domain.ErrAddressNotFound},
		"no coords": {record: domain.AddressRecord{Code: "1"}},
		"transport": {err: errors.New("boom")},
	}
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			o, metrics := newOrchestrator(res, &mockWeather{temp: ptr(1)}, nil)
			state := o.Submit(context.Background(), "01001000")
			assert.False(t, state.InFlight)
			assert.Zero(t, testutil.ToFloat64(metrics.LookupsInFlight))
		})
	}
}

func TestSubmit_SequenceIncreases(t *testing.T) {
	freezeClock(t)

	o, _ := newOrchestrator(&mockResolver{record: saoPaulo()}, &mockWeather{}, nil)

	first := o.Submit(context.Background(), "01001000")
	second := o.Submit(context.Background(), "01001000")

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
}

func TestSubmit_RecordsDuration(t *testing.T) {
	fc := freezeClock(t)

	res := &mockResolver{record: saoPaulo(), release: make(chan struct{})}
	o, _ := newOrchestrator(res, &mockWeather{temp: ptr(20)}, nil)

	done := make(chan domain.ViewState)
	go func() { done <- o.Submit(context.Background(), "01001000") }()

	require.Eventually(t, func() bool { return len(res.calls()) == 1 }, time.Second, 5*time.Millisecond)
	fc.Advance(750 * time.Millisecond)
	close(res.release)

	state := <-done
	assert.Equal(t, 750*time.Millisecond, state.Duration())
}

func TestSubmit_PublishesEvent(t *testing.T) {
	freezeClock(t)

	pub := &mockPublisher{}
	o, metrics := newOrchestrator(&mockResolver{record: saoPaulo()}, &mockWeather{temp: ptr(21.4)}, pub)

	state := o.Submit(context.Background(), "01001000")

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, state.Seq, ev.Seq)
	assert.Equal(t, "01001000", ev.Code)
	assert.Equal(t, "success", ev.Outcome)
	assert.InDelta(t, 21.4, *ev.Temperature, 0.0001)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsPublished), 0)
}

func TestSubmit_PublishesFailures(t *testing.T) {
	freezeClock(t)

	pub := &mockPublisher{}
	o, _ := newOrchestrator(&mockResolver{err: domain.ErrAddressNotFound}, &mockWeather{}, pub)

	o.Submit(context.Background(), "00000000")

	require.Len(t, pub.events, 1)
	assert.Equal(t, "address_not_found", pub.events[0].Outcome)
	assert.Equal(t, domain.MsgAddressNotFound, pub.events[0].Error)
}

func TestSubmit_PublishErrorDoesNotChangeState(t *testing.T) {
	freezeClock(t)

	pub := &mockPublisher{err: errors.New("broker down")}
	o, metrics := newOrchestrator(&mockResolver{record: saoPaulo()}, &mockWeather{temp: ptr(21.4)}, pub)

	state := o.Submit(context.Background(), "01001000")

	assert.True(t, state.Succeeded())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventPublishErrors), 0)
}

func TestCheckReadiness(t *testing.T) {
	metrics := observability.NewMetricsForTesting()

	ready := lookup.New(&mockResolver{}, &mockWeather{}, nil, discardLogger(), metrics)
	require.NoError(t, ready.CheckReadiness(context.Background()))

	noAddress := lookup.New(nil, &mockWeather{}, nil, discardLogger(), metrics)
	require.Error(t, noAddress.CheckReadiness(context.Background()))

	noWeather := lookup.New(&mockResolver{}, nil, nil, discardLogger(), metrics)
	require.Error(t, noWeather.CheckReadiness(context.Background()))
}
