package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"beehive_monitor/internal/models"
	"beehive_monitor/internal/threshold"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sinkStub struct {
	mu  sync.Mutex
	got []models.WindowAverage
}

func (s *sinkStub) Submit(avg models.WindowAverage) {
	s.mu.Lock()
	s.got = append(s.got, avg)
	s.mu.Unlock()
}

func (s *sinkStub) windows() []models.WindowAverage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WindowAverage(nil), s.got...)
}

type alerterStub struct {
	mu    sync.Mutex
	sends []string
}

func (a *alerterStub) Notify(subject, body string) {
	a.mu.Lock()
	a.sends = append(a.sends, subject+": "+body)
	a.mu.Unlock()
}

func (a *alerterStub) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sends)
}

type eventStub struct {
	mu     sync.Mutex
	events []models.HiveEvent
}

func (e *eventStub) Record(_ context.Context, ev models.HiveEvent) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
}

func (e *eventStub) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

type ingestFixture struct {
	svc    *IngestService
	clock  *fakeClock
	sink   *sinkStub
	alerts *alerterStub
	events *eventStub
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	f := &ingestFixture{clock: newFakeClock(), sink: &sinkStub{}, alerts: &alerterStub{}, events: &eventStub{}}
	f.svc = NewIngestService(threshold.Defaults, WindowConfig{MaxSamples: 10, MaxAge: 10 * time.Minute}, f.sink, f.alerts, f.events, nil)
	f.svc.now = f.clock.Now
	f.svc.lastFlush.Store(f.clock.Now().UnixNano())
	return f
}

func (f *ingestFixture) ingest(t *testing.T, temp, hum float64) models.IngestResult {
	t.Helper()
	res, err := f.svc.Ingest(context.Background(), models.Sample{Timestamp: f.clock.Now(), Temperature: temp, Humidity: hum, Source: "push"})
	if err != nil {
		t.Fatalf("Ingest(%v, %v): %v", temp, hum, err)
	}
	return res
}

func TestIngest_FlushesEveryTenthSample(t *testing.T) {
	f := newIngestFixture(t)

	for i := 0; i < 9; i++ {
		if res := f.ingest(t, 30+float64(i), 50+float64(i)); res.Flushed {
			t.Fatalf("sample %d flushed early", i+1)
		}
	}
	if got := f.svc.Snapshot().WindowSize; got != 9 {
		t.Fatalf("window size = %d, want 9", got)
	}

	res := f.ingest(t, 39, 59)
	if !res.Flushed || res.Average == nil {
		t.Fatal("tenth sample should flush")
	}
	// temps 30..39, hums 50..59
	if res.Average.AvgTemperature != 34.5 || res.Average.AvgHumidity != 54.5 {
		t.Errorf("means = %v/%v, want 34.5/54.5", res.Average.AvgTemperature, res.Average.AvgHumidity)
	}
	if res.Average.Samples != 10 || res.Average.Trigger != models.TriggerCount {
		t.Errorf("samples=%d trigger=%q", res.Average.Samples, res.Average.Trigger)
	}
	if res.Average.TempLevel != models.LevelOptimal || res.Average.HumLevel != models.LevelOptimal {
		t.Errorf("levels = %s/%s", res.Average.TempLevel, res.Average.HumLevel)
	}
	if got := f.svc.Snapshot().WindowSize; got != 0 {
		t.Errorf("window not cleared, size %d", got)
	}
	if len(f.sink.windows()) != 1 {
		t.Errorf("sink got %d windows, want 1", len(f.sink.windows()))
	}

	for i := 0; i < 10; i++ {
		f.ingest(t, 34, 60)
	}
	if len(f.sink.windows()) != 2 {
		t.Errorf("expected second flush after 20 samples, got %d", len(f.sink.windows()))
	}
}

func TestIngest_FlushesOnAge(t *testing.T) {
	for n := 1; n <= 9; n++ {
		f := newIngestFixture(t)
		for i := 0; i < n-1; i++ {
			f.ingest(t, 33, 60)
			f.clock.Advance(time.Minute)
		}
		f.clock.Advance(10*time.Minute - time.Duration(n-1)*time.Minute)

		res := f.ingest(t, 35, 62)
		if !res.Flushed {
			t.Fatalf("n=%d: window older than max age did not flush", n)
		}
		if res.Average.Samples != n || res.Average.Trigger != models.TriggerAge {
			t.Fatalf("n=%d: samples=%d trigger=%s", n, res.Average.Samples, res.Average.Trigger)
		}
		if !f.svc.LastFlush().Equal(f.clock.Now()) {
			t.Fatalf("n=%d: last flush = %v, want %v", n, f.svc.LastFlush(), f.clock.Now())
		}
	}
}

func TestIngest_AgeMeasuredFromLastFlush(t *testing.T) {
	f := newIngestFixture(t)
	f.clock.Advance(9 * time.Minute)
	if f.ingest(t, 34, 60).Flushed {
		t.Fatal("flushed before max age")
	}
	f.clock.Advance(time.Minute)
	res := f.ingest(t, 36, 60)
	if !res.Flushed || res.Average.AvgTemperature != 35 {
		t.Fatalf("unexpected result %+v", res)
	}

	f.clock.Advance(5 * time.Minute)
	if f.ingest(t, 34, 60).Flushed {
		t.Fatal("clock should have restarted at the previous flush")
	}
}

func TestFlushIfExpired_ClosesIdleWindow(t *testing.T) {
	f := newIngestFixture(t)
	for i := 0; i < 5; i++ {
		f.ingest(t, 34, 60)
		f.clock.Advance(10 * time.Second)
	}

	f.clock.Advance(9 * time.Minute)
	if _, ok := f.svc.FlushIfExpired(); ok {
		t.Fatal("flushed before max age")
	}

	f.clock.Advance(10 * time.Second)
	avg, ok := f.svc.FlushIfExpired()
	if !ok {
		t.Fatal("idle window older than max age was not flushed")
	}
	if avg.Samples != 5 || avg.Trigger != models.TriggerAge || avg.AvgTemperature != 34 {
		t.Fatalf("unexpected window %+v", avg)
	}
	if ws := f.sink.windows(); len(ws) != 1 || ws[0].Samples != 5 {
		t.Fatalf("sink got %+v", ws)
	}
	if f.svc.Snapshot().WindowSize != 0 || !f.svc.LastFlush().Equal(f.clock.Now()) {
		t.Fatalf("window not reset: %+v", f.svc.Snapshot())
	}
}

func TestFlushIfExpired_EmptyWindowKeepsLastFlush(t *testing.T) {
	f := newIngestFixture(t)
	start := f.svc.LastFlush()
	f.clock.Advance(30 * time.Minute)

	if _, ok := f.svc.FlushIfExpired(); ok {
		t.Fatal("empty window must not flush")
	}
	if !f.svc.LastFlush().Equal(start) || len(f.sink.windows()) != 0 {
		t.Fatal("empty window changed state")
	}
}

func TestWatchAge_FlushesWithoutNewSamples(t *testing.T) {
	f := newIngestFixture(t)
	f.svc.cfg.CheckEvery = 5 * time.Millisecond
	for i := 0; i < 5; i++ {
		f.ingest(t, 35, 62)
	}
	f.clock.Advance(10 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.WatchAge(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(f.sink.windows()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	ws := f.sink.windows()
	if len(ws) != 1 || ws[0].Samples != 5 || ws[0].Trigger != models.TriggerAge {
		t.Fatalf("want one age window of 5 samples, got %+v", ws)
	}
}

func TestIngest_InvalidSampleDoesNotMutate(t *testing.T) {
	f := newIngestFixture(t)
	f.ingest(t, 34, 60)
	before := f.svc.Snapshot()

	for _, s := range []models.Sample{
		{Temperature: math.NaN(), Humidity: 50},
		{Temperature: 30, Humidity: math.Inf(1)},
	} {
		if _, err := f.svc.Ingest(context.Background(), s); !errors.Is(err, ErrInvalidSample) {
			t.Fatalf("want ErrInvalidSample, got %v", err)
		}
	}
	after := f.svc.Snapshot()
	if after.WindowSize != before.WindowSize || after.Temperature != before.Temperature || after.Alert != before.Alert {
		t.Fatalf("state changed: before %+v after %+v", before, after)
	}
}

func TestIngest_ImmediateAlert(t *testing.T) {
	f := newIngestFixture(t)

	res := f.ingest(t, 40, 60)
	if !res.Alert.TempOutOfRange || res.Alert.HumOutOfRange || res.Alert.Message == "" {
		t.Fatalf("unexpected alert %+v", res.Alert)
	}
	if f.alerts.count() != 1 {
		t.Fatalf("expected one notification, got %d", f.alerts.count())
	}

	// last write wins
	res = f.ingest(t, 34, 60)
	if res.Alert.Active() || f.svc.Alert().Active() {
		t.Fatalf("alert should clear, got %+v", f.svc.Alert())
	}
	if f.alerts.count() != 1 {
		t.Fatalf("in-range sample must not notify")
	}

	f.ingest(t, 29, 90)
	if a := f.svc.Alert(); !a.TempOutOfRange || !a.HumOutOfRange {
		t.Fatalf("both metrics should be out of range: %+v", a)
	}
	if got := f.events.types(); len(got) != 2 || got[0] != models.EventAlert {
		t.Fatalf("alert events = %v", got)
	}
}

func TestIngest_Drain(t *testing.T) {
	f := newIngestFixture(t)
	if _, ok := f.svc.Drain(context.Background()); ok {
		t.Fatal("empty window should not drain")
	}
	f.ingest(t, 33, 61)
	f.ingest(t, 35, 63)

	avg, ok := f.svc.Drain(context.Background())
	if !ok || avg.Samples != 2 || avg.Trigger != models.TriggerShutdown || avg.AvgTemperature != 34 {
		t.Fatalf("unexpected drain %+v ok=%v", avg, ok)
	}
	if len(f.sink.windows()) != 1 {
		t.Fatal("drained window not submitted")
	}
}

func TestIngest_Snapshot(t *testing.T) {
	f := newIngestFixture(t)
	snap := f.svc.Snapshot()
	if snap.SampledAt != nil || snap.AvgTemperature != nil {
		t.Fatalf("fresh snapshot should be empty: %+v", snap)
	}
	for i := 0; i < 10; i++ {
		f.ingest(t, 34, 60)
	}
	f.ingest(t, 36, 70)
	snap = f.svc.Snapshot()
	if snap.Temperature != 36 || snap.Humidity != 70 || snap.WindowSize != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.AvgTemperature == nil || *snap.AvgTemperature != 34 {
		t.Fatalf("avg temperature = %v", snap.AvgTemperature)
	}
}

func TestIngest_ConcurrentProducers(t *testing.T) {
	f := newIngestFixture(t)
	const producers, each = 8, 25

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				_, _ = f.svc.Ingest(context.Background(), models.Sample{Temperature: 34, Humidity: 60})
			}
		}()
	}
	wg.Wait()

	total := f.svc.Snapshot().WindowSize
	for _, w := range f.sink.windows() {
		if w.Samples != 10 {
			t.Fatalf("window with %d samples", w.Samples)
		}
		total += w.Samples
	}
	if total != producers*each {
		t.Fatalf("accounted for %d samples, want %d", total, producers*each)
	}
}

// A day in the apiary: a hot spell trips the alert, windows keep closing
// on count, and a quiet period closes a short window on age.
func TestIngest_Scenario(t *testing.T) {
	f := newIngestFixture(t)

	for i := 0; i < 10; i++ {
		f.ingest(t, 34, 60)
		f.clock.Advance(5 * time.Second)
	}
	for i := 0; i < 10; i++ {
		f.ingest(t, 39.5, 60)
		f.clock.Advance(5 * time.Second)
	}
	f.ingest(t, 35, 60)
	f.clock.Advance(11 * time.Minute)
	f.ingest(t, 35, 60)

	ws := f.sink.windows()
	if len(ws) != 3 {
		t.Fatalf("want 3 windows, got %d", len(ws))
	}
	if ws[0].TempLevel != models.LevelOptimal || ws[1].TempLevel != models.LevelCritical {
		t.Errorf("levels = %s, %s", ws[0].TempLevel, ws[1].TempLevel)
	}
	if ws[2].Samples != 2 || ws[2].Trigger != models.TriggerAge {
		t.Errorf("third window = %+v", ws[2])
	}
	if f.alerts.count() != 10 {
		t.Errorf("notifications = %d, want one per hot sample", f.alerts.count())
	}
}

// Ten rising readings: temperature 30..39, humidity climbing to 90.
func TestIngest_RisingTemperatureAndHumidity(t *testing.T) {
	f := newIngestFixture(t)
	hums := []float64{50, 55, 60, 65, 70, 75, 80, 85, 88, 90}

	var sumT, sumH float64
	var last models.IngestResult
	for i, h := range hums {
		temp := 30 + float64(i)
		sumT += temp
		sumH += h
		last = f.ingest(t, temp, h)

		wantHum := h > 85
		if last.Alert.HumOutOfRange != wantHum {
			t.Fatalf("sample %d (hum %.0f): HumOutOfRange=%v, want %v", i, h, last.Alert.HumOutOfRange, wantHum)
		}
		if last.Alert.TempOutOfRange {
			t.Fatalf("sample %d: temperature %.0f is inside the immediate band", i, temp)
		}
		if i < len(hums)-1 && last.Flushed {
			t.Fatalf("flushed early at sample %d", i)
		}
		f.clock.Advance(5 * time.Second)
	}

	if !last.Flushed || last.Average.Trigger != models.TriggerCount {
		t.Fatalf("tenth sample should close the window on count: %+v", last)
	}
	avg := last.Average
	wantT, wantH := sumT/10, sumH/10
	if math.Abs(avg.AvgTemperature-wantT) > 1e-9 || math.Abs(avg.AvgHumidity-wantH) > 1e-9 {
		t.Fatalf("means = %.3f/%.3f, want %.3f/%.3f", avg.AvgTemperature, avg.AvgHumidity, wantT, wantH)
	}
	if avg.AvgTemperature != 34.5 {
		t.Fatalf("temperature mean = %v, want 34.5", avg.AvgTemperature)
	}
	// 71.8 % sits inside the optimal band even though single readings peaked at 90 %.
	if avg.TempLevel != models.LevelOptimal || avg.HumLevel != models.LevelOptimal {
		t.Fatalf("levels = %s/%s", avg.TempLevel, avg.HumLevel)
	}
	if len(f.sink.windows()) != 1 {
		t.Fatalf("want exactly one window, got %d", len(f.sink.windows()))
	}
	if f.alerts.count() != 2 {
		t.Fatalf("notifications = %d, want one per sample above 85 %%", f.alerts.count())
	}
	if got := f.svc.Alert(); !got.HumOutOfRange {
		t.Fatalf("last alert state should still flag humidity: %+v", got)
	}
}
