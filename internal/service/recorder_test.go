package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"beehive_monitor/internal/models"
)

type appenderStub struct {
	mu   sync.Mutex
	rows []models.WindowAverage
	err  error
}

func (a *appenderStub) Append(_ context.Context, avg models.WindowAverage) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.rows = append(a.rows, avg)
	return nil
}

func (a *appenderStub) all() []models.WindowAverage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.WindowAverage(nil), a.rows...)
}

type weatherStub struct {
	mu    sync.Mutex
	calls int
	w     models.ExternalWeather
}

func (w *weatherStub) Current(context.Context) models.ExternalWeather {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	return w.w
}

type publisherStub struct {
	mu       sync.Mutex
	subjects []string
}

func (p *publisherStub) Publish(subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func testWindow(i int) models.WindowAverage {
	ts := time.Date(2025, 6, 1, 10, i, 0, 0, time.UTC)
	return models.WindowAverage{
		Timestamp: ts, Date: ts.Format("2006-01-02"), Time: ts.Format("15:04:05"),
		AvgTemperature: 34, AvgHumidity: 60, Samples: 10, Trigger: models.TriggerCount,
	}
}

func runRecorder(t *testing.T, r *Recorder, windows ...models.WindowAverage) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	for _, w := range windows {
		r.Submit(w)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("recorder did not stop")
	}
}

func TestRecorder_EnrichesOncePerWindow(t *testing.T) {
	st := &appenderStub{}
	ws := &weatherStub{w: models.ExternalWeather{Available: true, Temperature: 21, Humidity: 40, Condition: "clear sky"}}
	ev := &eventStub{}
	pub := &publisherStub{}
	r := NewRecorder(st, ws, ev, pub, "hive.windows", nil)

	runRecorder(t, r, testWindow(0), testWindow(10))

	rows := st.all()
	if len(rows) != 2 {
		t.Fatalf("persisted %d rows, want 2", len(rows))
	}
	if ws.calls != 2 {
		t.Errorf("weather looked up %d times, want once per window", ws.calls)
	}
	if rows[0].ExternalTemperature == nil || *rows[0].ExternalTemperature != 21 || rows[0].ExternalCondition != "clear sky" {
		t.Errorf("row not enriched: %+v", rows[0])
	}
	if got := ev.types(); len(got) != 2 || got[0] != models.EventFlush {
		t.Errorf("events = %v", got)
	}
	if len(pub.subjects) != 2 || pub.subjects[0] != "hive.windows" {
		t.Errorf("published = %v", pub.subjects)
	}
}

func TestRecorder_WeatherUnavailableLeavesColumnsEmpty(t *testing.T) {
	st := &appenderStub{}
	r := NewRecorder(st, &weatherStub{}, nil, nil, "", nil)

	runRecorder(t, r, testWindow(0))

	rows := st.all()
	if len(rows) != 1 {
		t.Fatalf("persisted %d rows", len(rows))
	}
	if rows[0].ExternalTemperature != nil || rows[0].ExternalHumidity != nil || rows[0].ExternalCondition != "" {
		t.Errorf("unexpected external values: %+v", rows[0])
	}
}

func TestRecorder_AppendFailureKeepsGoing(t *testing.T) {
	st := &appenderStub{err: errors.New("disk full")}
	ev := &eventStub{}
	r := NewRecorder(st, nil, ev, nil, "", nil)

	runRecorder(t, r, testWindow(0), testWindow(1))

	if got := ev.types(); len(got) != 2 {
		t.Fatalf("expected both windows processed, events = %v", got)
	}
}

func TestRecorder_SubmitAfterStopDoesNotBlock(t *testing.T) {
	st := &appenderStub{}
	r := NewRecorder(st, nil, nil, nil, "", nil)
	runRecorder(t, r)

	done := make(chan struct{})
	go func() {
		for i := 0; i < recorderQueue+5; i++ {
			r.Submit(testWindow(i % 60))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked after the recorder stopped")
	}
}
