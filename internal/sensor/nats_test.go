package sensor

import (
	"context"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"beehive_monitor/internal/models"
)

type recordingIngester struct {
	mu      sync.Mutex
	samples []models.Sample
}

func (r *recordingIngester) Ingest(_ context.Context, s models.Sample) (models.IngestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
	return models.IngestResult{}, nil
}

func TestNATSSource_Handle(t *testing.T) {
	ing := &recordingIngester{}
	src := NewNATSSource(nil, "hive.readings", ing, nil)

	src.handle(&nats.Msg{Subject: "hive.readings", Data: []byte(`{"temperatura":34.2,"humedad":58}`)})
	src.handle(&nats.Msg{Subject: "hive.readings", Data: []byte(`{"temperatura":34.2}`)})
	src.handle(&nats.Msg{Subject: "hive.readings", Data: []byte(`not json`)})
	src.handle(&nats.Msg{Subject: "hive.readings", Data: []byte(`{"temperatura":0,"humedad":0}`)})

	require.Len(t, ing.samples, 2)
	require.Equal(t, 34.2, ing.samples[0].Temperature)
	require.Equal(t, 58.0, ing.samples[0].Humidity)
	require.Equal(t, "nats", ing.samples[0].Source)
	require.Equal(t, 0.0, ing.samples[1].Temperature)
}

func TestNATSSource_StopWithoutStart(t *testing.T) {
	src := NewNATSSource(nil, "x", &recordingIngester{}, nil)
	require.NoError(t, src.Stop())
}
