package sensor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scriptedPort returns one scripted chunk per Read. An empty chunk models a
// read timeout; running out of script returns io.EOF.
type scriptedPort struct {
	chunks []string
	closed bool
}

func (p *scriptedPort) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		return 0, io.EOF
	}
	c := p.chunks[0]
	p.chunks = p.chunks[1:]
	return copy(b, c), nil
}

func (p *scriptedPort) Close() error {
	p.closed = true
	return nil
}

type fakeOpener struct {
	ports []*scriptedPort
	err   error
	calls int
}

func (o *fakeOpener) open(name string, baud int, timeout time.Duration) (io.ReadCloser, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	if len(o.ports) == 0 {
		return nil, errors.New("no device")
	}
	p := o.ports[0]
	o.ports = o.ports[1:]
	return p, nil
}

func newTestSource(o *fakeOpener) *SerialSource {
	src := NewSerialSource(SerialConfig{Port: "/dev/test", Baud: 9600}, o.open, nil)
	src.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	return src
}

func TestSerialSource_ConnectsLazilyThenReadsLines(t *testing.T) {
	port := &scriptedPort{chunks: []string{"34.5,6", "1.0\r\n33,70\n", ""}}
	o := &fakeOpener{ports: []*scriptedPort{port}}
	src := newTestSource(o)
	ctx := context.Background()

	_, ok := src.Next(ctx)
	require.False(t, ok, "first call only connects")
	require.Equal(t, 1, o.calls)

	s, ok := src.Next(ctx)
	require.True(t, ok)
	require.Equal(t, 34.5, s.Temperature)
	require.Equal(t, 61.0, s.Humidity)
	require.Equal(t, "serial", s.Source)

	s, ok = src.Next(ctx)
	require.True(t, ok, "second buffered line is returned without a read")
	require.Equal(t, 33.0, s.Temperature)

	_, ok = src.Next(ctx)
	require.False(t, ok, "timeout yields no sample")
	require.False(t, port.closed)
}

func TestSerialSource_MalformedLineKeepsConnection(t *testing.T) {
	port := &scriptedPort{chunks: []string{"abc,def\n", "35\n", "30,50\n"}}
	src := newTestSource(&fakeOpener{ports: []*scriptedPort{port}})
	ctx := context.Background()
	src.Next(ctx)

	_, ok := src.Next(ctx)
	require.False(t, ok)
	_, ok = src.Next(ctx)
	require.False(t, ok)
	s, ok := src.Next(ctx)
	require.True(t, ok)
	require.Equal(t, 30.0, s.Temperature)
	require.False(t, port.closed)
}

func TestSerialSource_ReconnectsAfterIOError(t *testing.T) {
	first := &scriptedPort{}
	second := &scriptedPort{chunks: []string{"31,52\n"}}
	o := &fakeOpener{ports: []*scriptedPort{first, second}}
	src := newTestSource(o)
	ctx := context.Background()

	src.Next(ctx) // connect first
	_, ok := src.Next(ctx)
	require.False(t, ok)
	require.True(t, first.closed, "EOF closes the port")

	src.Next(ctx) // reconnect
	require.Equal(t, 2, o.calls)
	s, ok := src.Next(ctx)
	require.True(t, ok)
	require.Equal(t, 52.0, s.Humidity)
}

func TestSerialSource_OpenFailure(t *testing.T) {
	o := &fakeOpener{err: errors.New("permission denied")}
	src := newTestSource(o)
	for i := 0; i < 3; i++ {
		_, ok := src.Next(context.Background())
		require.False(t, ok)
	}
	require.Equal(t, 3, o.calls)
}

func TestSerialSource_OverlongGarbageIsDiscarded(t *testing.T) {
	junk := make([]byte, readChunk)
	for i := range junk {
		junk[i] = 'x'
	}
	chunks := []string{}
	for i := 0; i < 5; i++ {
		chunks = append(chunks, string(junk))
	}
	chunks = append(chunks, "32,60\n")
	port := &scriptedPort{chunks: chunks}
	src := newTestSource(&fakeOpener{ports: []*scriptedPort{port}})
	ctx := context.Background()
	src.Next(ctx)

	_, ok := src.Next(ctx)
	require.False(t, ok)
	s, ok := src.Next(ctx)
	require.True(t, ok)
	require.Equal(t, 32.0, s.Temperature)
}
