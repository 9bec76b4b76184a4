package sensor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/metrics"
	"beehive_monitor/internal/models"
)

const (
	readChunk = 64
	// maxLineBytes bounds the pending buffer when the device sends garbage
	// without newlines.
	maxLineBytes = 256
)

// Opener opens the device. OpenSerial is the production implementation.
type Opener func(name string, baud int, readTimeout time.Duration) (io.ReadCloser, error)

// OpenSerial opens a serial port in 8N1 mode with a read timeout, so a
// silent device makes Read return (0, nil) instead of blocking forever.
func OpenSerial(name string, baud int, readTimeout time.Duration) (io.ReadCloser, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, err
	}
	return port, nil
}

// SerialConfig configures SerialSource.
type SerialConfig struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
	// Settle is waited after opening; boards that reset on connect need it.
	Settle time.Duration
}

// SerialSource reads "<temp>,<hum>" lines from a serial device.
// It connects lazily and reconnects after I/O errors.
type SerialSource struct {
	cfg  SerialConfig
	open Opener
	now  func() time.Time
	log  *logger.Logger

	mu      sync.Mutex
	port    io.ReadCloser
	pending []byte
}

// NewSerialSource builds a source; open may be nil to use OpenSerial.
func NewSerialSource(cfg SerialConfig, open Opener, log *logger.Logger) *SerialSource {
	if open == nil {
		open = OpenSerial
	}
	return &SerialSource{cfg: cfg, open: open, now: time.Now, log: logger.OrNop(log)}
}

var _ Source = (*SerialSource)(nil)

var errNoLine = errors.New("no complete line")

// Next reads one line. When the port is closed it tries to connect and
// reports no sample for this call. Empty, partial and malformed lines
// yield ok=false without side effects.
func (s *SerialSource) Next(ctx context.Context) (models.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		s.connect(ctx)
		return models.Sample{}, false
	}

	line, err := s.readLine()
	switch {
	case errors.Is(err, errNoLine):
		return models.Sample{}, false
	case err != nil:
		s.log.Warnw("serial_read_failed", "port", s.cfg.Port, "err", err)
		s.closeLocked()
		return models.Sample{}, false
	}

	temp, hum, err := ParseLine(line)
	if err != nil {
		metrics.SamplesRejected.WithLabelValues(metrics.SourceSerial).Inc()
		s.log.Warnw("serial_malformed_line", "line", line, "err", err)
		return models.Sample{}, false
	}
	return models.Sample{
		Timestamp:   s.now(),
		Temperature: temp,
		Humidity:    hum,
		Source:      metrics.SourceSerial,
	}, true
}

// Close releases the port.
func (s *SerialSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *SerialSource) connect(ctx context.Context) {
	port, err := s.open(s.cfg.Port, s.cfg.Baud, s.cfg.ReadTimeout)
	if err != nil {
		s.log.Warnw("serial_connect_failed", "port", s.cfg.Port, "err", err)
		return
	}
	if s.cfg.Settle > 0 {
		t := time.NewTimer(s.cfg.Settle)
		select {
		case <-ctx.Done():
			t.Stop()
			_ = port.Close()
			return
		case <-t.C:
		}
	}
	s.port = port
	s.pending = s.pending[:0]
	s.log.Infow("serial_connected", "port", s.cfg.Port, "baud", s.cfg.Baud)
}

func (s *SerialSource) closeLocked() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.pending = nil
	return err
}

// readLine returns the next newline-terminated line. A read that times out
// with no data yields errNoLine; the partial line stays buffered for the
// next call.
func (s *SerialSource) readLine() (string, error) {
	buf := make([]byte, readChunk)
	for {
		if i := bytes.IndexByte(s.pending, '\n'); i >= 0 {
			line := string(bytes.TrimRight(s.pending[:i], "\r"))
			s.pending = append(s.pending[:0], s.pending[i+1:]...)
			return line, nil
		}
		if len(s.pending) > maxLineBytes {
			s.pending = s.pending[:0]
			return "", nil
		}
		n, err := s.port.Read(buf)
		s.pending = append(s.pending, buf[:n]...)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", errNoLine
		}
	}
}
