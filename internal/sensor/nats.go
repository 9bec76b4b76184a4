package sensor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/metrics"
)

// NATSSource feeds readings published by remote devices on a subject.
// Payloads use the same JSON shape as the HTTP push endpoint.
type NATSSource struct {
	conn    *nats.Conn
	subject string
	ingest  Ingester
	now     func() time.Time
	log     *logger.Logger

	sub *nats.Subscription
}

// NewNATSSource wires a subscription; call Start to begin receiving.
func NewNATSSource(conn *nats.Conn, subject string, ing Ingester, log *logger.Logger) *NATSSource {
	return &NATSSource{
		conn:    conn,
		subject: subject,
		ingest:  ing,
		now:     time.Now,
		log:     logger.OrNop(log),
	}
}

// Start subscribes to the reading subject.
func (s *NATSSource) Start() error {
	sub, err := s.conn.Subscribe(s.subject, s.handle)
	if err != nil {
		return err
	}
	s.sub = sub
	s.log.Infow("nats_subscribed", "subject", s.subject)
	return nil
}

// Stop drains the subscription.
func (s *NATSSource) Stop() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Drain()
}

// handle decodes one message. Malformed payloads are counted and dropped.
func (s *NATSSource) handle(m *nats.Msg) {
	var r Reading
	if err := json.Unmarshal(m.Data, &r); err != nil {
		metrics.SamplesRejected.WithLabelValues(metrics.SourceNATS).Inc()
		s.log.Warnw("nats_bad_payload", "subject", m.Subject, "err", err)
		return
	}
	sample, err := r.Sample(s.now(), metrics.SourceNATS)
	if err != nil {
		metrics.SamplesRejected.WithLabelValues(metrics.SourceNATS).Inc()
		s.log.Warnw("nats_invalid_reading", "subject", m.Subject, "err", err)
		return
	}
	if _, err := s.ingest.Ingest(context.Background(), sample); err != nil {
		s.log.Errorw("nats_ingest_failed", "err", err)
	}
}

// Publisher publishes encoded payloads on a subject.
type Publisher interface {
	Publish(subject string, v any) error
}

// NATSPublisher JSON-encodes values onto a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) Publish(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, b)
}

// ConnectNATS dials the broker with reconnects enabled.
func ConnectNATS(url string, log *logger.Logger) (*nats.Conn, error) {
	log = logger.OrNop(log)
	return nats.Connect(url,
		nats.Name("beehive-monitor"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warnw("nats_disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infow("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
}
