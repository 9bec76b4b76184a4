// Package notifier delivers alert and heartbeat messages.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gopkg.in/mail.v2"

	"beehive_monitor/internal/config"
	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/metrics"
)

// ErrNoRecipients is returned when a mail notifier has nobody to send to.
var ErrNoRecipients = errors.New("no recipients configured")

// Notifier sends one message.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Sender is the part of a mail dialer MailNotifier needs.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// MailNotifier sends plain-text email over SMTP.
type MailNotifier struct {
	from   string
	to     []string
	dialer Sender
}

// NewMailNotifier builds a notifier from the smtp config section.
func NewMailNotifier(cfg config.SMTPConfig) *MailNotifier {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	return &MailNotifier{from: cfg.From, to: cfg.To, dialer: d}
}

func (n *MailNotifier) Send(ctx context.Context, subject, body string) error {
	if len(n.to) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to...)
	m.SetHeader("Subject", subject)
	m.SetDateHeader("Date", time.Now())
	m.SetBody("text/plain", body)
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogNotifier only writes messages to the log. It is used when SMTP is
// not configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: logger.OrNop(log)}
}

func (n *LogNotifier) Send(_ context.Context, subject, body string) error {
	n.log.Infow("notification", "subject", subject, "body", body)
	return nil
}

// New picks the mail backend when a host is configured, the log backend
// otherwise.
func New(cfg config.SMTPConfig, log *logger.Logger) Notifier {
	if cfg.Host == "" {
		return NewLogNotifier(log)
	}
	return NewMailNotifier(cfg)
}

// Dispatcher runs sends in the background so callers never wait on SMTP.
type Dispatcher struct {
	backend Notifier
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

// NewDispatcher wraps backend. timeout bounds a single send; zero means 30s.
func NewDispatcher(backend Notifier, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{backend: backend, timeout: timeout, log: logger.OrNop(log)}
}

// Notify schedules a send and returns immediately. Failures are logged.
func (d *Dispatcher) Notify(subject, body string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.backend.Send(ctx, subject, body); err != nil {
			metrics.Notifications.WithLabelValues("failed").Inc()
			d.log.Errorw("notify_failed", "subject", subject, "err", err)
			return
		}
		metrics.Notifications.WithLabelValues("sent").Inc()
		d.log.Debugw("notify_sent", "subject", subject)
	}()
}

// Wait blocks until every scheduled send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
