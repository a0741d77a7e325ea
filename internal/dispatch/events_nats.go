package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultSubjectPrefix prefixes event subjects, e.g. "creditrisk.backend.done".
const DefaultSubjectPrefix = "creditrisk"

const drainTimeout = 5 * time.Second

// NATSPublisher publishes events as JSON on "<prefix>.<event name>".
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	log    zerolog.Logger
	closed chan struct{}
}

// NewNATSPublisher connects to url. Publishing is asynchronous; failures are
// logged and never block a dispatch.
func NewNATSPublisher(url, prefix string, log zerolog.Logger) (*NATSPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("nats: empty url")
	}
	if prefix = strings.Trim(prefix, "."); prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	closed := make(chan struct{})
	nc, err := nats.Connect(url,
		nats.Name("creditrisk"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DrainTimeout(drainTimeout),
		nats.ClosedHandler(func(*nats.Conn) { close(closed) }),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect %s: %w", url, err)
	}
	return &NATSPublisher{
		nc:     nc,
		prefix: prefix,
		log:    log.With().Str("component", "nats").Logger(),
		closed: closed,
	}, nil
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(e Event) string { return p.prefix + "." + e.Name }

func (p *NATSPublisher) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		p.log.Warn().Err(err).Str("event", e.Name).Msg("marshal event")
		return
	}
	if err := p.nc.Publish(p.Subject(e), data); err != nil {
		p.log.Warn().Err(err).Str("event", e.Name).Msg("publish event")
	}
}

// Close flushes pending events and waits for the connection to close.
func (p *NATSPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		return fmt.Errorf("nats: drain: %w", err)
	}
	select {
	case <-p.closed:
		return nil
	case <-time.After(drainTimeout + time.Second):
		return fmt.Errorf("nats: drain did not finish within %s", drainTimeout)
	}
}
