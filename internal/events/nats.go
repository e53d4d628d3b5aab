package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// DefaultSubjectPrefix is prepended to every event type.
const DefaultSubjectPrefix = "numguess"

// NATSPublisher publishes events as JSON on <prefix>.<type>.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to url. The connection reconnects forever.
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	opts := []nats.Option{
		nats.Name("numguess-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Info().Str("url", nc.ConnectedUrl()).Str("prefix", prefix).Msg("NATS connected")
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

// Subject returns the subject an event of type t is published on.
func (p *NATSPublisher) Subject(t Type) string { return subject(p.prefix, t) }

func subject(prefix string, t Type) string { return prefix + "." + string(t) }

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(p.Subject(e.Type), payload); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
