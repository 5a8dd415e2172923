package apps

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// publisher, *nats.Conn'un kullandığımız kısmı.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSBus, event'leri "<prefix>.<kind>" subject'ine JSON olarak yayınlar.
type NATSBus struct {
	conn   publisher
	nc     *nats.Conn
	prefix string
}

// ConnectNATSBus, url'deki NATS sunucusuna bağlanır.
func ConnectNATSBus(url, prefix string) (*NATSBus, error) {
	nc, err := nats.Connect(url,
		nats.Name("tepki"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Str("component", "apps").Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("component", "apps").Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	bus := newNATSBus(nc, prefix)
	bus.nc = nc
	return bus, nil
}

func newNATSBus(conn publisher, prefix string) *NATSBus {
	return &NATSBus{conn: conn, prefix: prefix}
}

// Subject, kind için yayın subject'i.
func (b *NATSBus) Subject(kind string) string {
	if b.prefix == "" {
		return kind
	}
	return b.prefix + "." + kind
}

// Publish, NATS publish context desteklemez; iptal edilmiş context'te yayın yapılmaz.
func (b *NATSBus) Publish(ctx context.Context, kind string, payload any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}

	if err := b.conn.Publish(b.Subject(kind), data); err != nil {
		return fmt.Errorf("publish %s event: %w", kind, err)
	}
	return nil
}

// Close, bekleyen mesajları gönderip bağlantıyı kapatır.
func (b *NATSBus) Close() error {
	if b.nc == nil {
		return nil
	}
	return b.nc.Drain()
}
