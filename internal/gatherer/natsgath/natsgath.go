// Package natsgath streams judge progress as JSON messages to a NATS subject.
package natsgath

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/cpkit/internal/gatherer"
)

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("cpkit"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// New creates a gatherer publishing every message for jobID to subject.
func New(nc *nats.Conn, jobID string, subject string, log *slog.Logger) *gatherer.Stream {
	return gatherer.NewStream(jobID, &publisher{nc: nc, subject: subject}, log)
}

type publisher struct {
	nc      *nats.Conn
	subject string
}

func (p *publisher) Publish(_ context.Context, msg []byte) error {
	return p.nc.Publish(p.subject, msg)
}

// Flush blocks until published messages reached the server.
func Flush(ctx context.Context, nc *nats.Conn) error {
	return nc.FlushWithContext(ctx)
}
