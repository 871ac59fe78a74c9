package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects names the subjects the bridge consumes and produces.
type Subjects struct {
	In    string
	Out   string // Empty disables publishing.
	Queue string
}

// Connect dials NATS with reconnects enabled.
func Connect(url, name string, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// Bridge consumes raw batches from NATS and publishes normalised ones.
type Bridge struct {
	nc       *nats.Conn
	subjects Subjects
	proc     *Processor
	logger   *slog.Logger
	publish  func(subject string, data []byte) error
}

// NewBridge creates a bridge over an open connection.
func NewBridge(nc *nats.Conn, subjects Subjects, proc *Processor, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		nc:       nc,
		subjects: subjects,
		proc:     proc,
		logger:   logger,
		publish:  nc.Publish,
	}
}

// Run subscribes and processes batches until ctx is cancelled, then drains
// the subscription.
func (b *Bridge) Run(ctx context.Context) error {
	handler := func(msg *nats.Msg) {
		b.handle(ctx, msg.Data, msg.Reply)
	}

	var sub *nats.Subscription
	var err error
	if b.subjects.Queue != "" {
		sub, err = b.nc.QueueSubscribe(b.subjects.In, b.subjects.Queue, handler)
	} else {
		sub, err = b.nc.Subscribe(b.subjects.In, handler)
	}
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.subjects.In, err)
	}
	b.logger.Info("feed bridge listening", "subject", b.subjects.In, "queue", b.subjects.Queue, "out", b.subjects.Out)

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}

func (b *Bridge) handle(ctx context.Context, data []byte, reply string) {
	batch, err := b.proc.ProcessRaw(ctx, data)
	if batch == nil {
		b.logger.Warn("batch rejected", "error", err)
		return
	}
	if err != nil {
		b.logger.Warn("batch stored with errors", "batch_id", batch.BatchID, "error", err)
	}

	out, err := json.Marshal(batch)
	if err != nil {
		b.logger.Error("encode batch", "batch_id", batch.BatchID, "error", err)
		return
	}
	if b.subjects.Out != "" {
		if err := b.publish(b.subjects.Out, out); err != nil {
			b.logger.Error("publish batch", "batch_id", batch.BatchID, "error", err)
		}
	}
	if reply != "" {
		if err := b.publish(reply, out); err != nil {
			b.logger.Error("reply batch", "batch_id", batch.BatchID, "error", err)
		}
	}
}
