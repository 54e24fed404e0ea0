// Package messaging provides the optional NATS inbound trigger. Jobs pushed
// on the subject are processed immediately; the poller remains the fallback
// when the broker is unavailable.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "clipworks.jobs.process"

type jobEvent struct {
	JobID string `json:"job_id"`
}

type Consumer struct {
	nc      *nats.Conn
	subject string
	handler func(ctx context.Context, jobID string) error
	logf    func(format string, args ...any)
}

func NewConsumer(url, subject string, handler func(ctx context.Context, jobID string) error, logf func(string, ...any)) (*Consumer, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Consumer{nc: nc, subject: subject, handler: handler, logf: logf}, nil
}

// Listen subscribes and processes job events until the context is done.
// Handler failures are logged; the orchestrator has already persisted the
// failure state, so the message is not redelivered.
func (c *Consumer) Listen(ctx context.Context) error {
	msgs := make(chan *nats.Msg, 16)
	sub, err := c.nc.ChanSubscribe(c.subject, msgs)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.subject, err)
	}
	defer sub.Unsubscribe()
	c.logf("listening for job events on %s", c.subject)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-msgs:
			var ev jobEvent
			if err := json.Unmarshal(m.Data, &ev); err != nil {
				c.logf("bad job event: %v", err)
				continue
			}
			if ev.JobID == "" {
				c.logf("job event without job_id")
				continue
			}
			if err := c.handler(ctx, ev.JobID); err != nil {
				c.logf("job %s failed: %v", ev.JobID, err)
			}
		}
	}
}

func (c *Consumer) Close() {
	c.nc.Drain()
}
