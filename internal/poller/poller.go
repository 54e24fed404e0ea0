// Package poller runs the best-effort background loop that picks up pending
// processing jobs. One poller instance per process; running several
// processes concurrently can double-process a job, which is an accepted
// limitation of this design.
package poller

import (
	"context"
	"sync"
	"time"

	"clipworks/internal/ports"
)

// Runner executes one job end to end.
type Runner func(ctx context.Context, jobID string) error

type Poller struct {
	jobs     ports.ProcessingJobRepository
	run      Runner
	interval time.Duration
	logf     func(format string, args ...any)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(jobs ports.ProcessingJobRepository, run Runner, interval time.Duration, logf func(string, ...any)) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Poller{jobs: jobs, run: run, interval: interval, logf: logf}
}

// Start launches the polling loop. Calling Start on a running poller is a
// no-op; Stop cancels the loop and waits for it to drain.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		p.logf("poller started, interval %s", p.interval)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.logf("poller stopped")
				return
			case <-ticker.C:
				p.PollOnce(ctx)
			}
		}
	}()
}

func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// PollOnce processes at most the single oldest pending job. It is the outer
// resilience boundary: a failing job is logged and must never stop
// subsequent ticks.
func (p *Poller) PollOnce(ctx context.Context) {
	job, err := p.jobs.FindOldestPending(ctx)
	if err != nil {
		p.logf("poll pending jobs: %v", err)
		return
	}
	if job == nil {
		return
	}
	p.logf("poller picked up job %s (video %s)", job.ID, job.VideoID)
	if err := p.run(ctx, job.ID); err != nil {
		p.logf("job %s failed: %v", job.ID, err)
	}
}
