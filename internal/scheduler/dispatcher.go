package scheduler

import (
	"context"
	"time"

	"vitrine_backend/platform/config"
	"vitrine_backend/platform/logger"
)

// Dispatcher enqueues the recurring tasks on a fixed interval. It runs inside
// the scheduler binary next to the worker; losing a tick only delays the next
// pass, the sequence state itself lives in the database.
type Dispatcher struct {
	client   *Client
	interval time.Duration
	log      *logger.Logger
}

func NewDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*Dispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.GetNurtureInterval()
	if interval <= 0 {
		interval = time.Hour
	}

	return &Dispatcher{
		client:   client,
		interval: interval,
		log:      log,
	}, nil
}

func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}

func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	// First tick fires immediately so a restart does not push the next
	// pass a full interval out.
	d.enqueue(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.enqueue(ctx)
		}
	}
}

func (d *Dispatcher) enqueue(ctx context.Context) {
	now := time.Now()
	if err := d.client.EnqueueNurturePass(ctx, now); err != nil {
		d.log.Warn("failed to enqueue nurture pass", "error", err)
	}
	if err := d.client.EnqueueBookingsSweep(ctx, now); err != nil {
		d.log.Warn("failed to enqueue bookings sweep", "error", err)
	}
}
