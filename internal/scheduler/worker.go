package scheduler

import (
	"context"
	"fmt"
	"time"

	"vitrine_backend/platform/config"
	"vitrine_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// NurtureRunner executes one nurture pass and reports how many emails it sent.
type NurtureRunner interface {
	RunPass(ctx context.Context, now time.Time) (int, error)
}

// BookingSweeper marks confirmed bookings whose slot has elapsed as completed.
type BookingSweeper interface {
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
}

// Worker consumes scheduler tasks from the queue.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	nurture NurtureRunner
	sweeper BookingSweeper
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, nurture NurtureRunner, sweeper BookingSweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		nurture: nurture,
		sweeper: sweeper,
		log:     log,
	}

	mux.HandleFunc(TaskNurturePass, w.handleNurturePass)
	mux.HandleFunc(TaskBookingsSweep, w.handleBookingsSweep)

	return w, nil
}

func (w *Worker) handleNurturePass(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseNurturePassPayload(task); err != nil {
		return err
	}

	sent, err := w.nurture.RunPass(ctx, time.Now())
	if err != nil {
		return err
	}
	w.log.Info("nurture pass finished", "sent", sent)
	return nil
}

func (w *Worker) handleBookingsSweep(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseBookingsSweepPayload(task); err != nil {
		return err
	}

	completed, err := w.sweeper.CompleteElapsed(ctx, time.Now())
	if err != nil {
		return err
	}
	if completed > 0 {
		w.log.Info("bookings sweep finished", "completed", completed)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
