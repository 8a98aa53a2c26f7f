package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type fakeSchedulerConfig struct {
	redisURL string
	queue    string
}

func (f fakeSchedulerConfig) GetRedisURL() string              { return f.redisURL }
func (f fakeSchedulerConfig) GetRedisTLSInsecure() bool        { return false }
func (f fakeSchedulerConfig) GetAsynqQueueName() string        { return f.queue }
func (f fakeSchedulerConfig) GetAsynqConcurrency() int         { return 1 }
func (f fakeSchedulerConfig) GetNurtureInterval() time.Duration { return time.Hour }

func TestClient_EnqueueNurturePass(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(fakeSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueNurturePass(context.Background(), time.Now()); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected one pending task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskNurturePass {
		t.Fatalf("expected %s, got %s", TaskNurturePass, tasks[0].Type)
	}
}

func TestClient_EnqueueBookingsSweepUsesConfiguredQueue(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(fakeSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "vitrine"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueBookingsSweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("vitrine")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected one pending task on the vitrine queue, got %d", len(tasks))
	}
}

func TestNewClient_RequiresRedisURL(t *testing.T) {
	if _, err := NewClient(fakeSchedulerConfig{}); err == nil {
		t.Fatalf("expected an error without a redis url")
	}
}

func TestRedisClientOpt_ParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Addr != "localhost:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected options: %+v", opt)
	}
	if opt.TLSConfig != nil {
		t.Fatalf("plain redis url must not carry a TLS config")
	}

	opt, err = redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatalf("expected an insecure TLS config")
	}
}
