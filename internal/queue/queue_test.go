package queue

import (
	"context"
	"testing"

	"github.com/jaisdevansh/monu-bhiya/internal/config"
)

func TestOrderPlacedTaskRoundTrip(t *testing.T) {
	task, err := NewOrderPlacedEmailTask(OrderPlacedEmailPayload{OrderID: 7, Locale: "hi"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskOrderPlacedEmail {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	payload, err := ParseOrderPlacedEmailPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.OrderID != 7 || payload.Locale != "hi" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("disabled client reports enabled")
	}
	if err := client.EnqueueOrderStatusEmail(context.Background(), OrderStatusEmailPayload{OrderID: 1, Status: "ready"}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt %+v", opt)
	}
	if cfg.Concurrency != 5 || cfg.Queues[CriticalQueue] == 0 {
		t.Fatalf("unexpected server config %+v", cfg)
	}
}
