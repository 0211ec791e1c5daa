package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pennywise/internal/domain"
	"pennywise/internal/queue"
)

type fakePublisher struct {
	bodies [][]byte
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendText(ctx context.Context, waID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, waID+": "+text)
	return nil
}

func TestNotify_EnqueuesWhenQueueConfigured(t *testing.T) {
	pub := &fakePublisher{}
	sender := &fakeSender{}
	n := queue.NewNotifier(pub, sender)

	if !n.Notify(context.Background(), "15551234567", "hi there", map[string]string{"kind": "confirmation"}) {
		t.Fatal("notify should report accepted")
	}

	if len(sender.sent) != 0 {
		t.Fatal("direct send must not happen when the queue accepts the task")
	}
	if len(pub.bodies) != 1 {
		t.Fatalf("published %d tasks, want 1", len(pub.bodies))
	}

	var task domain.OutboundTask
	if err := json.Unmarshal(pub.bodies[0], &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if task.Type != domain.TaskSendText || task.WaID != "15551234567" || task.Text != "hi there" {
		t.Fatalf("task = %+v", task)
	}
	if task.Metadata["kind"] != "confirmation" {
		t.Fatalf("metadata = %v", task.Metadata)
	}
}

func TestNotify_DirectSendWithoutQueue(t *testing.T) {
	sender := &fakeSender{}
	n := queue.NewNotifier(nil, sender)

	if !n.Notify(context.Background(), "15551234567", "hi", nil) {
		t.Fatal("notify should report accepted")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
}

func TestNotify_QueueFailureFallsBackToDirectSend(t *testing.T) {
	pub := &fakePublisher{err: errors.New("queue down")}
	sender := &fakeSender{}
	n := queue.NewNotifier(pub, sender)

	if !n.Notify(context.Background(), "15551234567", "hi", nil) {
		t.Fatal("notify should fall back to direct send")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
}

func TestNotify_SendFailureReported(t *testing.T) {
	sender := &fakeSender{err: errors.New("transport down")}
	n := queue.NewNotifier(nil, sender)

	if n.Notify(context.Background(), "15551234567", "hi", nil) {
		t.Fatal("notify should report failure when the direct send fails")
	}
}

func TestInboundQueue_MarshalsTask(t *testing.T) {
	pub := &fakePublisher{}
	q := queue.NewInboundQueue(pub)

	twelve := 12.5
	task := domain.InboundTask{
		Type: domain.TaskExpense,
		WaID: "919876543210",
		Expense: domain.ExpensePayload{
			Amount:      &twelve,
			Currency:    "INR",
			Category:    "food",
			Notes:       "Lunch 12.5",
			ExpenseDate: "2024-05-01",
		},
	}
	if err := q.Enqueue(context.Background(), task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var got domain.InboundTask
	if err := json.Unmarshal(pub.bodies[0], &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Expense.Amount == nil || *got.Expense.Amount != 12.5 || got.Expense.Currency != "INR" {
		t.Fatalf("round-tripped task = %+v", got)
	}
}
