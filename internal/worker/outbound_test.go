package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pennywise/internal/domain"
	"pennywise/internal/queue"
	"pennywise/internal/worker"
)

// fakeConsumer serves one batch of messages, then cancels the worker context
// so Run returns.
type fakeConsumer struct {
	batch   []queue.Message
	served  bool
	deleted []string
	cancel  context.CancelFunc
}

func (f *fakeConsumer) Receive(ctx context.Context, max int32, wait time.Duration) ([]queue.Message, error) {
	if f.served {
		f.cancel()
		return nil, ctx.Err()
	}
	f.served = true
	return f.batch, nil
}

func (f *fakeConsumer) Delete(ctx context.Context, receiptHandle string) error {
	f.deleted = append(f.deleted, receiptHandle)
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

func taskBody(t *testing.T, task domain.OutboundTask) []byte {
	t.Helper()
	body, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}
	return body
}

func TestOutbound_DeliversAndDeletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := &fakeConsumer{
		cancel: cancel,
		batch: []queue.Message{
			{ReceiptHandle: "r1", Body: taskBody(t, domain.OutboundTask{
				Type: domain.TaskSendText, WaID: "15551234567", Text: "Recorded expense",
			})},
			{ReceiptHandle: "r2", Body: []byte("not json")},
			{ReceiptHandle: "r3", Body: taskBody(t, domain.OutboundTask{
				Type: "send_image", WaID: "15551234567", Text: "x",
			})},
		},
	}
	sender := &fakeSender{}

	worker.NewOutbound(consumer, sender).Run(ctx)

	if len(sender.sent) != 1 || sender.sent[0] != "15551234567: Recorded expense" {
		t.Fatalf("sent = %v", sender.sent)
	}
	// Malformed and unsupported tasks are dropped, not retried.
	if len(consumer.deleted) != 3 {
		t.Fatalf("deleted %d messages, want 3", len(consumer.deleted))
	}
}

func TestOutbound_SendFailureIsBestEffort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := &fakeConsumer{
		cancel: cancel,
		batch: []queue.Message{
			{ReceiptHandle: "r1", Body: taskBody(t, domain.OutboundTask{
				Type: domain.TaskSendText, WaID: "15551234567", Text: "hello",
			})},
		},
	}
	sender := &fakeSender{err: errors.New("transport down")}

	worker.NewOutbound(consumer, sender).Run(ctx)

	// The task is still consumed; a dropped notification is acceptable.
	if len(consumer.deleted) != 1 {
		t.Fatalf("deleted %d messages, want 1", len(consumer.deleted))
	}
}
