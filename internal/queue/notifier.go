package queue

import (
	"context"
	"encoding/json"
	"log"

	"pennywise/internal/domain"
)

// Sender delivers a text message directly to the transport.
type Sender interface {
	SendText(ctx context.Context, waID, text string) error
}

// Notifier is the outbound dispatcher. With a queue configured it enqueues a
// send_text task and returns immediately; without one it sends synchronously.
// The returned bool means "accepted for delivery", never "delivered".
type Notifier struct {
	queue  Publisher // nil when no outbound queue is configured
	sender Sender
}

func NewNotifier(queue Publisher, sender Sender) *Notifier {
	return &Notifier{queue: queue, sender: sender}
}

func (n *Notifier) Notify(ctx context.Context, waID, text string, metadata map[string]string) bool {
	if n.queue != nil {
		task := domain.OutboundTask{
			Type:     domain.TaskSendText,
			WaID:     waID,
			Text:     text,
			Metadata: metadata,
		}
		body, err := json.Marshal(task)
		if err != nil {
			log.Printf("marshal outbound task for %s: %v", waID, err)
			return false
		}
		if err := n.queue.Publish(ctx, body); err != nil {
			// Queue trouble should not cost the user their message.
			log.Printf("enqueue outbound message for %s failed, sending directly: %v", waID, err)
		} else {
			return true
		}
	}

	if err := n.sender.SendText(ctx, waID, text); err != nil {
		log.Printf("send message to %s: %v", waID, err)
		return false
	}
	return true
}

// InboundQueue adapts a Publisher to the inbound-work task shape.
type InboundQueue struct {
	queue Publisher
}

func NewInboundQueue(queue Publisher) *InboundQueue {
	return &InboundQueue{queue: queue}
}

func (q *InboundQueue) Enqueue(ctx context.Context, task domain.InboundTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.queue.Publish(ctx, body)
}
