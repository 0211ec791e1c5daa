package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"pennywise/internal/domain"
	"pennywise/internal/queue"
	"pennywise/internal/service"
)

// Consumer is the receive side of a queue.
type Consumer interface {
	Receive(ctx context.Context, max int32, wait time.Duration) ([]queue.Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// TaskRecorder runs the record pipeline for one queued expense.
type TaskRecorder interface {
	RecordTask(ctx context.Context, task domain.InboundTask) service.Outcome
}

const (
	receiveBatch = 10
	receiveWait  = 20 * time.Second
	errorBackoff = 5 * time.Second
)

// Inbound consumes normalized expenses from the inbound-work queue and runs
// the record pipeline for each. Messages are deleted after processing, so a
// crash mid-batch means redelivery and an independently re-evaluated message.
type Inbound struct {
	consumer Consumer
	svc      TaskRecorder
}

func NewInbound(consumer Consumer, svc TaskRecorder) *Inbound {
	return &Inbound{consumer: consumer, svc: svc}
}

func (w *Inbound) Run(ctx context.Context) {
	log.Println("inbound worker started")
	for {
		if ctx.Err() != nil {
			log.Println("inbound worker stopping")
			return
		}

		msgs, err := w.consumer.Receive(ctx, receiveBatch, receiveWait)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("inbound receive: %v", err)
			sleep(ctx, errorBackoff)
			continue
		}

		for _, msg := range msgs {
			w.handle(ctx, msg)
		}
	}
}

func (w *Inbound) handle(ctx context.Context, msg queue.Message) {
	var task domain.InboundTask
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		log.Printf("malformed inbound task, dropping: %v", err)
	} else {
		outcome := w.svc.RecordTask(ctx, task)
		log.Printf("inbound task for %s: %s", task.WaID, outcome)
		if outcome == service.OutcomeError {
			// Transient failure: leave the message for redelivery, where it
			// is re-evaluated as a fresh, independent submission. Invalid
			// tasks fall through and are deleted; redelivery cannot fix them.
			return
		}
	}

	if err := w.consumer.Delete(ctx, msg.ReceiptHandle); err != nil {
		log.Printf("delete inbound task: %v", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
