package worker

import (
	"context"
	"encoding/json"
	"log"

	"pennywise/internal/domain"
	"pennywise/internal/queue"
)

// Outbound consumes send_text tasks from the outbound-notification queue and
// delivers them to the transport. Delivery is best-effort: a failed send is
// logged and the task dropped rather than retried forever.
type Outbound struct {
	consumer Consumer
	sender   queue.Sender
}

func NewOutbound(consumer Consumer, sender queue.Sender) *Outbound {
	return &Outbound{consumer: consumer, sender: sender}
}

func (w *Outbound) Run(ctx context.Context) {
	log.Println("outbound worker started")
	for {
		if ctx.Err() != nil {
			log.Println("outbound worker stopping")
			return
		}

		msgs, err := w.consumer.Receive(ctx, receiveBatch, receiveWait)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("outbound receive: %v", err)
			sleep(ctx, errorBackoff)
			continue
		}

		for _, msg := range msgs {
			w.handle(ctx, msg)
		}
	}
}

func (w *Outbound) handle(ctx context.Context, msg queue.Message) {
	var task domain.OutboundTask
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		log.Printf("malformed outbound task, dropping: %v", err)
	} else if task.Type != domain.TaskSendText {
		log.Printf("unsupported outbound task type %q", task.Type)
	} else if task.WaID == "" || task.Text == "" {
		log.Println("outbound task missing wa_id or text")
	} else if err := w.sender.SendText(ctx, task.WaID, task.Text); err != nil {
		log.Printf("send outbound message to %s: %v", task.WaID, err)
	}

	if err := w.consumer.Delete(ctx, msg.ReceiptHandle); err != nil {
		log.Printf("delete outbound task: %v", err)
	}
}
