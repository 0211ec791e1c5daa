package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pennywise/internal/domain"
	"pennywise/internal/metrics"
	"pennywise/internal/service"
)

// SignatureVerifier validates a webhook body against its signature header.
type SignatureVerifier interface {
	VerifySignature(body []byte, signature string) bool
}

// MessageHandler processes one inbound message to a terminal outcome.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg domain.InboundMessage) service.Outcome
}

// Webhook serves the WhatsApp Cloud API webhook: the GET verification
// handshake and POST message deliveries.
type Webhook struct {
	verifyToken string
	verifier    SignatureVerifier
	svc         MessageHandler
	metrics     metrics.Collector
}

func NewWebhook(verifyToken string, verifier SignatureVerifier, svc MessageHandler, collector metrics.Collector) *Webhook {
	if collector == nil {
		collector = metrics.Noop{}
	}
	return &Webhook{
		verifyToken: verifyToken,
		verifier:    verifier,
		svc:         svc,
		metrics:     collector,
	}
}

// webhookPayload mirrors the nested Cloud API delivery shape.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []webhookMessage `json:"messages"`
				Contacts []struct {
					WaID string `json:"wa_id"`
				} `json:"contacts"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type webhookMessage struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Text      struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Verify handles Meta's initial challenge:
// GET /webhook?hub.mode=subscribe&hub.verify_token=...&hub.challenge=...
func (h *Webhook) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		log.Printf("webhook verification failed: mode=%q", mode)
		http.Error(w, "verification failed", http.StatusForbidden)
		return
	}

	n, err := strconv.Atoi(challenge)
	if err != nil {
		http.Error(w, "invalid challenge", http.StatusBadRequest)
		return
	}

	log.Println("webhook verified")
	w.Write([]byte(strconv.Itoa(n)))
}

// maxWebhookBody caps a delivery payload; Cloud API deliveries are far
// smaller, anything bigger is abuse.
const maxWebhookBody = 1 << 20

// Receive handles a message delivery. A signature header is verified when
// present; an absent header means the payload is processed unverified.
// Message items in one payload are processed sequentially so replies to the
// same sender keep their order.
func (h *Webhook) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.metrics.MessageError()
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	if signature := r.Header.Get("X-Hub-Signature-256"); signature != "" {
		if !h.verifier.VerifySignature(body, signature) {
			log.Println("webhook signature verification failed")
			h.metrics.MessageError()
			http.Error(w, "bad signature", http.StatusForbidden)
			return
		}
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.metrics.MessageError()
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			for _, msg := range value.Messages {
				waID := msg.From
				if waID == "" && len(value.Contacts) > 0 {
					waID = value.Contacts[0].WaID
				}
				if waID == "" {
					log.Println("no wa_id in message, skipping")
					continue
				}

				start := time.Now()
				h.svc.HandleMessage(r.Context(), domain.InboundMessage{
					WaID:          waID,
					Type:          msg.Type,
					Text:          strings.TrimSpace(msg.Text.Body),
					ReferenceDate: referenceDate(msg.Timestamp),
				})
				h.metrics.MessageProcessed(time.Since(start).Milliseconds())
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "received"})
}

// referenceDate derives the extraction anchor date from the transport's unix
// timestamp; zero when absent or malformed.
func referenceDate(timestamp string) time.Time {
	if timestamp == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// Health is a trivial liveness endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
