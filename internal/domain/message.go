package domain

import "time"

// InboundMessage is the transport-level envelope for one webhook message
// item. ReferenceDate comes from transport metadata and anchors relative
// dates during extraction; zero means unknown.
type InboundMessage struct {
	WaID          string
	Type          string // "text" or any other transport message type
	Text          string
	ReferenceDate time.Time
}

const MessageTypeText = "text"
