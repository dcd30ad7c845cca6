package websocket

// inboundEnvelope is the wire shape clients send. Only type "message" is
// recognized; anything else is dropped without a response. SenderID is
// honored only for anonymous sockets, and only when guest sending is
// enabled.
type inboundEnvelope struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	SenderID *int64 `json:"sender_id"`
}

const envelopeTypeMessage = "message"

type savedAck struct {
	Saved bool  `json:"saved"`
	ID    int64 `json:"id"`
}

type errorAck struct {
	Error string `json:"error"`
}

const saveErrorMessage = "Could not save message"
