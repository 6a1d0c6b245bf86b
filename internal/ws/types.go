package ws

const (
	// client -> server
	MsgPing = "ping"

	// server -> client
	MsgReady = "ready"
	MsgPong  = "pong"
)

// Envelope is the shape of control messages. Task events are sent as
// domain.TaskEvent, which shares the "type" key.
type Envelope struct {
	Type string `json:"type"`
}
