package protocol

import (
	"encoding/json"
	"fmt"
)

// Inbound is the envelope of every client frame. ID is echoed back on the ack
// untouched, so clients may use numbers or strings.
type Inbound struct {
	Type string          `json:"type"`
	ID   json.RawMessage `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound is the envelope of every server frame.
type Outbound struct {
	Type string          `json:"type"`
	ID   json.RawMessage `json:"id,omitempty"`
	Data any             `json:"data,omitempty"`
}

// Encode marshals a push frame.
func Encode(typ string, data any) ([]byte, error) {
	b, err := json.Marshal(Outbound{Type: typ, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typ, err)
	}
	return b, nil
}

// EncodeAck marshals an acknowledgment for the inbound frame with the given id.
func EncodeAck(id json.RawMessage, ack Ack) ([]byte, error) {
	b, err := json.Marshal(Outbound{Type: PushAck, ID: id, Data: ack})
	if err != nil {
		return nil, fmt.Errorf("encode ack: %w", err)
	}
	return b, nil
}

// Decode parses the envelope of a client frame.
func Decode(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, err
	}
	if in.Type == "" {
		return Inbound{}, fmt.Errorf("missing frame type")
	}
	return in, nil
}
