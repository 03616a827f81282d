// Package server defines the JSON envelopes exchanged over the websocket and
// utility helpers that are reused across client and hub logic.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Inbound event types.
const (
	inboundJoin        = "join"
	inboundSendMessage = "sendMessage"
)

var (
	ErrInvalidEnvelope  = errors.New("invalid envelope")
	ErrUnknownEventType = errors.New("unknown event type")
)

// Envelope is the frame format in both directions: {"type": ..., "data": ...}.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SendMessagePayload is the data of a sendMessage event.
type SendMessagePayload struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

type joinObject struct {
	Username string `json:"username"`
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrInvalidEnvelope)
	}
	return env, nil
}

// decodeJoin accepts either a bare string or {"username": "..."}.
func decodeJoin(data json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}

	var name string
	if err := json.Unmarshal(trimmed, &name); err == nil {
		return name, nil
	}

	var obj joinObject
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return "", fmt.Errorf("%w: join payload: %w", ErrInvalidEnvelope, err)
	}
	return obj.Username, nil
}

func decodeSendMessage(data json.RawMessage) (SendMessagePayload, error) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return SendMessagePayload{}, fmt.Errorf("%w: sendMessage payload: %w", ErrInvalidEnvelope, err)
	}
	return payload, nil
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
