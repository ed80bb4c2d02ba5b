// Package telephony is the Twilio Media Streams transport: it terminates
// the webhook and WebSocket endpoints, decodes the stream protocol, and
// drives one callsession.Session per connected call.
package telephony

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Stream protocol event names.
const (
	EventConnected = "connected"
	EventStart     = "start"
	EventMedia     = "media"
	EventDTMF      = "dtmf"
	EventMark      = "mark"
	EventStop      = "stop"
	EventClear     = "clear"
)

// DefaultMarkName labels the mark queued after each response so the far end
// reports when playback finished.
const DefaultMarkName = "endOfResponse"

// Message is one decoded Media Streams protocol message. Only the section
// matching Event is populated.
type Message struct {
	Event     string        `json:"event"`
	StreamSID string        `json:"streamSid,omitempty"`
	Start     *StartPayload `json:"start,omitempty"`
	Media     *MediaPayload `json:"media,omitempty"`
	DTMF      *DTMFPayload  `json:"dtmf,omitempty"`
	Mark      *MarkPayload  `json:"mark,omitempty"`
	Stop      *StopPayload  `json:"stop,omitempty"`
}

// StartPayload carries the stream metadata sent once per call.
type StartPayload struct {
	StreamSID        string            `json:"streamSid"`
	AccountSID       string            `json:"accountSid"`
	CallSID          string            `json:"callSid"`
	Tracks           []string          `json:"tracks"`
	CustomParameters map[string]string `json:"customParameters"`
}

// MediaPayload carries one frame of base64-encoded μ-law audio.
type MediaPayload struct {
	Track     string `json:"track,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"`
}

// DTMFPayload carries one keypad digit.
type DTMFPayload struct {
	Track string `json:"track,omitempty"`
	Digit string `json:"digit"`
}

// MarkPayload acknowledges a previously queued mark.
type MarkPayload struct {
	Name string `json:"name"`
}

// StopPayload carries the stream teardown notification.
type StopPayload struct {
	AccountSID string `json:"accountSid"`
	CallSID    string `json:"callSid"`
}

// ParseMessage decodes one protocol message.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("telephony: parse message: %w", err)
	}
	if msg.Event == "" {
		return nil, fmt.Errorf("telephony: message without event")
	}
	return &msg, nil
}

// AudioFrame decodes the base64 μ-law payload of a media message.
func (m *Message) AudioFrame() ([]byte, error) {
	if m.Media == nil {
		return nil, fmt.Errorf("telephony: %s message has no media payload", m.Event)
	}
	frame, err := base64.StdEncoding.DecodeString(m.Media.Payload)
	if err != nil {
		return nil, fmt.Errorf("telephony: decode media payload: %w", err)
	}
	return frame, nil
}

// MediaMessage builds an outbound media message carrying one μ-law chunk.
func MediaMessage(streamSID string, mulaw []byte) ([]byte, error) {
	return json.Marshal(Message{
		Event:     EventMedia,
		StreamSID: streamSID,
		Media: &MediaPayload{
			Payload: base64.StdEncoding.EncodeToString(mulaw),
		},
	})
}

// MarkMessage builds an outbound mark. An empty name uses [DefaultMarkName].
func MarkMessage(streamSID, name string) ([]byte, error) {
	if name == "" {
		name = DefaultMarkName
	}
	return json.Marshal(Message{
		Event:     EventMark,
		StreamSID: streamSID,
		Mark:      &MarkPayload{Name: name},
	})
}

// ClearMessage builds an outbound clear, which discards any audio still
// queued for playback on the far end.
func ClearMessage(streamSID string) ([]byte, error) {
	return json.Marshal(Message{
		Event:     EventClear,
		StreamSID: streamSID,
	})
}
