package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shun-hikari/shun-gunma/internal/speech"
	"github.com/shun-hikari/shun-gunma/usecase"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	// client -> server
	MessageTypeSpeakStart   MessageType = "speak_start"
	MessageTypeSpeakStop    MessageType = "speak_stop"
	MessageTypeSetRate      MessageType = "set_rate"
	MessageTypeReadingStart MessageType = "reading_start"
	MessageTypeReadingEnd   MessageType = "reading_end"
	MessageTypePing         MessageType = "ping"

	// server -> client
	MessageTypePlaybackEvent MessageType = "playback_event"
	MessageTypeReadingResult MessageType = "reading_result"
	MessageTypePong          MessageType = "pong"
	MessageTypeError         MessageType = "error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
}

// SpeakStartMessage asks the server to speak a block of text
type SpeakStartMessage struct {
	BaseMessage
	Text     string  `json:"text"`
	Dialogue bool    `json:"dialogue"`
	Language string  `json:"language,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
}

// SpeakStopMessage cancels the current playback
type SpeakStopMessage struct {
	BaseMessage
}

// SetRateMessage changes the playback rate mid-speech
type SetRateMessage struct {
	BaseMessage
	Rate float64 `json:"rate"`
}

// ReadingStartMessage opens a read-aloud practice exchange. Binary
// frames that follow carry the microphone audio.
type ReadingStartMessage struct {
	BaseMessage
	Target     string `json:"target"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
	Language   string `json:"language,omitempty"`
}

// ReadingEndMessage closes the practice exchange and requests scoring
type ReadingEndMessage struct {
	BaseMessage
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PlaybackEventMessage reports a playback lifecycle event to the client
type PlaybackEventMessage struct {
	BaseMessage
	Event     speech.EventType `json:"event"`
	SessionID string           `json:"session_id"`
	Index     int              `json:"index"`
	Total     int              `json:"total"`
	Speaker   string           `json:"speaker,omitempty"`
	Text      string           `json:"text,omitempty"`
	Rate      float64          `json:"rate,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// ReadingResultMessage reports the score for a reading exercise
type ReadingResultMessage struct {
	BaseMessage
	Result *usecase.ReadingResult `json:"result"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses and validates an incoming client message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeSpeakStart:
		var msg SpeakStartMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid speak_start message: %w", err)
		}
		if msg.Text == "" {
			return nil, fmt.Errorf("text is required")
		}
		return &msg, nil

	case MessageTypeSpeakStop:
		var msg SpeakStopMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid speak_stop message: %w", err)
		}
		return &msg, nil

	case MessageTypeSetRate:
		var msg SetRateMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid set_rate message: %w", err)
		}
		if msg.Rate <= 0 {
			return nil, fmt.Errorf("rate must be positive")
		}
		return &msg, nil

	case MessageTypeReadingStart:
		var msg ReadingStartMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid reading_start message: %w", err)
		}
		if msg.Target == "" {
			return nil, fmt.Errorf("target is required")
		}
		return &msg, nil

	case MessageTypeReadingEnd:
		var msg ReadingEndMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid reading_end message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// NewPlaybackEventMessage maps a sequencer event into the wire shape
func NewPlaybackEventMessage(ev speech.Event) *PlaybackEventMessage {
	msg := &PlaybackEventMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePlaybackEvent,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Event:     ev.Type,
		SessionID: ev.SessionID,
		Index:     ev.Index,
		Total:     ev.Total,
		Speaker:   ev.Speaker,
		Text:      ev.Text,
		Rate:      ev.Rate,
	}
	if ev.Err != nil {
		msg.Message = ev.Err.Error()
	}
	return msg
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Data: data,
	}
}

// CreateReadingResultMessage wraps a reading score for the client
func CreateReadingResultMessage(result *usecase.ReadingResult) *ReadingResultMessage {
	return &ReadingResultMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeReadingResult,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Result: result,
	}
}
