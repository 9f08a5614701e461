package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PlaybackStatus represents the status of a playback session
type PlaybackStatus string

const (
	PlaybackStatusIdle     PlaybackStatus = "idle"
	PlaybackStatusSpeaking PlaybackStatus = "speaking"
	PlaybackStatusError    PlaybackStatus = "error"
)

// Playback rate bounds, matching what browser speech engines accept
const (
	MinRate     = 0.5
	MaxRate     = 2.0
	DefaultRate = 1.0
)

var (
	ErrAlreadySpeaking = errors.New("playback already in progress")
	ErrNotSpeaking     = errors.New("no playback in progress")
	ErrNoUtterances    = errors.New("playback session has no utterances")
)

// Utterance is one speech-engine request: a chunk of text bound to a voice
type Utterance struct {
	Index   int    `json:"index"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

// PlaybackSession tracks one run of sequenced speech for a client connection
type PlaybackSession struct {
	ID         string         `json:"id"`
	Language   string         `json:"language"`
	Rate       float64        `json:"rate"`
	Status     PlaybackStatus `json:"status"`
	Utterances []Utterance    `json:"utterances"`
	Current    int            `json:"current"`
	StartedAt  time.Time      `json:"started_at"`
	EndedAt    *time.Time     `json:"ended_at,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
}

// NewPlaybackSession creates an idle playback session
func NewPlaybackSession(language string) *PlaybackSession {
	if language == "" {
		language = "en-US"
	}
	return &PlaybackSession{
		ID:       uuid.NewString(),
		Language: language,
		Rate:     DefaultRate,
		Status:   PlaybackStatusIdle,
	}
}

// ClampRate normalizes a requested playback rate into the supported range
func ClampRate(rate float64) float64 {
	if rate <= 0 {
		return DefaultRate
	}
	if rate < MinRate {
		return MinRate
	}
	if rate > MaxRate {
		return MaxRate
	}
	return rate
}

// Begin transitions the session into the speaking state
func (p *PlaybackSession) Begin(utterances []Utterance, rate float64) error {
	if p.Status == PlaybackStatusSpeaking {
		return ErrAlreadySpeaking
	}
	if len(utterances) == 0 {
		return ErrNoUtterances
	}
	p.Utterances = utterances
	p.Rate = ClampRate(rate)
	p.Current = 0
	p.Status = PlaybackStatusSpeaking
	p.StartedAt = time.Now()
	p.EndedAt = nil
	p.LastError = ""
	return nil
}

// Advance marks the utterance at index as the one currently being spoken
func (p *PlaybackSession) Advance(index int) error {
	if p.Status != PlaybackStatusSpeaking {
		return ErrNotSpeaking
	}
	if index < 0 || index >= len(p.Utterances) {
		return errors.New("utterance index out of range")
	}
	p.Current = index
	return nil
}

// SetRate updates the playback rate. The caller is responsible for
// restarting synthesis from the current utterance.
func (p *PlaybackSession) SetRate(rate float64) {
	p.Rate = ClampRate(rate)
}

// Finish transitions the session back to idle after a completed run
func (p *PlaybackSession) Finish() {
	now := time.Now()
	p.Status = PlaybackStatusIdle
	p.EndedAt = &now
}

// Fail records a playback error and ends the run
func (p *PlaybackSession) Fail(err error) {
	now := time.Now()
	p.Status = PlaybackStatusError
	p.EndedAt = &now
	if err != nil {
		p.LastError = err.Error()
	}
}

// Remaining returns the utterances not yet completed, starting at Current
func (p *PlaybackSession) Remaining() []Utterance {
	if p.Current >= len(p.Utterances) {
		return nil
	}
	return p.Utterances[p.Current:]
}
