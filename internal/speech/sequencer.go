package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/shun-hikari/shun-gunma/domain/entities"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// EventType identifies a playback lifecycle event
type EventType string

const (
	EventStart      EventType = "speak_started"
	EventChunkStart EventType = "chunk_started"
	EventChunkEnd   EventType = "chunk_ended"
	EventEnd        EventType = "speak_ended"
	EventError      EventType = "speak_error"
)

// Event reports a playback state change to the transport layer
type Event struct {
	Type      EventType
	SessionID string
	Index     int
	Total     int
	Speaker   string
	Text      string
	Rate      float64
	Err       error
}

// SpeakRequest describes one playback run
type SpeakRequest struct {
	Text     string
	Dialogue bool
	Language string
	Rate     float64
}

// Sequencer chains chunk-level synthesis requests so they play
// back-to-back. It owns one playback session at a time: starting while
// speaking cancels the previous run, and rate changes cancel the
// in-flight utterance and restart from the current chunk with the new
// settings.
type Sequencer struct {
	tts    repositories.TextToSpeech
	logger *zap.Logger

	onEvent func(Event)
	onAudio func(index int, data []byte)

	mu      sync.Mutex
	session *entities.PlaybackSession
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSequencer creates a sequencer that reports playback through the
// given callbacks. Callbacks are invoked from the playback goroutine
// and must not block for long.
func NewSequencer(tts repositories.TextToSpeech, logger *zap.Logger, onEvent func(Event), onAudio func(int, []byte)) *Sequencer {
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	if onAudio == nil {
		onAudio = func(int, []byte) {}
	}
	return &Sequencer{
		tts:     tts,
		logger:  logger,
		onEvent: onEvent,
		onAudio: onAudio,
	}
}

// Speak prepares utterances for the request and starts playback. Any
// run already in progress is cancelled first.
func (s *Sequencer) Speak(ctx context.Context, req SpeakRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("nothing to speak")
	}

	s.Stop()

	utterances, err := s.prepare(ctx, req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := entities.NewPlaybackSession(req.Language)
	if err := session.Begin(utterances, req.Rate); err != nil {
		return err
	}
	s.session = session

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("playback starting",
		zap.String("sessionID", session.ID),
		zap.Int("utterances", len(utterances)),
		zap.Float64("rate", session.Rate),
		zap.Bool("dialogue", req.Dialogue))

	s.onEvent(Event{
		Type:      EventStart,
		SessionID: session.ID,
		Total:     len(utterances),
		Rate:      session.Rate,
	})

	go s.run(runCtx, session, utterances, s.done)
	return nil
}

// prepare chunks the text and binds a voice to every chunk. Dialogue
// text is split on speaker labels first, with a stable voice per
// speaker for the whole run.
func (s *Sequencer) prepare(ctx context.Context, req SpeakRequest) ([]entities.Utterance, error) {
	voices, err := s.tts.Voices(ctx)
	if err != nil {
		s.logger.Warn("voice listing failed, using provider default", zap.Error(err))
		voices = nil
	}
	ranked := RankVoices(voices, req.Language)

	var utterances []entities.Utterance
	add := func(speaker, text string, voice repositories.Voice) {
		for _, chunk := range SplitChunks(text, DefaultMaxChunkLen) {
			utterances = append(utterances, entities.Utterance{
				Index:   len(utterances),
				Speaker: speaker,
				Text:    chunk,
				VoiceID: voice.ID,
			})
		}
	}

	if req.Dialogue {
		assigner := NewVoiceAssigner(ranked)
		for _, seg := range SplitSpeakers(req.Text) {
			add(seg.Speaker, seg.Text, assigner.Assign(seg.Speaker))
		}
	} else {
		var voice repositories.Voice
		if len(ranked) > 0 {
			voice = ranked[0]
		}
		add("", req.Text, voice)
	}

	if len(utterances) == 0 {
		return nil, fmt.Errorf("no speakable chunks in text")
	}
	return utterances, nil
}

// run synthesizes utterances in order, forwarding audio and lifecycle
// events. It exits silently when cancelled; Stop and SetRate own the
// state transition in that case.
func (s *Sequencer) run(ctx context.Context, session *entities.PlaybackSession, utterances []entities.Utterance, done chan struct{}) {
	defer close(done)

	for _, u := range utterances {
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		session.Advance(u.Index)
		rate := session.Rate
		lang := session.Language
		s.mu.Unlock()

		s.onEvent(Event{
			Type:      EventChunkStart,
			SessionID: session.ID,
			Index:     u.Index,
			Total:     len(session.Utterances),
			Speaker:   u.Speaker,
			Text:      u.Text,
			Rate:      rate,
		})

		if err := s.speakOne(ctx, u, lang, rate); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.mu.Lock()
			session.Fail(err)
			s.mu.Unlock()
			s.logger.Error("utterance synthesis failed",
				zap.String("sessionID", session.ID),
				zap.Int("index", u.Index),
				zap.Error(err))
			s.onEvent(Event{
				Type:      EventError,
				SessionID: session.ID,
				Index:     u.Index,
				Err:       err,
			})
			return
		}
		if ctx.Err() != nil {
			return
		}

		s.onEvent(Event{
			Type:      EventChunkEnd,
			SessionID: session.ID,
			Index:     u.Index,
			Total:     len(session.Utterances),
			Speaker:   u.Speaker,
		})
	}

	s.mu.Lock()
	session.Finish()
	s.mu.Unlock()

	s.logger.Info("playback finished", zap.String("sessionID", session.ID))
	s.onEvent(Event{Type: EventEnd, SessionID: session.ID, Total: len(session.Utterances)})
}

// speakOne synthesizes a single utterance and forwards its audio
func (s *Sequencer) speakOne(ctx context.Context, u entities.Utterance, lang string, rate float64) error {
	audio, err := s.tts.Synthesize(ctx, u.Text, repositories.SynthesisOptions{
		VoiceID:  u.VoiceID,
		Language: lang,
		Rate:     rate,
	})
	if err != nil {
		return err
	}

	for {
		select {
		case data, ok := <-audio:
			if !ok {
				return nil
			}
			s.onAudio(u.Index, data)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SetRate changes the playback rate. When a run is in progress the
// in-flight utterance is cancelled and playback restarts from the
// current chunk at the new rate.
func (s *Sequencer) SetRate(rate float64) {
	s.mu.Lock()
	session := s.session
	if session == nil || session.Status != entities.PlaybackStatusSpeaking {
		if session != nil {
			session.SetRate(rate)
		}
		s.mu.Unlock()
		return
	}

	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != session || session.Status != entities.PlaybackStatusSpeaking {
		// A new run took over, or the old one ended while we waited.
		session.SetRate(rate)
		return
	}

	session.SetRate(rate)
	remaining := session.Remaining()

	s.logger.Info("playback rate changed",
		zap.String("sessionID", session.ID),
		zap.Float64("rate", session.Rate),
		zap.Int("resumeAt", session.Current))

	runCtx, cancelFn := context.WithCancel(context.Background())
	s.cancel = cancelFn
	s.done = make(chan struct{})
	go s.run(runCtx, session, remaining, s.done)
}

// Stop cancels the current run, if any, and returns once playback has
// fully wound down.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	session := s.session
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	if session != nil && session.Status == entities.PlaybackStatusSpeaking {
		session.Finish()
	}
}

// Status reports the current playback state
func (s *Sequencer) Status() entities.PlaybackStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return entities.PlaybackStatusIdle
	}
	return s.session.Status
}

// Session returns a snapshot of the current playback session, or nil
// when nothing has been spoken yet.
func (s *Sequencer) Session() *entities.PlaybackSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	snapshot := *s.session
	return &snapshot
}
