// Package engine wires configuration, personas, and the session
// implementations into ready-to-run practice sessions.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pitchcoach/session-engine/internal/audio"
	"github.com/pitchcoach/session-engine/internal/chat"
	"github.com/pitchcoach/session-engine/internal/config"
	"github.com/pitchcoach/session-engine/internal/observability"
	"github.com/pitchcoach/session-engine/internal/persona"
	"github.com/pitchcoach/session-engine/internal/realtime"
	"github.com/pitchcoach/session-engine/internal/scoring"
	"github.com/pitchcoach/session-engine/internal/transcript"
)

// Mode selects how the user converses.
type Mode string

const (
	ModeVoice Mode = "voice"
	ModeText  Mode = "text"
)

// Result is what a finished session leaves behind for review and scoring.
type Result struct {
	Transcript []transcript.Utterance
	Duration   time.Duration
}

// Engine builds practice sessions from application configuration.
type Engine struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// New creates an Engine.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg, logger: observability.GetLogger()}
}

// VoiceRun is one live voice session.
type VoiceRun struct {
	session *realtime.Session
	metrics *observability.Metrics
	start   time.Time
}

// VoiceOptions carries the caller's observers for a voice session.
type VoiceOptions struct {
	OnState     func(realtime.State)
	OnSpeaking  func(realtime.Speaking)
	OnUtterance func(transcript.Utterance)
	// Dial overrides the websocket dialer. Nil uses the configured realtime
	// endpoint.
	Dial realtime.Dialer
	// NewSource overrides microphone construction. Nil uses the default
	// capture device.
	NewSource func(onFrame func(samples []int16)) realtime.AudioSource
	// Sink overrides audio output. Nil uses the default playback device.
	Sink realtime.AudioSink
}

// StartVoice connects a realtime voice session with the given character.
// The returned run is live once this returns; the caller ends it with End
// or watches Done for remote termination.
func (e *Engine) StartVoice(ctx context.Context, p persona.Persona, opts VoiceOptions) (*VoiceRun, error) {
	sessionID := observability.NewSessionID()
	logger := observability.WithSessionID(sessionID)
	metrics := observability.NewSessionMetrics(sessionID)

	dial := opts.Dial
	if dial == nil {
		dial = realtime.WebSocketDialer(e.cfg.RealtimeURL, e.cfg.OpenAIAPIKey, e.cfg.RealtimeModel)
	}

	sink := opts.Sink
	if sink == nil {
		player := audio.NewPlayer(audio.PlayerConfig{SampleRate: e.cfg.PlaybackSampleRate}, logger)
		if err := player.Start(); err != nil {
			return nil, err
		}
		sink = player
	}

	newSource := opts.NewSource
	if newSource == nil {
		newSource = func(onFrame func(samples []int16)) realtime.AudioSource {
			return audio.NewCapture(audio.CaptureConfig{
				SampleRate:   e.cfg.CaptureSampleRate,
				FrameSamples: e.cfg.CaptureFrameSamples,
			}, onFrame, logger)
		}
	}

	opening := ""
	if p.AgentOpens {
		opening = p.OpeningInstruction
	}
	session := realtime.NewSession(realtime.SessionConfig{
		Instructions:         p.Instructions,
		Voice:                p.Voice,
		OpeningInstruction:   opening,
		TranscriptionModel:   e.cfg.TranscriptionModel,
		VADThreshold:         e.cfg.VADThreshold,
		VADPrefixPaddingMs:   e.cfg.VADPrefixPaddingMs,
		VADSilenceDurationMs: e.cfg.VADSilenceDurationMs,
	}, realtime.Deps{
		Dial:        dial,
		NewSource:   newSource,
		Sink:        sink,
		Logger:      logger,
		Metrics:     metrics,
		OnState:     opts.OnState,
		OnSpeaking:  opts.OnSpeaking,
		OnUtterance: opts.OnUtterance,
	})

	run := &VoiceRun{session: session, metrics: metrics, start: time.Now()}
	metrics.RecordSessionStart(string(ModeVoice))
	if err := session.Connect(ctx); err != nil {
		metrics.RecordSessionEnd()
		return nil, err
	}
	return run, nil
}

// Session exposes the underlying realtime session for state queries and
// typed side-channel messages.
func (r *VoiceRun) Session() *realtime.Session {
	return r.session
}

// Done is closed when the session reaches a terminal state.
func (r *VoiceRun) Done() <-chan struct{} {
	return r.session.Done()
}

// End disconnects and returns the finished transcript. Safe to call after
// the session already terminated on its own.
func (r *VoiceRun) End() Result {
	r.session.Disconnect()
	r.metrics.RecordSessionEnd()
	return Result{
		Transcript: r.session.Transcript(),
		Duration:   time.Since(r.start),
	}
}

// TextRun is one typed practice session.
type TextRun struct {
	session *chat.TextSession
	metrics *observability.Metrics
	start   time.Time
}

// StartText begins a typed session with the given character. No connection
// is held open; each turn is a request.
func (e *Engine) StartText(p persona.Persona) *TextRun {
	sessionID := observability.NewSessionID()
	logger := observability.WithSessionID(sessionID)
	metrics := observability.NewSessionMetrics(sessionID)

	client := chat.NewClient(e.cfg.ChatURL, e.cfg.OpenAIAPIKey, logger)
	session := chat.NewTextSession(client, p, chat.TextSessionConfig{
		Model:       e.cfg.ChatModel,
		MaxTokens:   e.cfg.ChatMaxTokens,
		Temperature: e.cfg.ChatTemperature,
	}, logger, metrics)

	metrics.RecordSessionStart(string(ModeText))
	return &TextRun{session: session, metrics: metrics, start: time.Now()}
}

// Session exposes the underlying text session.
func (r *TextRun) Session() *chat.TextSession {
	return r.session
}

// End returns the finished transcript.
func (r *TextRun) End() Result {
	r.metrics.RecordSessionEnd()
	return Result{
		Transcript: r.session.Transcript(),
		Duration:   time.Since(r.start),
	}
}

// Scorer builds the transcript analyzer used after a session ends.
func (e *Engine) Scorer() *scoring.Client {
	client := chat.NewClient(e.cfg.ChatURL, e.cfg.OpenAIAPIKey, e.logger)
	return scoring.NewClient(client, scoring.ClientConfig{
		Model:       e.cfg.ChatModel,
		Temperature: e.cfg.ScoreTemperature,
	}, e.logger)
}
