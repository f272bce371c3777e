package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pitchcoach/session-engine/internal/audio"
	"github.com/pitchcoach/session-engine/internal/observability"
	"github.com/pitchcoach/session-engine/internal/transcript"
)

// Connection and protocol failures surfaced by the session. The session
// never retries on its own; a failed session is terminal and the caller
// decides whether to start a fresh one.
var (
	ErrConnection = errors.New("realtime connection failed")
	ErrProtocol   = errors.New("realtime protocol error")
	ErrNotIdle    = errors.New("session already started")
	ErrNotActive  = errors.New("session not active")
)

// State is the session lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateActive       State = "active"
	StateDisconnected State = "disconnected"
	StateError        State = "error"
)

// Speaking is a best-effort indicator of who is talking, derived from voice
// activity and audio stream events. Drives UI indicators only; transcript
// correctness never depends on it.
type Speaking string

const (
	SpeakingNone  Speaking = "none"
	SpeakingUser  Speaking = "user"
	SpeakingAgent Speaking = "agent"
)

// SessionConfig describes one voice conversation with the remote model.
type SessionConfig struct {
	// Instructions is the full system prompt defining the character.
	Instructions string
	// Voice selects the remote synthesis voice.
	Voice string
	// OpeningInstruction, when set, has the agent speak first once the
	// session is configured. Empty means the agent waits for the user.
	OpeningInstruction string
	// TranscriptionModel transcribes user speech server-side.
	TranscriptionModel string

	VADThreshold         float64
	VADPrefixPaddingMs   int
	VADSilenceDurationMs int
}

// AudioSource is the microphone side of the session. The concrete capture
// device pushes frames through the callback given to NewSource.
type AudioSource interface {
	Start() error
	Stop()
}

// AudioSink receives the agent's audio stream.
type AudioSink interface {
	Enqueue(pcm []byte)
	Flush()
	Stop()
}

// Deps carries the session's collaborators. Tests substitute a scripted
// Dial and in-memory audio endpoints.
type Deps struct {
	Dial Dialer
	// NewSource builds the microphone source with the session's frame
	// callback already wired in. Nil disables capture (used by tests).
	NewSource func(onFrame func(samples []int16)) AudioSource
	Sink      AudioSink
	Logger    zerolog.Logger
	Metrics   *observability.Metrics
	// OnState is invoked on every state transition, from the goroutine that
	// caused it.
	OnState func(State)
	// OnSpeaking is invoked when the speaking indicator changes.
	OnSpeaking func(Speaking)
	// OnUtterance is invoked for each committed transcript line.
	OnUtterance func(transcript.Utterance)
}

// Session drives one realtime voice conversation: it owns the connection,
// streams microphone audio up, plays agent audio down, and assembles the
// transcript from the event stream.
//
// All inbound events are handled on a single reader goroutine, so event
// handlers never race each other. Outbound writes come from the reader and
// the audio device goroutine and are serialized by writeMu.
type Session struct {
	cfg    SessionConfig
	deps   Deps
	logger zerolog.Logger

	assembler *transcript.Assembler
	source    AudioSource
	sink      AudioSink

	writeMu   sync.Mutex
	transport Transport

	mu       sync.Mutex
	state    State
	speaking Speaking
	err      error
	closed   bool

	done chan struct{}
}

// NewSession constructs an idle session. Nothing connects until Connect.
func NewSession(cfg SessionConfig, deps Deps) *Session {
	s := &Session{
		cfg:      cfg,
		deps:     deps,
		logger:   deps.Logger,
		sink:     deps.Sink,
		state:    StateIdle,
		speaking: SpeakingNone,
		done:     make(chan struct{}),
	}
	s.assembler = transcript.NewAssembler(func(u transcript.Utterance) {
		if deps.Metrics != nil {
			deps.Metrics.RecordUtterance(string(u.Speaker))
		}
		if deps.OnUtterance != nil {
			deps.OnUtterance(u)
		}
	})
	if deps.NewSource != nil {
		s.source = deps.NewSource(s.sendFrame)
	}
	return s
}

// Connect dials the realtime endpoint and starts the event loop. Valid only
// from the idle state. A dial failure is terminal; the session moves to the
// error state and a new Session is needed to try again.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrNotIdle
	}
	s.mu.Unlock()
	s.setState(StateConnecting)

	t, err := s.deps.Dial(ctx)
	if err != nil {
		werr := fmt.Errorf("%w: %v", ErrConnection, err)
		s.logger.Error().Err(err).Msg("Realtime dial failed")
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordError("connection", "realtime")
		}
		s.shutdown(StateError, werr)
		return werr
	}

	s.writeMu.Lock()
	s.transport = t
	s.writeMu.Unlock()

	go s.readLoop()
	return nil
}

// SendText injects a typed user turn into the live conversation and asks for
// a reply.
func (s *Session) SendText(text string) error {
	if s.CurrentState() != StateActive {
		return ErrNotActive
	}
	if err := s.write(ItemCreateEvent{
		Type: EventItemCreate,
		Item: ConversationItem{
			Type:    "message",
			Role:    "user",
			Content: []ContentPart{{Type: "input_text", Text: text}},
		},
	}); err != nil {
		return err
	}
	return s.write(ResponseCreateEvent{Type: EventResponseCreate})
}

// Disconnect ends the session cleanly: the open agent utterance is committed,
// audio devices are released, and the connection is closed. Safe to call from
// any state and safe to call repeatedly.
func (s *Session) Disconnect() {
	s.shutdown(StateDisconnected, nil)
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// CurrentState returns the session state.
func (s *Session) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentSpeaking returns the speaking indicator.
func (s *Session) CurrentSpeaking() Speaking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Err returns the terminal error, if the session ended in the error state.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Transcript returns the committed conversation so far, in order.
func (s *Session) Transcript() []transcript.Utterance {
	return s.assembler.Log()
}

func (s *Session) readLoop() {
	for {
		s.writeMu.Lock()
		t := s.transport
		s.writeMu.Unlock()
		if t == nil {
			return
		}

		data, err := t.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				// Disconnect already ran; the read error is just the socket
				// being torn down.
				return
			}
			s.logger.Warn().Err(err).Msg("Realtime connection closed")
			if s.deps.Metrics != nil {
				s.deps.Metrics.RecordError("connection", "realtime")
			}
			s.shutdown(StateError, fmt.Errorf("%w: %v", ErrConnection, err))
			return
		}

		var ev ServerEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Warn().Err(err).Msg("Unparseable realtime event")
			if s.deps.Metrics != nil {
				s.deps.Metrics.RecordError("protocol", "realtime")
			}
			continue
		}
		s.handleEvent(&ev)
	}
}

// handleEvent demultiplexes one server event. Runs only on the reader
// goroutine.
func (s *Session) handleEvent(ev *ServerEvent) {
	switch ev.Type {
	case EventSessionCreated:
		if err := s.write(s.sessionUpdate()); err != nil {
			s.logger.Error().Err(err).Msg("Failed to send session config")
		}

	case EventSessionUpdated:
		if s.CurrentState() != StateConnecting {
			return
		}
		s.setState(StateActive)
		if s.source != nil {
			if err := s.source.Start(); err != nil {
				s.logger.Error().Err(err).Msg("Microphone start failed")
				s.shutdown(StateError, err)
				return
			}
		}
		if s.cfg.OpeningInstruction != "" {
			// The agent speaks first: the instruction rides in as a user
			// item so the reply comes back through the normal response flow.
			err := s.write(ItemCreateEvent{
				Type: EventItemCreate,
				Item: ConversationItem{
					Type:    "message",
					Role:    "user",
					Content: []ContentPart{{Type: "input_text", Text: s.cfg.OpeningInstruction}},
				},
			})
			if err == nil {
				err = s.write(ResponseCreateEvent{Type: EventResponseCreate})
			}
			if err != nil {
				s.logger.Error().Err(err).Msg("Failed to request opening line")
			}
		}

	case EventSpeechStarted:
		// Barge-in: the user talking over the agent ends the agent's turn.
		// Whatever text accumulated commits now so it lands before the
		// user's transcript, and queued audio is cut.
		s.setSpeaking(SpeakingUser)
		s.assembler.CommitAgent()
		if s.sink != nil {
			s.sink.Flush()
		}

	case EventSpeechStopped:
		s.setSpeaking(SpeakingNone)

	case EventUserTranscriptDone:
		s.assembler.AddUser(ev.Transcript)

	case EventAudioDelta:
		s.setSpeaking(SpeakingAgent)
		s.assembler.MarkAgentPending()
		if s.sink == nil {
			return
		}
		pcm, err := base64.StdEncoding.DecodeString(ev.Delta)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Bad audio delta encoding")
			return
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordAudioBytes("in", int64(len(pcm)))
		}
		s.sink.Enqueue(pcm)

	case EventAudioDone:
		s.setSpeaking(SpeakingNone)

	case EventAudioTranscriptDelta, EventTextDelta:
		s.assembler.AppendAgentDelta(ev.Delta)

	case EventAudioTranscriptDone:
		s.assembler.SetAgentFinal(ev.Transcript)
		s.assembler.CommitAgent()

	case EventTextDone:
		s.assembler.SetAgentFinal(ev.Text)

	case EventResponseDone:
		// Safety net for responses whose transcript-done never arrived.
		s.assembler.CommitAgent()

	case EventError:
		msg := "unknown"
		if ev.Error != nil {
			msg = ev.Error.Message
		}
		s.logger.Error().Str("error", msg).Msg("Realtime server error")
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordError("protocol", "realtime")
		}
		s.shutdown(StateError, fmt.Errorf("%w: %s", ErrProtocol, msg))

	default:
		s.logger.Debug().Str("type", ev.Type).Msg("Ignoring realtime event")
	}
}

// sessionUpdate builds the configuration event sent after session.created.
func (s *Session) sessionUpdate() SessionUpdateEvent {
	params := SessionParams{
		Modalities:        []string{"text", "audio"},
		Instructions:      s.cfg.Instructions,
		Voice:             s.cfg.Voice,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		TurnDetection: &TurnDetection{
			Type:              "server_vad",
			Threshold:         s.cfg.VADThreshold,
			PrefixPaddingMs:   s.cfg.VADPrefixPaddingMs,
			SilenceDurationMs: s.cfg.VADSilenceDurationMs,
		},
	}
	if s.cfg.TranscriptionModel != "" {
		params.InputAudioTranscription = &TranscriptionOpts{Model: s.cfg.TranscriptionModel}
	}
	return SessionUpdateEvent{Type: EventSessionUpdate, Session: params}
}

// sendFrame ships one microphone frame. Runs on the audio device goroutine.
func (s *Session) sendFrame(samples []int16) {
	if s.CurrentState() != StateActive {
		return
	}
	pcm := audio.Int16ToBytes(samples)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordAudioBytes("out", int64(len(pcm)))
	}
	err := s.write(AudioAppendEvent{
		Type:  EventAudioAppend,
		Audio: base64.StdEncoding.EncodeToString(pcm),
	})
	if err != nil {
		// The reader goroutine sees the broken connection and handles
		// teardown; dropping frames here is fine.
		s.logger.Debug().Err(err).Msg("Dropped audio frame")
	}
}

func (s *Session) write(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.transport == nil {
		return ErrNotActive
	}
	return s.transport.WriteJSON(v)
}

// shutdown runs the terminal sequence exactly once: commit the open agent
// utterance, release audio devices, close the connection, land in the final
// state.
func (s *Session) shutdown(state State, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	s.mu.Unlock()

	s.assembler.CommitAgent()
	if s.source != nil {
		s.source.Stop()
	}
	if s.sink != nil {
		s.sink.Stop()
	}

	s.writeMu.Lock()
	if s.transport != nil {
		_ = s.transport.Close()
	}
	s.writeMu.Unlock()

	s.setSpeaking(SpeakingNone)
	s.setState(state)
	close(s.done)
}

func (s *Session) setSpeaking(speaking Speaking) {
	s.mu.Lock()
	if s.speaking == speaking {
		s.mu.Unlock()
		return
	}
	s.speaking = speaking
	s.mu.Unlock()
	if s.deps.OnSpeaking != nil {
		s.deps.OnSpeaking(speaking)
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()
	s.logger.Info().Str("state", string(state)).Msg("Session state changed")
	if s.deps.OnState != nil {
		s.deps.OnState(state)
	}
}
