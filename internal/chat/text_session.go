package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pitchcoach/session-engine/internal/observability"
	"github.com/pitchcoach/session-engine/internal/persona"
	"github.com/pitchcoach/session-engine/internal/transcript"
)

// ErrReplyInFlight is returned when Send is called while a previous reply is
// still being generated. Turns alternate strictly; the caller waits.
var ErrReplyInFlight = errors.New("a reply is already in flight")

// FallbackReply stands in for the agent when a completion fails, keeping the
// conversation alive rather than ending the practice session.
const FallbackReply = "..."

// TextSessionConfig tunes the conversation model.
type TextSessionConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// TextSession runs a typed practice conversation: the user sends a line, the
// character replies, strictly alternating. A failed completion produces the
// fallback reply instead of ending the session.
type TextSession struct {
	client  *Client
	p       persona.Persona
	cfg     TextSessionConfig
	logger  zerolog.Logger
	metrics *observability.Metrics

	mu       sync.Mutex
	inFlight bool
	history  []Message
}

// NewTextSession starts an empty conversation with the given character.
func NewTextSession(client *Client, p persona.Persona, cfg TextSessionConfig, logger zerolog.Logger, metrics *observability.Metrics) *TextSession {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.9
	}
	return &TextSession{
		client:  client,
		p:       p,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Open produces the character's first line when the scenario has the agent
// speak first (a ringing phone, an interviewer greeting). Returns "" for
// scenarios the user opens. Call once, before any Send.
func (s *TextSession) Open(ctx context.Context) (string, error) {
	if !s.p.AgentOpens {
		return "", nil
	}
	s.mu.Lock()
	if s.inFlight || len(s.history) > 0 {
		s.mu.Unlock()
		return "", ErrReplyInFlight
	}
	s.inFlight = true
	s.mu.Unlock()
	defer s.clearInFlight()

	// The stage direction is a one-off steering message, not part of the
	// conversation, so it never enters the history.
	msgs := s.buildMessages(Message{Role: "user", Content: s.p.TextOpeningInstruction})
	reply, err := s.complete(ctx, msgs)

	s.mu.Lock()
	s.history = append(s.history, Message{Role: "assistant", Content: reply})
	s.mu.Unlock()
	return reply, err
}

// Send records the user's line and returns the character's reply. If the
// completion fails the fallback reply is recorded and returned along with
// the error; the session stays usable.
func (s *TextSession) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return "", ErrReplyInFlight
	}
	s.inFlight = true
	s.history = append(s.history, Message{Role: "user", Content: text})
	s.mu.Unlock()
	defer s.clearInFlight()

	var extra []Message
	if len(strings.Fields(text)) <= 5 {
		// Short user messages tempt the model into guiding questions.
		extra = append(extra, Message{Role: "system", Content: persona.ShortReplyReminder})
	}
	reply, err := s.complete(ctx, s.buildMessages(extra...))

	s.mu.Lock()
	s.history = append(s.history, Message{Role: "assistant", Content: reply})
	s.mu.Unlock()
	return reply, err
}

// Transcript returns the conversation so far as attributed utterances.
func (s *TextSession) Transcript() []transcript.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transcript.Utterance, 0, len(s.history))
	for _, m := range s.history {
		speaker := transcript.SpeakerAgent
		if m.Role == "user" {
			speaker = transcript.SpeakerUser
		}
		out = append(out, transcript.Utterance{Speaker: speaker, Text: m.Content})
	}
	return out
}

func (s *TextSession) clearInFlight() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// buildMessages assembles the request: system prompt, history, then any
// one-off steering messages.
func (s *TextSession) buildMessages(extra ...Message) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]Message, 0, len(s.history)+len(extra)+1)
	msgs = append(msgs, Message{
		Role:    "system",
		Content: s.p.Instructions + persona.TextModeInstruction,
	})
	msgs = append(msgs, s.history...)
	msgs = append(msgs, extra...)
	return msgs
}

func (s *TextSession) complete(ctx context.Context, msgs []Message) (string, error) {
	if s.metrics != nil {
		s.metrics.RecordChatStart()
	}
	reply, err := s.client.Complete(ctx, Request{
		Model:       s.cfg.Model,
		Messages:    msgs,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if s.metrics != nil {
		s.metrics.RecordChatEnd(err == nil)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Completion failed, using fallback reply")
		return FallbackReply, err
	}
	return reply, nil
}
