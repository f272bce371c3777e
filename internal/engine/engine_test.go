package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pitchcoach/session-engine/internal/config"
	"github.com/pitchcoach/session-engine/internal/persona"
	"github.com/pitchcoach/session-engine/internal/realtime"
	"github.com/pitchcoach/session-engine/internal/scoring"
	"github.com/pitchcoach/session-engine/internal/transcript"
)

func testConfig(chatURL string) *config.Config {
	return &config.Config{
		OpenAIAPIKey:        "test-key",
		RealtimeURL:         "wss://example.invalid/v1/realtime",
		RealtimeModel:       "gpt-4o-realtime-preview-2024-12-17",
		TranscriptionModel:  "whisper-1",
		ChatURL:             chatURL,
		ChatModel:           "gpt-4o",
		ChatTemperature:     0.9,
		ChatMaxTokens:       500,
		ScoreTemperature:    0.7,
		CaptureSampleRate:   24000,
		PlaybackSampleRate:  24000,
		CaptureFrameSamples: 2048,
		VADThreshold:        0.5,
	}
}

type stubTransport struct {
	in      chan []byte
	closeCh chan struct{}
	once    sync.Once
}

func newStubTransport() *stubTransport {
	return &stubTransport{in: make(chan []byte), closeCh: make(chan struct{})}
}

func (s *stubTransport) ReadMessage() ([]byte, error) {
	select {
	case msg, ok := <-s.in:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	case <-s.closeCh:
		return nil, errors.New("closed")
	}
}

func (s *stubTransport) WriteJSON(v interface{}) error { return nil }

func (s *stubTransport) Close() error {
	s.once.Do(func() { close(s.closeCh) })
	return nil
}

func (s *stubTransport) push(t *testing.T, event map[string]interface{}) {
	t.Helper()
	data, _ := json.Marshal(event)
	select {
	case s.in <- data:
	case <-time.After(time.Second):
		t.Fatal("session stopped reading")
	}
}

type noopSource struct{}

func (noopSource) Start() error { return nil }
func (noopSource) Stop()        {}

type noopSink struct{}

func (noopSink) Enqueue([]byte) {}
func (noopSink) Flush()         {}
func (noopSink) Stop()          {}

func TestStartVoice(t *testing.T) {
	e := New(testConfig("http://example.invalid"))
	p, err := persona.Sales(persona.CallCold, 3)
	if err != nil {
		t.Fatalf("Persona build failed: %v", err)
	}

	st := newStubTransport()
	states := make(chan realtime.State, 8)
	run, err := e.StartVoice(context.Background(), p, VoiceOptions{
		OnState: func(s realtime.State) { states <- s },
		Dial: func(ctx context.Context) (realtime.Transport, error) {
			return st, nil
		},
		NewSource: func(func(samples []int16)) realtime.AudioSource { return noopSource{} },
		Sink:      noopSink{},
	})
	if err != nil {
		t.Fatalf("StartVoice failed: %v", err)
	}

	st.push(t, map[string]interface{}{"type": "session.created"})
	st.push(t, map[string]interface{}{"type": "session.updated"})

	deadline := time.After(time.Second)
	for run.Session().CurrentState() != realtime.StateActive {
		select {
		case <-states:
		case <-deadline:
			t.Fatalf("Timed out waiting for active state, got %s", run.Session().CurrentState())
		}
	}

	st.push(t, map[string]interface{}{
		"type":       "conversation.item.input_audio_transcription.completed",
		"transcript": "hello there",
	})
	st.push(t, map[string]interface{}{"type": "rate_limits.updated"})

	result := run.End()
	if len(result.Transcript) != 1 || result.Transcript[0].Text != "hello there" {
		t.Errorf("Expected transcript carried into result, got %+v", result.Transcript)
	}
	if result.Duration <= 0 {
		t.Errorf("Expected positive duration, got %v", result.Duration)
	}
}

func TestStartVoice_DialFailure(t *testing.T) {
	e := New(testConfig("http://example.invalid"))
	p, _ := persona.Sales(persona.CallDiscovery, 3)

	_, err := e.StartVoice(context.Background(), p, VoiceOptions{
		Dial: func(ctx context.Context) (realtime.Transport, error) {
			return nil, errors.New("refused")
		},
		NewSource: func(func(samples []int16)) realtime.AudioSource { return noopSource{} },
		Sink:      noopSink{},
	})
	if !errors.Is(err, realtime.ErrConnection) {
		t.Errorf("Expected ErrConnection, got %v", err)
	}
}

func TestStartText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Yeah? Who's this?"}},
			},
		})
	}))
	defer srv.Close()

	e := New(testConfig(srv.URL))
	p, err := persona.Sales(persona.CallCold, 2)
	if err != nil {
		t.Fatalf("Persona build failed: %v", err)
	}

	run := e.StartText(p)
	opening, err := run.Session().Open(context.Background())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opening != "Yeah? Who's this?" {
		t.Errorf("Expected opening line, got %q", opening)
	}
	if _, err := run.Session().Send(context.Background(), "hey Sam, quick question for you"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	result := run.End()
	if len(result.Transcript) != 3 {
		t.Fatalf("Expected 3 utterances, got %d", len(result.Transcript))
	}
	if result.Transcript[0].Speaker != transcript.SpeakerAgent {
		t.Errorf("Expected agent opening first, got %+v", result.Transcript[0])
	}
}

func TestScorer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{
					"role":    "assistant",
					"content": `{"scores":{"discovery":10,"painMetrics":10,"objectionHandling":10,"conversationControl":10}}`,
				}},
			},
		})
	}))
	defer srv.Close()

	e := New(testConfig(srv.URL))
	report, err := e.Scorer().Analyze(context.Background(), scoring.SalesRubric(), []transcript.Utterance{
		{Speaker: transcript.SpeakerUser, Text: "hi"},
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.Total() != 40 {
		t.Errorf("Expected total 40, got %d", report.Total())
	}
}
