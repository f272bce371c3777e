package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeTransport is a scripted connection. Tests push server events through
// push and inspect everything the session wrote.
type fakeTransport struct {
	in      chan []byte
	closeCh chan struct{}
	once    sync.Once

	mu     sync.Mutex
	writes []map[string]interface{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:      make(chan []byte),
		closeCh: make(chan struct{}),
	}
}

func (f *fakeTransport) ReadMessage() ([]byte, error) {
	select {
	case msg, ok := <-f.in:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	case <-f.closeCh:
		return nil, errors.New("use of closed connection")
	}
}

func (f *fakeTransport) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	f.mu.Lock()
	f.writes = append(f.writes, m)
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.closeCh) })
	return nil
}

// push delivers one server event. The channel is unbuffered, so by the time
// push returns the handler for the previous event has finished.
func (f *fakeTransport) push(t *testing.T, event map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	select {
	case f.in <- data:
	case <-time.After(time.Second):
		t.Fatal("session stopped reading events")
	}
}

// settle pushes an ignored event so all prior handlers have completed.
func (f *fakeTransport) settle(t *testing.T) {
	f.push(t, map[string]interface{}{"type": "rate_limits.updated"})
}

func (f *fakeTransport) writesByType(eventType string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]interface{}
	for _, w := range f.writes {
		if w["type"] == eventType {
			out = append(out, w)
		}
	}
	return out
}

type fakeSource struct {
	mu       sync.Mutex
	started  int
	stopped  int
	startErr error
}

func (f *fakeSource) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *fakeSource) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

type fakeSink struct {
	mu      sync.Mutex
	chunks  [][]byte
	flushed int
	stopped int
}

func (f *fakeSink) Enqueue(pcm []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chunk := make([]byte, len(pcm))
	copy(chunk, pcm)
	f.chunks = append(f.chunks, chunk)
}

func (f *fakeSink) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed++
}

func (f *fakeSink) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

type sessionFixture struct {
	session   *Session
	transport *fakeTransport
	source    *fakeSource
	sink      *fakeSink
	states    chan State
	onFrame   func(samples []int16)
}

func newFixture(cfg SessionConfig) *sessionFixture {
	fx := &sessionFixture{
		transport: newFakeTransport(),
		source:    &fakeSource{},
		sink:      &fakeSink{},
		states:    make(chan State, 16),
	}
	fx.session = NewSession(cfg, Deps{
		Dial: func(ctx context.Context) (Transport, error) {
			return fx.transport, nil
		},
		NewSource: func(onFrame func(samples []int16)) AudioSource {
			fx.onFrame = onFrame
			return fx.source
		},
		Sink:    fx.sink,
		Logger:  zerolog.Nop(),
		OnState: func(s State) { fx.states <- s },
	})
	return fx
}

func (fx *sessionFixture) waitState(t *testing.T, want State) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case s := <-fx.states:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for state %s, current %s", want, fx.session.CurrentState())
		}
	}
}

func (fx *sessionFixture) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-fx.session.Done():
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for session to finish")
	}
}

// activate runs the handshake through to the active state.
func (fx *sessionFixture) activate(t *testing.T) {
	t.Helper()
	if err := fx.session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	fx.transport.push(t, map[string]interface{}{"type": EventSessionCreated})
	fx.transport.push(t, map[string]interface{}{"type": EventSessionUpdated})
	fx.waitState(t, StateActive)
}

func TestSession_HandshakeConfiguresAndActivates(t *testing.T) {
	fx := newFixture(SessionConfig{
		Instructions:         "You are Sam Morrison.",
		Voice:                "sage",
		OpeningInstruction:   "Answer the phone.",
		TranscriptionModel:   "whisper-1",
		VADThreshold:         0.5,
		VADPrefixPaddingMs:   300,
		VADSilenceDurationMs: 700,
	})
	fx.activate(t)
	fx.transport.settle(t)

	updates := fx.transport.writesByType(EventSessionUpdate)
	if len(updates) != 1 {
		t.Fatalf("Expected 1 session.update, got %d", len(updates))
	}
	sess := updates[0]["session"].(map[string]interface{})
	if sess["voice"] != "sage" {
		t.Errorf("Expected voice sage, got %v", sess["voice"])
	}
	if sess["input_audio_format"] != "pcm16" || sess["output_audio_format"] != "pcm16" {
		t.Errorf("Expected pcm16 formats, got %v / %v", sess["input_audio_format"], sess["output_audio_format"])
	}
	td := sess["turn_detection"].(map[string]interface{})
	if td["type"] != "server_vad" {
		t.Errorf("Expected server_vad turn detection, got %v", td["type"])
	}

	fx.source.mu.Lock()
	started := fx.source.started
	fx.source.mu.Unlock()
	if started != 1 {
		t.Errorf("Expected capture started once, got %d", started)
	}

	items := fx.transport.writesByType(EventItemCreate)
	if len(items) != 1 {
		t.Fatalf("Expected 1 opening item.create, got %d", len(items))
	}
	item := items[0]["item"].(map[string]interface{})
	content := item["content"].([]interface{})[0].(map[string]interface{})
	if content["text"] != "Answer the phone." {
		t.Errorf("Expected opening instruction, got %v", content["text"])
	}
	if opens := fx.transport.writesByType(EventResponseCreate); len(opens) != 1 {
		t.Fatalf("Expected 1 opening response.create, got %d", len(opens))
	}
}

func TestSession_NoOpeningWhenUserSpeaksFirst(t *testing.T) {
	fx := newFixture(SessionConfig{Instructions: "prompt"})
	fx.activate(t)
	fx.transport.settle(t)

	if opens := fx.transport.writesByType(EventResponseCreate); len(opens) != 0 {
		t.Errorf("Expected no unprompted response.create, got %d", len(opens))
	}
}

func TestSession_ConnectDialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	s := NewSession(SessionConfig{}, Deps{
		Dial:   func(ctx context.Context) (Transport, error) { return nil, dialErr },
		Logger: zerolog.Nop(),
	})

	err := s.Connect(context.Background())
	if !errors.Is(err, ErrConnection) {
		t.Errorf("Expected ErrConnection, got %v", err)
	}
	if s.CurrentState() != StateError {
		t.Errorf("Expected error state, got %s", s.CurrentState())
	}
}

func TestSession_ConnectOnlyFromIdle(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	if err := fx.session.Connect(context.Background()); !errors.Is(err, ErrNotIdle) {
		t.Errorf("Expected ErrNotIdle on second Connect, got %v", err)
	}
}

func TestSession_UserTranscriptCommitted(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	fx.transport.push(t, map[string]interface{}{
		"type":       EventUserTranscriptDone,
		"transcript": "hi, this is a quick call",
	})
	fx.transport.settle(t)

	log := fx.session.Transcript()
	if len(log) != 1 {
		t.Fatalf("Expected 1 utterance, got %d", len(log))
	}
	if string(log[0].Speaker) != "user" || log[0].Text != "hi, this is a quick call" {
		t.Errorf("Unexpected utterance %+v", log[0])
	}
}

func TestSession_AgentTurnLifecycle(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	pcm := []byte{1, 0, 2, 0}
	fx.transport.push(t, map[string]interface{}{
		"type":  EventAudioDelta,
		"delta": base64.StdEncoding.EncodeToString(pcm),
	})
	fx.transport.push(t, map[string]interface{}{"type": EventAudioTranscriptDelta, "delta": "Yeah? "})
	fx.transport.push(t, map[string]interface{}{"type": EventAudioTranscriptDelta, "delta": "Who's this"})
	fx.transport.push(t, map[string]interface{}{
		"type":       EventAudioTranscriptDone,
		"transcript": "Yeah? Who's this?",
	})
	fx.transport.push(t, map[string]interface{}{"type": EventResponseDone})
	fx.transport.settle(t)

	fx.sink.mu.Lock()
	chunks := len(fx.sink.chunks)
	fx.sink.mu.Unlock()
	if chunks != 1 {
		t.Fatalf("Expected 1 audio chunk enqueued, got %d", chunks)
	}

	// Transcript-done committed the turn; the trailing response.done must
	// not duplicate it.
	log := fx.session.Transcript()
	if len(log) != 1 {
		t.Fatalf("Expected 1 utterance, got %d", len(log))
	}
	if log[0].Text != "Yeah? Who's this?" {
		t.Errorf("Expected authoritative transcript, got '%s'", log[0].Text)
	}
}

func TestSession_BargeInCommitsAndFlushes(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	fx.transport.push(t, map[string]interface{}{
		"type":  EventAudioDelta,
		"delta": base64.StdEncoding.EncodeToString([]byte{1, 0}),
	})
	fx.transport.push(t, map[string]interface{}{"type": EventAudioTranscriptDelta, "delta": "as I was say"})
	fx.transport.push(t, map[string]interface{}{"type": EventSpeechStarted})
	fx.transport.push(t, map[string]interface{}{
		"type":       EventUserTranscriptDone,
		"transcript": "hold on",
	})
	fx.transport.settle(t)

	fx.sink.mu.Lock()
	flushed := fx.sink.flushed
	fx.sink.mu.Unlock()
	if flushed != 1 {
		t.Errorf("Expected playback flushed on barge-in, got %d", flushed)
	}

	log := fx.session.Transcript()
	if len(log) != 2 {
		t.Fatalf("Expected 2 utterances, got %d", len(log))
	}
	if string(log[0].Speaker) != "agent" || log[0].Text != "as I was say" {
		t.Errorf("Expected interrupted agent turn first, got %+v", log[0])
	}
	if string(log[1].Speaker) != "user" || log[1].Text != "hold on" {
		t.Errorf("Expected user turn second, got %+v", log[1])
	}
}

func TestSession_TextDeltasBackUpAudioTranscript(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	fx.transport.push(t, map[string]interface{}{"type": EventAudioDelta, "delta": ""})
	fx.transport.push(t, map[string]interface{}{"type": EventTextDelta, "delta": "partial "})
	fx.transport.push(t, map[string]interface{}{"type": EventTextDelta, "delta": "reply"})
	fx.transport.push(t, map[string]interface{}{"type": EventTextDone, "text": "partial reply"})
	fx.transport.push(t, map[string]interface{}{"type": EventResponseDone})
	fx.transport.settle(t)

	log := fx.session.Transcript()
	if len(log) != 1 {
		t.Fatalf("Expected 1 utterance, got %d", len(log))
	}
	if log[0].Text != "partial reply" {
		t.Errorf("Expected text-channel transcript, got '%s'", log[0].Text)
	}
}

func TestSession_UnexpectedCloseFlushesPending(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	fx.transport.push(t, map[string]interface{}{
		"type":  EventAudioDelta,
		"delta": base64.StdEncoding.EncodeToString([]byte{1, 0}),
	})
	fx.transport.push(t, map[string]interface{}{"type": EventAudioTranscriptDelta, "delta": "cut off mid"})
	close(fx.transport.in)
	fx.waitDone(t)

	if fx.session.CurrentState() != StateError {
		t.Errorf("Expected error state after unexpected close, got %s", fx.session.CurrentState())
	}
	if !errors.Is(fx.session.Err(), ErrConnection) {
		t.Errorf("Expected ErrConnection, got %v", fx.session.Err())
	}

	log := fx.session.Transcript()
	if len(log) != 1 || log[0].Text != "cut off mid" {
		t.Errorf("Expected pending agent text flushed on close, got %+v", log)
	}
}

func TestSession_DisconnectIdempotent(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	fx.session.Disconnect()
	fx.session.Disconnect()
	fx.waitDone(t)

	if fx.session.CurrentState() != StateDisconnected {
		t.Errorf("Expected disconnected state, got %s", fx.session.CurrentState())
	}
	fx.source.mu.Lock()
	stopped := fx.source.stopped
	fx.source.mu.Unlock()
	if stopped != 1 {
		t.Errorf("Expected capture stopped once, got %d", stopped)
	}
	fx.sink.mu.Lock()
	sinkStopped := fx.sink.stopped
	fx.sink.mu.Unlock()
	if sinkStopped != 1 {
		t.Errorf("Expected playback stopped once, got %d", sinkStopped)
	}
}

func TestSession_DisconnectBeforeConnect(t *testing.T) {
	fx := newFixture(SessionConfig{})

	fx.session.Disconnect()
	fx.waitDone(t)
	if fx.session.CurrentState() != StateDisconnected {
		t.Errorf("Expected disconnected state, got %s", fx.session.CurrentState())
	}
}

func TestSession_SpeakingIndicator(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	if fx.session.CurrentSpeaking() != SpeakingNone {
		t.Errorf("Expected no speaker initially, got %s", fx.session.CurrentSpeaking())
	}

	fx.transport.push(t, map[string]interface{}{"type": EventAudioDelta, "delta": ""})
	fx.transport.settle(t)
	if fx.session.CurrentSpeaking() != SpeakingAgent {
		t.Errorf("Expected agent speaking during audio stream, got %s", fx.session.CurrentSpeaking())
	}

	fx.transport.push(t, map[string]interface{}{"type": EventAudioDone})
	fx.transport.push(t, map[string]interface{}{"type": EventSpeechStarted})
	fx.transport.settle(t)
	if fx.session.CurrentSpeaking() != SpeakingUser {
		t.Errorf("Expected user speaking after speech start, got %s", fx.session.CurrentSpeaking())
	}

	fx.transport.push(t, map[string]interface{}{"type": EventSpeechStopped})
	fx.transport.settle(t)
	if fx.session.CurrentSpeaking() != SpeakingNone {
		t.Errorf("Expected no speaker after speech stop, got %s", fx.session.CurrentSpeaking())
	}
}

func TestSession_ErrorEventTerminates(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	fx.transport.push(t, map[string]interface{}{
		"type":  EventError,
		"error": map[string]interface{}{"type": "invalid_request_error", "message": "bad event"},
	})
	fx.waitDone(t)

	if fx.session.CurrentState() != StateError {
		t.Errorf("Expected error state, got %s", fx.session.CurrentState())
	}
	if !errors.Is(fx.session.Err(), ErrProtocol) {
		t.Errorf("Expected ErrProtocol, got %v", fx.session.Err())
	}
}

func TestSession_MicrophoneFramesStreamUp(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	fx.onFrame([]int16{1, 2, 3})
	fx.transport.settle(t)

	appends := fx.transport.writesByType(EventAudioAppend)
	if len(appends) != 1 {
		t.Fatalf("Expected 1 audio append, got %d", len(appends))
	}
	decoded, err := base64.StdEncoding.DecodeString(appends[0]["audio"].(string))
	if err != nil {
		t.Fatalf("Audio payload not base64: %v", err)
	}
	if len(decoded) != 6 {
		t.Errorf("Expected 6 bytes of PCM, got %d", len(decoded))
	}
}

func TestSession_FramesDroppedBeforeActive(t *testing.T) {
	fx := newFixture(SessionConfig{})
	if err := fx.session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	fx.onFrame([]int16{1, 2})
	fx.transport.push(t, map[string]interface{}{"type": EventSessionCreated})
	fx.transport.settle(t)

	if appends := fx.transport.writesByType(EventAudioAppend); len(appends) != 0 {
		t.Errorf("Expected no audio appends before active, got %d", len(appends))
	}
}

func TestSession_SendTextRequiresActive(t *testing.T) {
	fx := newFixture(SessionConfig{})
	if err := fx.session.SendText("hello"); !errors.Is(err, ErrNotActive) {
		t.Errorf("Expected ErrNotActive, got %v", err)
	}
}

func TestSession_SendText(t *testing.T) {
	fx := newFixture(SessionConfig{})
	fx.activate(t)

	if err := fx.session.SendText("typed message"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	items := fx.transport.writesByType(EventItemCreate)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item.create, got %d", len(items))
	}
	item := items[0]["item"].(map[string]interface{})
	if item["role"] != "user" {
		t.Errorf("Expected user role, got %v", item["role"])
	}
	content := item["content"].([]interface{})[0].(map[string]interface{})
	if content["text"] != "typed message" {
		t.Errorf("Expected typed text, got %v", content["text"])
	}
	if resps := fx.transport.writesByType(EventResponseCreate); len(resps) != 1 {
		t.Errorf("Expected response.create after item, got %d", len(resps))
	}
}

func TestSession_RandomEventOrderNeverPanics(t *testing.T) {
	events := []map[string]interface{}{
		{"type": EventAudioDelta, "delta": base64.StdEncoding.EncodeToString([]byte{0, 0})},
		{"type": EventAudioTranscriptDelta, "delta": "x"},
		{"type": EventAudioTranscriptDone, "transcript": "x"},
		{"type": EventResponseDone},
		{"type": EventSpeechStarted},
		{"type": EventSpeechStopped},
		{"type": EventUserTranscriptDone, "transcript": "y"},
		{"type": EventAudioDone},
		{"type": "unknown.future.event"},
	}

	for shift := 0; shift < len(events); shift++ {
		fx := newFixture(SessionConfig{})
		fx.activate(t)
		for i := range events {
			fx.transport.push(t, events[(i+shift)%len(events)])
		}
		fx.session.Disconnect()
		fx.waitDone(t)

		for i, u := range fx.session.Transcript() {
			if u.Text == "" {
				t.Fatalf("shift %d: empty utterance at %d", shift, i)
			}
		}
	}
}
