package realtime

// Wire event names. Client events flow out, server events flow in; every
// message is a JSON object with a "type" discriminator.
const (
	// Client events
	EventSessionUpdate  = "session.update"
	EventAudioAppend    = "input_audio_buffer.append"
	EventItemCreate     = "conversation.item.create"
	EventResponseCreate = "response.create"

	// Server events
	EventSessionCreated       = "session.created"
	EventSessionUpdated       = "session.updated"
	EventSpeechStarted        = "input_audio_buffer.speech_started"
	EventSpeechStopped        = "input_audio_buffer.speech_stopped"
	EventUserTranscriptDone   = "conversation.item.input_audio_transcription.completed"
	EventAudioDelta           = "response.audio.delta"
	EventAudioDone            = "response.audio.done"
	EventAudioTranscriptDelta = "response.audio_transcript.delta"
	EventAudioTranscriptDone  = "response.audio_transcript.done"
	EventTextDelta            = "response.text.delta"
	EventTextDone             = "response.text.done"
	EventResponseDone         = "response.done"
	EventError                = "error"
)

// SessionUpdateEvent configures the remote session after session.created.
type SessionUpdateEvent struct {
	Type    string        `json:"type"`
	Session SessionParams `json:"session"`
}

// SessionParams is the session configuration payload.
type SessionParams struct {
	Modalities              []string           `json:"modalities"`
	Instructions            string             `json:"instructions"`
	Voice                   string             `json:"voice"`
	InputAudioFormat        string             `json:"input_audio_format"`
	OutputAudioFormat       string             `json:"output_audio_format"`
	InputAudioTranscription *TranscriptionOpts `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection     `json:"turn_detection,omitempty"`
}

// TranscriptionOpts selects the model that transcribes user speech.
type TranscriptionOpts struct {
	Model string `json:"model"`
}

// TurnDetection configures server-side voice activity detection. The server
// decides when a user turn ends and triggers the reply on its own.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

// AudioAppendEvent carries one frame of base64 PCM16 microphone audio.
type AudioAppendEvent struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

// ItemCreateEvent injects a conversation item, used for text turns.
type ItemCreateEvent struct {
	Type string           `json:"type"`
	Item ConversationItem `json:"item"`
}

// ConversationItem is a single message in the remote conversation.
type ConversationItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is one piece of an item's content.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ResponseCreateEvent asks the server to generate a reply. Response-level
// instructions, when set, steer just this one reply.
type ResponseCreateEvent struct {
	Type     string          `json:"type"`
	Response *ResponseParams `json:"response,omitempty"`
}

// ResponseParams overrides generation parameters for a single response.
type ResponseParams struct {
	Modalities   []string `json:"modalities,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
}

// ServerEvent is the inbound envelope. Only the fields the session consumes
// are mapped; events carry a superset and unknown fields are ignored.
type ServerEvent struct {
	Type       string       `json:"type"`
	Delta      string       `json:"delta,omitempty"`
	Transcript string       `json:"transcript,omitempty"`
	Text       string       `json:"text,omitempty"`
	Error      *ServerError `json:"error,omitempty"`
}

// ServerError is the payload of an error event.
type ServerError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
