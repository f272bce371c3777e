package transcript

import (
	"strings"
	"sync"
)

// Speaker identifies who produced an utterance.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerAgent Speaker = "agent"
)

// Utterance is one committed, attributed line of conversation. Immutable
// once appended; append order is conversation order.
type Utterance struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Assembler reconstructs an ordered transcript from asynchronous, interleaved
// transcript events.
//
// User speech arrives whole (the remote transcribes complete utterances), so
// user turns are appended directly. Agent speech arrives as a text stream
// running alongside the audio stream, with several possible end-of-turn
// signals that are not guaranteed to all fire; the accumulated text is held
// as a single pending utterance until one of the commit triggers lands.
// Committing is idempotent: an empty pending utterance commits to nothing.
//
// All event-driven mutation happens on the session's reader goroutine; the
// mutex only guards against the owner reading the log from another goroutine
// at session end.
type Assembler struct {
	mu      sync.Mutex
	log     []Utterance
	pending strings.Builder
	// pendingFlush marks the open agent turn as committable. It is set when
	// agent audio starts flowing and is what makes barge-in commit the turn.
	pendingFlush bool

	onCommit func(Utterance)
}

// NewAssembler constructs an empty Assembler. onCommit, if non-nil, is
// invoked after each committed utterance (used for metrics and live UI).
func NewAssembler(onCommit func(Utterance)) *Assembler {
	return &Assembler{onCommit: onCommit}
}

// AddUser appends a completed user utterance. Blank transcriptions are
// dropped so the log never contains empty turns.
func (a *Assembler) AddUser(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	a.mu.Lock()
	a.log = append(a.log, Utterance{Speaker: SpeakerUser, Text: text})
	a.mu.Unlock()
	if a.onCommit != nil {
		a.onCommit(Utterance{Speaker: SpeakerUser, Text: text})
	}
}

// AppendAgentDelta accumulates a transcript fragment into the open agent
// utterance.
func (a *Assembler) AppendAgentDelta(delta string) {
	if delta == "" {
		return
	}
	a.mu.Lock()
	a.pending.WriteString(delta)
	a.mu.Unlock()
}

// MarkAgentPending flags the open agent utterance as ready to commit. Called
// when agent audio starts flowing: from then on a barge-in or turn-end signal
// commits whatever text has accumulated.
func (a *Assembler) MarkAgentPending() {
	a.mu.Lock()
	a.pendingFlush = true
	a.mu.Unlock()
}

// AgentPending reports whether an agent utterance is open and ready to
// commit.
func (a *Assembler) AgentPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingFlush
}

// SetAgentFinal replaces the accumulated fragments with the authoritative
// full text delivered by the finalize event.
func (a *Assembler) SetAgentFinal(text string) {
	if text == "" {
		return
	}
	a.mu.Lock()
	a.pending.Reset()
	a.pending.WriteString(text)
	a.mu.Unlock()
}

// CommitAgent commits the pending agent utterance to the log and clears the
// pending state. Committing with nothing accumulated is a no-op, which makes
// multiple commit triggers (finalized, response-completed, barge-in, close)
// safe to fire for the same turn. Returns true if an utterance was appended.
func (a *Assembler) CommitAgent() bool {
	a.mu.Lock()
	text := strings.TrimSpace(a.pending.String())
	a.pending.Reset()
	a.pendingFlush = false
	if text == "" {
		a.mu.Unlock()
		return false
	}
	a.log = append(a.log, Utterance{Speaker: SpeakerAgent, Text: text})
	a.mu.Unlock()
	if a.onCommit != nil {
		a.onCommit(Utterance{Speaker: SpeakerAgent, Text: text})
	}
	return true
}

// Log returns a copy of the committed transcript in conversation order.
func (a *Assembler) Log() []Utterance {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Utterance, len(a.log))
	copy(out, a.log)
	return out
}

// Len returns the number of committed utterances.
func (a *Assembler) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.log)
}
