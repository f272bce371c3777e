// Package persona builds the system prompts, voices, and opening moves for
// the characters the user practices against.
package persona

import (
	"fmt"
	"strings"
)

// CallType selects the sales scenario.
type CallType string

const (
	// CallCold is an unscheduled call; the prospect answers first and the
	// user has seconds to earn attention.
	CallCold CallType = "cold"
	// CallDiscovery is a scheduled meeting; the user booked it and speaks
	// first.
	CallDiscovery CallType = "discovery"
)

// Temperament sets how receptive the sales prospect is, 1 (hostile) to 5
// (eager).
type Temperament int

// Style sets how the interviewer runs the conversation, 1 (challenging) to 5
// (friendly).
type Style int

// Persona is a fully assembled character: the prompt that defines it, the
// synthesis voice it speaks with, and how the conversation opens.
type Persona struct {
	// Name and Title identify the character for display and transcripts.
	Name  string
	Title string

	// Instructions is the system prompt for both voice and text sessions.
	Instructions string

	// Voice is the realtime synthesis voice.
	Voice string

	// AgentOpens reports whether the character speaks first.
	AgentOpens bool

	// OpeningInstruction is the bracketed stage direction that produces the
	// character's first line in voice sessions. Empty unless AgentOpens.
	OpeningInstruction string

	// TextOpeningInstruction is the equivalent for text sessions, where
	// replies can run a little longer.
	TextOpeningInstruction string
}

var temperamentNames = map[Temperament]string{
	1: "Hostile",
	2: "Skeptical",
	3: "Neutral",
	4: "Warm",
	5: "Eager",
}

var styleNames = map[Style]string{
	1: "Challenging",
	2: "Probing",
	3: "Balanced",
	4: "Conversational",
	5: "Friendly",
}

// TemperamentName returns the display label for a temperament level.
func TemperamentName(t Temperament) string {
	return temperamentNames[t]
}

// StyleName returns the display label for an interviewer style level.
func StyleName(s Style) string {
	return styleNames[s]
}

// Voice mapping: guarded characters get the harder-edged voice, receptive
// ones the warmer voice.
func voiceForLevel(level int) string {
	switch {
	case level <= 2:
		return "ash"
	case level >= 4:
		return "coral"
	default:
		return "sage"
	}
}

// Sales builds the sales prospect persona, Sam Morrison of TechFlow, for the
// given call type and temperament.
func Sales(callType CallType, temperament Temperament) (Persona, error) {
	if temperament < 1 || temperament > 5 {
		return Persona{}, fmt.Errorf("temperament must be 1-5, got %d", temperament)
	}
	var callContext, callLabel string
	switch callType {
	case CallCold:
		callContext = coldCallContext
		callLabel = "cold call"
	case CallDiscovery:
		callContext = discoveryCallContext
		callLabel = "discovery call"
	default:
		return Persona{}, fmt.Errorf("unknown call type %q", callType)
	}

	instructions := strings.NewReplacer(
		"{CALL_TYPE}", callLabel,
		"{CALL_TYPE_CONTEXT}", callContext,
		"{TEMPERAMENT_CONTEXT}", temperamentContexts[temperament],
	).Replace(salesBasePrompt)

	p := Persona{
		Name:         "Sam Morrison",
		Title:        "VP of Sales, TechFlow",
		Instructions: instructions,
		Voice:        voiceForLevel(int(temperament)),
	}
	if callType == CallCold {
		p.AgentOpens = true
		p.OpeningInstruction = "[Phone rings. Answer the phone confused/annoyed. Say something like 'Yeah? Who's this?' Keep it under 5 words.]"
		p.TextOpeningInstruction = "[The phone is ringing. Answer it naturally - confused or slightly annoyed that someone is calling. Keep it short, like 'Yeah?' or 'This is Sam, who's this?']"
	}
	return p, nil
}

// InterviewConfig describes the interview the user is practicing for. Only
// CompanyName, RoleName, InterviewerName, and InterviewerTitle are required.
type InterviewConfig struct {
	CompanyName        string
	RoleName           string
	InterviewerName    string
	InterviewerTitle   string
	JobDescription     string
	CompanyContext     string
	InterviewerContext string
}

// Interview builds a hiring manager persona from the user's interview
// details and the chosen interviewer style.
func Interview(cfg InterviewConfig, style Style) (Persona, error) {
	if style < 1 || style > 5 {
		return Persona{}, fmt.Errorf("style must be 1-5, got %d", style)
	}
	if cfg.InterviewerName == "" || cfg.CompanyName == "" || cfg.RoleName == "" {
		return Persona{}, fmt.Errorf("interview config requires interviewer, company, and role names")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s at %s. You're conducting an interview for the %s position.\n\n",
		cfg.InterviewerName, cfg.InterviewerTitle, cfg.CompanyName, cfg.RoleName)
	fmt.Fprintf(&b, "## YOUR IDENTITY\nName: %s\nTitle: %s\nCompany: %s\n\n",
		cfg.InterviewerName, cfg.InterviewerTitle, cfg.CompanyName)
	if cfg.InterviewerContext != "" {
		fmt.Fprintf(&b, "## ABOUT YOU (THE INTERVIEWER)\n%s\n\n", cfg.InterviewerContext)
	}
	fmt.Fprintf(&b, "## THE ROLE: %s\n", cfg.RoleName)
	if cfg.JobDescription != "" {
		b.WriteString(cfg.JobDescription)
	} else {
		b.WriteString("Standard responsibilities for this type of role.")
	}
	b.WriteString("\n\n")
	if cfg.CompanyContext != "" {
		fmt.Fprintf(&b, "## ABOUT %s\n%s\n\n", strings.ToUpper(cfg.CompanyName), cfg.CompanyContext)
	}
	b.WriteString(styleContexts[style])
	b.WriteString("\n\n")
	fmt.Fprintf(&b, interviewStructure, cfg.InterviewerName, cfg.InterviewerName, cfg.InterviewerTitle, cfg.CompanyName)

	return Persona{
		Name:                   cfg.InterviewerName,
		Title:                  fmt.Sprintf("%s, %s", cfg.InterviewerTitle, cfg.CompanyName),
		Instructions:           b.String(),
		Voice:                  voiceForLevel(int(style)),
		AgentOpens:             true,
		OpeningInstruction:     "[The candidate just joined the call. Greet them warmly, introduce yourself, and ask how they're doing. Keep it brief and natural.]",
		TextOpeningInstruction: "[The candidate just joined the call. Greet them warmly, introduce yourself, and ask how they're doing. Keep it brief and natural.]",
	}, nil
}

// TextModeInstruction is appended to the system prompt in text sessions,
// where the model tends to over-help without it.
const TextModeInstruction = `

## CRITICAL RULE: DON'T HELP THEM DRIVE THE BUSINESS CONVERSATION

You can be natural and conversational in small talk - asking "how about you?" after they ask about your weekend is fine. That's normal human reciprocity.

BUT you must NEVER ask questions that help them with the SALES/BUSINESS part of the conversation:

BANNED - BUSINESS GUIDING QUESTIONS (never say these):
- "So, what can you tell me about Clay?"
- "What brings you to call today?"
- "What did you want to discuss?"
- "How can I help you?"
- "What are you guys trying to solve?"
- Any question that helps them transition from small talk to business
- Any question that does their discovery job for them

When small talk naturally ends, just wait. Don't ask what they want to discuss - that's THEIR job. If there's awkward silence after small talk, that's their problem to solve.

You're a busy VP who's polite in small talk but isn't going to help them figure out how to sell to you.`

// ShortReplyReminder is injected when the user's last message was five words
// or fewer, which otherwise tempts the model into guiding questions.
const ShortReplyReminder = "[Remember: Their message was short. Do NOT ask a follow-up question. Just acknowledge briefly or wait. It's their job to drive this conversation.]"
