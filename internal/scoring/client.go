package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pitchcoach/session-engine/internal/chat"
	"github.com/pitchcoach/session-engine/internal/observability"
	"github.com/pitchcoach/session-engine/internal/transcript"
)

// Scoring failures. The analyzer itself never retries; the caller decides
// whether a failed analysis is worth another attempt.
var (
	ErrEmptyTranscript = errors.New("no conversation to analyze")
	ErrScoring         = errors.New("transcript analysis failed")
)

// ClientConfig tunes the analysis model.
type ClientConfig struct {
	Model       string
	Temperature float64
}

// Client scores finished transcripts through the chat completions endpoint.
type Client struct {
	chat   *chat.Client
	cfg    ClientConfig
	logger zerolog.Logger
}

// NewClient wraps a chat client for scoring.
func NewClient(chatClient *chat.Client, cfg ClientConfig, logger zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	return &Client{chat: chatClient, cfg: cfg, logger: logger}
}

// Analyze scores a transcript against the rubric. The transcript must have
// at least one utterance.
func (c *Client) Analyze(ctx context.Context, rubric Rubric, log []transcript.Utterance) (*Report, error) {
	if len(log) == 0 {
		return nil, ErrEmptyTranscript
	}

	start := time.Now()
	content, err := c.chat.Complete(ctx, chat.Request{
		Model: c.cfg.Model,
		Messages: []chat.Message{
			{Role: "user", Content: rubric.Prompt + FormatTranscript(rubric, log)},
		},
		ResponseFormat: &chat.ResponseFormat{Type: "json_object"},
		Temperature:    c.cfg.Temperature,
	})
	observability.RecordScoring(err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoring, err)
	}

	var report Report
	if err := json.Unmarshal([]byte(content), &report); err != nil {
		return nil, fmt.Errorf("%w: unparseable analysis: %v", ErrScoring, err)
	}
	for _, category := range rubric.Categories {
		if _, ok := report.Scores[category]; !ok {
			return nil, fmt.Errorf("%w: analysis missing %s score", ErrScoring, category)
		}
	}

	c.logger.Info().
		Str("rubric", rubric.Name).
		Int("total", report.Total()).
		Int("utterances", len(log)).
		Msg("Transcript scored")
	return &report, nil
}

// FormatTranscript renders the transcript as labeled lines, one utterance
// per line.
func FormatTranscript(rubric Rubric, log []transcript.Utterance) string {
	lines := make([]string, 0, len(log))
	for _, u := range log {
		label := rubric.AgentLabel
		if u.Speaker == transcript.SpeakerUser {
			label = rubric.UserLabel
		}
		lines = append(lines, label+": "+u.Text)
	}
	return strings.Join(lines, "\n")
}
