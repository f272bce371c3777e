package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pitchcoach/session-engine/internal/config"
	"github.com/pitchcoach/session-engine/internal/engine"
	"github.com/pitchcoach/session-engine/internal/observability"
	"github.com/pitchcoach/session-engine/internal/persona"
	"github.com/pitchcoach/session-engine/internal/realtime"
	"github.com/pitchcoach/session-engine/internal/resilience"
	"github.com/pitchcoach/session-engine/internal/scoring"
	"github.com/pitchcoach/session-engine/internal/transcript"
)

func main() {
	mode := flag.String("mode", "voice", "Conversation mode: voice or text")
	scenario := flag.String("scenario", "sales", "Practice scenario: sales or interview")
	callType := flag.String("call", "discovery", "Sales call type: cold or discovery")
	temperament := flag.Int("temperament", 3, "Prospect temperament, 1 (hostile) to 5 (eager)")
	style := flag.Int("style", 3, "Interviewer style, 1 (challenging) to 5 (friendly)")
	company := flag.String("company", "", "Interview: company name")
	role := flag.String("role", "", "Interview: role name")
	interviewer := flag.String("interviewer", "", "Interview: interviewer name")
	interviewerTitle := flag.String("interviewer-title", "Hiring Manager", "Interview: interviewer title")
	noScore := flag.Bool("no-score", false, "Skip post-call scoring")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("mode", *mode).
		Str("scenario", *scenario).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Practice session engine starting")

	p, rubric, err := buildPersona(*scenario, *callType, *temperament, *style, persona.InterviewConfig{
		CompanyName:      *company,
		RoleName:         *role,
		InterviewerName:  *interviewer,
		InterviewerTitle: *interviewerTitle,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid scenario")
	}

	srv := startObservabilityServer(cfg, logger)
	defer shutdownServer(srv, logger)

	eng := engine.New(cfg)

	var result engine.Result
	switch *mode {
	case "voice":
		result, err = runVoice(eng, p, logger)
	case "text":
		result, err = runText(eng, p)
	default:
		logger.Fatal().Str("mode", *mode).Msg("Unknown mode")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Session failed")
	}

	printTranscript(result.Transcript)
	fmt.Printf("\nCall duration: %s, %d exchanges\n", formatDuration(result.Duration), len(result.Transcript))

	if *noScore || len(result.Transcript) == 0 {
		return
	}

	report, err := scoreWithRetry(cfg, eng, rubric, result.Transcript)
	if err != nil {
		logger.Error().Err(err).Msg("Scoring failed")
		fmt.Println("\nCould not analyze this call. Your transcript is above.")
		return
	}
	printReport(rubric, report)
}

func buildPersona(scenario, callType string, temperament, style int, icfg persona.InterviewConfig) (persona.Persona, scoring.Rubric, error) {
	switch scenario {
	case "sales":
		p, err := persona.Sales(persona.CallType(callType), persona.Temperament(temperament))
		return p, scoring.SalesRubric(), err
	case "interview":
		p, err := persona.Interview(icfg, persona.Style(style))
		return p, scoring.InterviewRubric(), err
	default:
		return persona.Persona{}, scoring.Rubric{}, fmt.Errorf("unknown scenario %q", scenario)
	}
}

// startObservabilityServer exposes health, readiness, and metrics while a
// session runs.
func startObservabilityServer(cfg *config.Config, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", observability.HealthCheckHandler())
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"chat_endpoint": func(ctx context.Context) (bool, error) {
			return cfg.ChatURL != "" && cfg.OpenAIAPIKey != "", nil
		},
	}))
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Observability server failed")
		}
	}()
	return server
}

func shutdownServer(server *http.Server, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Observability server shutdown failed")
	}
}

// runVoice holds the line open until the user interrupts or the session
// terminates on its own.
func runVoice(eng *engine.Engine, p persona.Persona, logger zerolog.Logger) (engine.Result, error) {
	fmt.Printf("Starting voice session with %s (%s). Press Ctrl+C to hang up.\n\n", p.Name, p.Title)

	run, err := eng.StartVoice(context.Background(), p, engine.VoiceOptions{
		OnState: func(s realtime.State) {
			if s == realtime.StateActive {
				fmt.Println("Connected. Start talking.")
			}
		},
		OnUtterance: func(u transcript.Utterance) {
			fmt.Printf("%s\n", formatUtterance(p, u))
		},
	})
	if err != nil {
		return engine.Result{}, err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info().Msg("Hanging up")
	case <-run.Done():
		if err := run.Session().Err(); err != nil {
			logger.Warn().Err(err).Msg("Session ended remotely")
		}
	}
	return run.End(), nil
}

// runText is a typed conversation loop. A blank line or EOF ends the call.
func runText(eng *engine.Engine, p persona.Persona) (engine.Result, error) {
	fmt.Printf("Starting text session with %s (%s). Empty line ends the call.\n\n", p.Name, p.Title)

	run := eng.StartText(p)
	ctx := context.Background()

	if opening, err := run.Session().Open(ctx); err == nil && opening != "" {
		fmt.Printf("%s: %s\n", p.Name, opening)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		reply, err := run.Session().Send(ctx, line)
		if err != nil {
			// The fallback reply keeps the call alive; just show it.
			fmt.Printf("%s: %s\n", p.Name, reply)
			continue
		}
		fmt.Printf("%s: %s\n", p.Name, reply)
	}
	return run.End(), nil
}

// scoreWithRetry analyzes the transcript, retrying transient failures. The
// analyzer itself never retries; that policy lives here.
func scoreWithRetry(cfg *config.Config, eng *engine.Engine, rubric scoring.Rubric, log []transcript.Utterance) (*scoring.Report, error) {
	fmt.Println("\nAnalyzing your call...")
	scorer := eng.Scorer()

	var report *scoring.Report
	retryCfg := &resilience.RetryConfig{
		MaxAttempts:       cfg.ScoreMaxAttempts,
		InitialBackoff:    time.Duration(cfg.ScoreInitialBackoff) * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
	err := resilience.Retry(context.Background(), func(ctx context.Context) error {
		var aerr error
		report, aerr = scorer.Analyze(ctx, rubric, log)
		return aerr
	}, retryCfg, resilience.IsRetryableRequestError)
	return report, err
}

func formatUtterance(p persona.Persona, u transcript.Utterance) string {
	if u.Speaker == transcript.SpeakerUser {
		return "You: " + u.Text
	}
	return p.Name + ": " + u.Text
}

func printTranscript(log []transcript.Utterance) {
	fmt.Println("\n--- Transcript ---")
	for _, u := range log {
		label := "You"
		if u.Speaker == transcript.SpeakerAgent {
			label = "Them"
		}
		fmt.Printf("%s: %s\n", label, u.Text)
	}
}

func printReport(rubric scoring.Rubric, report *scoring.Report) {
	fmt.Printf("\n--- Feedback (%d/100) ---\n", report.Total())
	for _, category := range rubric.Categories {
		fb, ok := report.CategoryFeedback[category]
		if !ok {
			fmt.Printf("\n%s: %d/25\n", category, report.Scores[category])
			continue
		}
		fmt.Printf("\n%s: %d/25\n", category, fb.Score)
		for _, obs := range fb.Observations {
			fmt.Printf("  [%s] %q\n    %s\n", obs.Type, obs.Quote, obs.Analysis)
		}
		if fb.Summary != "" {
			fmt.Printf("  %s\n", fb.Summary)
		}
	}
	if report.OverallAssessment != "" {
		fmt.Printf("\nOverall: %s\n", report.OverallAssessment)
	}
	if len(report.TopPriorities) > 0 {
		fmt.Println("\nTop priorities:")
		for i, pri := range report.TopPriorities {
			fmt.Printf("  %d. %s\n", i+1, pri)
		}
	}
	if len(report.WhatWorkedWell) > 0 {
		fmt.Println("\nWhat worked well:")
		for _, s := range report.WhatWorkedWell {
			fmt.Printf("  - %s\n", s)
		}
	}
	for _, sa := range report.SampleBetterAnswers {
		fmt.Printf("\nBetter answer for %q:\n  %s\n", sa.Question, sa.Suggestion)
	}
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
