package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "practice_engine_active_sessions",
		Help: "Number of active practice sessions",
	})

	totalSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_engine_sessions_total",
		Help: "Total number of practice sessions started",
	}, []string{"mode"}) // mode: "voice" or "text"

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "practice_engine_session_duration_seconds",
		Help:    "Duration of practice sessions in seconds",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
	})

	// Transcript metrics
	utterancesCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_engine_utterances_total",
		Help: "Total transcript utterances committed",
	}, []string{"speaker"}) // speaker: "user" or "agent"

	// Chat completion metrics (text mode)
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_engine_chat_requests_total",
		Help: "Total number of chat completion requests",
	}, []string{"status"})

	chatLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "practice_engine_chat_latency_seconds",
		Help:    "Chat completion latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	// Scoring metrics
	scoringRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_engine_scoring_requests_total",
		Help: "Total number of scoring requests",
	}, []string{"status"})

	scoringLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "practice_engine_scoring_latency_seconds",
		Help:    "Scoring request latency in seconds",
		Buckets: []float64{1.0, 2.0, 5.0, 10.0, 20.0, 60.0},
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_engine_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Audio metrics
	audioBytesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_engine_audio_bytes_total",
		Help: "Total audio bytes processed",
	}, []string{"direction"}) // direction: "in" (mic) or "out" (playback)
)

// Metrics tracks metrics for a single session
type Metrics struct {
	sessionID     string
	startTime     time.Time
	chatStartTime time.Time
	mu            sync.Mutex
}

// NewSessionMetrics creates a new metrics tracker for a session
func NewSessionMetrics(sessionID string) *Metrics {
	return &Metrics{
		sessionID: sessionID,
		startTime: time.Now(),
	}
}

// RecordSessionStart records the start of a session
func (m *Metrics) RecordSessionStart(mode string) {
	activeSessions.Inc()
	totalSessions.WithLabelValues(mode).Inc()
}

// RecordSessionEnd records the end of a session
func (m *Metrics) RecordSessionEnd() {
	activeSessions.Dec()
	duration := time.Since(m.startTime).Seconds()
	sessionDuration.Observe(duration)
}

// RecordUtterance records a committed transcript utterance
func (m *Metrics) RecordUtterance(speaker string) {
	utterancesCommitted.WithLabelValues(speaker).Inc()
}

// RecordChatStart records the start of a chat completion request
func (m *Metrics) RecordChatStart() {
	m.mu.Lock()
	m.chatStartTime = time.Now()
	m.mu.Unlock()
}

// RecordChatEnd records the end of a chat completion request
func (m *Metrics) RecordChatEnd(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.chatStartTime.IsZero() {
		latency := time.Since(m.chatStartTime).Seconds()
		chatLatency.Observe(latency)
	}

	status := "success"
	if !success {
		status = "error"
	}
	chatRequests.WithLabelValues(status).Inc()
}

// RecordError records an error
func (m *Metrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordAudioBytes records audio bytes processed
func (m *Metrics) RecordAudioBytes(direction string, bytes int64) {
	audioBytesProcessed.WithLabelValues(direction).Add(float64(bytes))
}

// RecordScoring records a scoring request outcome and its latency
func RecordScoring(success bool, latency time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	scoringRequests.WithLabelValues(status).Inc()
	scoringLatency.Observe(latency.Seconds())
}
