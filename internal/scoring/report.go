// Package scoring turns a finished practice transcript into structured
// coaching feedback.
package scoring

// Observation is one quoted moment with analysis. Type is "positive" or
// "negative".
type Observation struct {
	Type     string `json:"type"`
	Quote    string `json:"quote"`
	Analysis string `json:"analysis"`
}

// CategoryFeedback is the detailed breakdown for one scoring category.
type CategoryFeedback struct {
	Score        int           `json:"score"`
	Observations []Observation `json:"observations"`
	Summary      string        `json:"summary"`
}

// KeyMoment is a notable point in the call. Timestamp is coarse: early,
// middle, or late.
type KeyMoment struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// SampleAnswer suggests a stronger answer to a question the user struggled
// with. Interview rubrics only.
type SampleAnswer struct {
	Question   string `json:"question"`
	Suggestion string `json:"suggestion"`
}

// Report is the full feedback document. Each category is scored 0-25; the
// category keys depend on the rubric.
type Report struct {
	Scores              map[string]int              `json:"scores"`
	CategoryFeedback    map[string]CategoryFeedback `json:"categoryFeedback"`
	KeyMoments          []KeyMoment                 `json:"keyMoments"`
	OverallAssessment   string                      `json:"overallAssessment"`
	TopPriorities       []string                    `json:"topPriorities"`
	WhatWorkedWell      []string                    `json:"whatWorkedWell"`
	SampleBetterAnswers []SampleAnswer              `json:"sampleBetterAnswers,omitempty"`
}

// Total sums the category scores, 0-100.
func (r *Report) Total() int {
	total := 0
	for _, s := range r.Scores {
		total += s
	}
	return total
}
