package scoring

// Rubric pairs an analysis prompt with how the transcript is labeled and
// which score categories the model must return.
type Rubric struct {
	// Name identifies the rubric in logs.
	Name string
	// Prompt is the full analysis instruction; the labeled transcript is
	// appended to it.
	Prompt string
	// UserLabel and AgentLabel prefix transcript lines so the analysis can
	// quote speakers.
	UserLabel  string
	AgentLabel string
	// Categories are the score keys the response must contain.
	Categories []string
}

// SalesRubric scores a sales practice call against discovery fundamentals.
func SalesRubric() Rubric {
	return Rubric{
		Name:       "sales",
		Prompt:     salesAnalysisPrompt,
		UserLabel:  "REP",
		AgentLabel: "SAM",
		Categories: []string{"discovery", "painMetrics", "objectionHandling", "conversationControl"},
	}
}

// InterviewRubric scores a practice job interview.
func InterviewRubric() Rubric {
	return Rubric{
		Name:       "interview",
		Prompt:     interviewAnalysisPrompt,
		UserLabel:  "CANDIDATE",
		AgentLabel: "INTERVIEWER",
		Categories: []string{"communication", "answerStructure", "roleFit", "toughMoments"},
	}
}

const salesAnalysisPrompt = `You are an expert sales coach analyzing a discovery call. The user was playing a Clay sales rep calling on Sam Morrison, VP Sales at TechFlow.

Analyze this call thoroughly and provide detailed, specific feedback that references EXACT quotes and moments from the transcript.

## SCORING CRITERIA

Score each category 0-25. Be specific about WHY you gave that score:

### 1. HYPOTHESIS-DRIVEN DISCOVERY (0-25)
- Did they show they researched TechFlow before the call?
- Did they come with a perspective/hypothesis about the prospect's challenges?
- Did they reference specific things (enterprise launch, team size, hiring, tech stack)?
- Did they lead with insight rather than just asking generic questions?

### 2. PAIN & METRICS UNCOVERED (0-25)
- Did they get to SPECIFIC pain points (not just "challenges")?
- Did they uncover actual numbers (reply rates, time spent, revenue impact, deals lost)?
- Did they dig deeper when prospect gave surface-level answers?
- Did they quantify the business impact of the problems?

### 3. OBJECTION HANDLING (0-25)
- How did they respond to pushback (e.g., "we looked at Clay before", "we use Clearbit")?
- Did they acknowledge objections before responding?
- Did they stay confident vs. getting defensive?
- Did they use objections as opportunities to learn more?

### 4. CONVERSATION CONTROL (0-25)
- Did they maintain appropriate talk ratio (prospect should talk more)?
- Did they guide without being pushy or scripted?
- Did they transition smoothly between topics?
- Did they avoid rambling or over-explaining?

## RESPONSE FORMAT

Provide detailed feedback with SPECIFIC examples from the transcript. Don't be generic - quote actual lines and explain what was good or bad about them.

Respond in this exact JSON format:
{
  "scores": {
    "discovery": <number 0-25>,
    "painMetrics": <number 0-25>,
    "objectionHandling": <number 0-25>,
    "conversationControl": <number 0-25>
  },
  "categoryFeedback": {
    "discovery": {
      "score": <number>,
      "observations": [
        {"type": "positive" | "negative", "quote": "<exact quote from transcript>", "analysis": "<why this was good or bad>"}
      ],
      "summary": "<2-3 sentence summary of performance in this category>"
    },
    "painMetrics": {"score": <number>, "observations": [...], "summary": "<summary>"},
    "objectionHandling": {"score": <number>, "observations": [...], "summary": "<summary>"},
    "conversationControl": {"score": <number>, "observations": [...], "summary": "<summary>"}
  },
  "keyMoments": [
    {"type": "positive" | "negative", "timestamp": "<early/middle/late in call>", "text": "<specific description with quote>"}
  ],
  "overallAssessment": "<3-4 sentence overall assessment of the call>",
  "topPriorities": [
    "<Most important thing to work on, with specific actionable advice>",
    "<Second priority, with specific actionable advice>",
    "<Third priority, with specific actionable advice>"
  ],
  "whatWorkedWell": [
    "<Specific strength to keep doing>",
    "<Another strength>"
  ]
}

Be honest but constructive. If the call was short or the rep struggled, acknowledge it directly and explain specifically what they should do differently next time.

TRANSCRIPT:
`

const interviewAnalysisPrompt = `You are an expert interview coach analyzing a practice job interview.

The candidate was practicing for an interview. Analyze their performance thoroughly and provide detailed, specific feedback that references EXACT quotes and moments from the transcript.

## SCORING CRITERIA

Score each category 0-25:

### 1. COMMUNICATION & PRESENCE (0-25)
- Did they speak clearly and confidently?
- Good pace - not too fast or slow?
- Did they sound genuine vs. rehearsed?
- Professional tone throughout?

### 2. ANSWER STRUCTURE & DEPTH (0-25)
- Did they use STAR method or similar structure?
- Were answers specific with real examples?
- Did they quantify results where possible?
- Appropriate length - not too short or rambling?

### 3. ROLE FIT & ENTHUSIASM (0-25)
- Did they connect their experience to the role?
- Show genuine interest in the position?
- Demonstrate understanding of the company/role?
- Ask good questions?

### 4. HANDLING TOUGH MOMENTS (0-25)
- How did they handle challenging questions?
- Did they stay composed under pressure?
- Honest about weaknesses/failures?
- Recover well from stumbles?

## RESPONSE FORMAT

Provide detailed feedback with SPECIFIC examples from the transcript.

Respond in this exact JSON format:
{
  "scores": {
    "communication": <number 0-25>,
    "answerStructure": <number 0-25>,
    "roleFit": <number 0-25>,
    "toughMoments": <number 0-25>
  },
  "categoryFeedback": {
    "communication": {
      "score": <number>,
      "observations": [
        {"type": "positive" | "negative", "quote": "<exact quote>", "analysis": "<why good or bad>"}
      ],
      "summary": "<2-3 sentence summary>"
    },
    "answerStructure": {"score": <number>, "observations": [...], "summary": "<summary>"},
    "roleFit": {"score": <number>, "observations": [...], "summary": "<summary>"},
    "toughMoments": {"score": <number>, "observations": [...], "summary": "<summary>"}
  },
  "keyMoments": [
    {"type": "positive" | "negative", "timestamp": "<early/middle/late>", "text": "<description with quote>"}
  ],
  "overallAssessment": "<3-4 sentence overall assessment>",
  "topPriorities": [
    "<Most important thing to improve>",
    "<Second priority>",
    "<Third priority>"
  ],
  "whatWorkedWell": [
    "<Specific strength>",
    "<Another strength>"
  ],
  "sampleBetterAnswers": [
    {"question": "<question they struggled with>", "suggestion": "<how they could have answered better>"}
  ]
}

TRANSCRIPT:
`
