package analyst

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"leadswarm/internal/rank"
)

const analystPrompt = `You are a top-tier AI Automation Consultant analyzing a local business's website from the provided text below.
Your task is to identify the most significant 'Revenue Leak' - a clear inefficiency where the business is losing money due to a lack of automation.
Scan for these specific weaknesses:
- Absence of AI automation (e.g., no chatbots for instant customer service, no automated booking or quoting systems).
- Slow site performance or poor mobile optimization (inferred from text cues like 'copyright 2015' or lack of modern framework mentions).
- Underutilized lead capture (e.g., only a contact form, no immediate callback widgets, no lead magnets).
Based on the single most critical weakness you find, perform two actions:
1. Calculate a realistic 'Projected ROI' figure if they were to automate this gap. Frame it as an annual projection.
2. Synthesize your finding and the ROI into a single, hard-hitting sentence for a cold email.
   - Format: '[Identified Weakness], potentially losing you an estimated [Projected ROI] annually.'
CRUCIAL: Output only this single sentence. Nothing else.`

// Report is the analyst's judgment of one site.
type Report struct {
	Score   int
	Summary string
	Tags    []string
}

// Analyzer turns fetched site text into a Report.
type Analyzer interface {
	Analyze(ctx context.Context, siteText string) (Report, error)
}

// RuleAnalyzer is the pure-heuristic path; it is also the fallback inside
// GeminiAnalyzer.
type RuleAnalyzer struct {
	Rules rank.RuleScorer
}

func (a RuleAnalyzer) Analyze(_ context.Context, siteText string) (Report, error) {
	score, summary, tags := a.Rules.Score(siteText)
	return Report{Score: score, Summary: summary, Tags: tags}, nil
}

// GeminiAnalyzer asks Gemini for the pain-point sentence; the numeric score
// always comes from the rules so thresholds stay deterministic.
type GeminiAnalyzer struct {
	cli   *genai.Client
	model string
	rules rank.RuleScorer
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, model string, rules rank.RuleScorer) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiAnalyzer{cli: cli, model: model, rules: rules}, nil
}

func (a *GeminiAnalyzer) Analyze(ctx context.Context, siteText string) (Report, error) {
	score, fallback, tags := a.rules.Score(siteText)
	rep := Report{Score: score, Summary: fallback, Tags: tags}

	full := analystPrompt + "\n\nWebsite Text:\n" + siteText
	resp, err := a.cli.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		nil,
	)
	if err != nil {
		log.Printf("[analyst] gemini generation failed, using heuristic summary: %v", err)
		return rep, nil
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return rep, nil
	}

	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text != "" {
		// first line only; the prompt asks for a single sentence
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		rep.Summary = text
	}
	return rep, nil
}
