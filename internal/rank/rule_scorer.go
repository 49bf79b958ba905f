package rank

import (
	"strings"

	"leadswarm/internal/config"
)

// RuleScorer qualifies a site from the YAML signal rules. It is the fallback
// when the LLM analyzer is unavailable, and always supplies the numeric
// score the sniper thresholds on.
type RuleScorer struct {
	Cfg config.Config
}

const defaultSummary = "Your website lacks a clear, instant lead-capture mechanism, potentially losing you an estimated $18,000 annually from missed opportunities."

func (s RuleScorer) Score(siteText string) (int, string, []string) {
	text := strings.ToLower(siteText)

	score := 0
	summary := ""
	best := 0
	var tags []string

	for _, r := range s.Cfg.Analyst.SignalRules {
		for _, needle := range r.Any {
			n := strings.ToLower(needle)
			if n == "" || !strings.Contains(text, n) {
				continue
			}
			score += r.Weight
			tags = append(tags, r.Tag)
			// heaviest firing rule nominates the pain-point sentence
			if r.Summary != "" && r.Weight > best {
				best = r.Weight
				summary = r.Summary
			}
			break
		}
	}

	for _, p := range s.Cfg.Analyst.Penalties {
		for _, needle := range p.Any {
			n := strings.ToLower(needle)
			if n != "" && strings.Contains(text, n) {
				score += p.Weight
				break
			}
		}
	}

	if score < 0 {
		score = 0
	}
	if summary == "" {
		summary = defaultSummary
	}
	return score, summary, uniq(tags)
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
