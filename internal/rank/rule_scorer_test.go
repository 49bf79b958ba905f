package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leadswarm/internal/config"
)

func scorerFixture() RuleScorer {
	var cfg config.Config
	cfg.Analyst.SignalRules = []config.Rule{
		{Tag: "no_lead_capture", Weight: 3, Any: []string{"call us", "call now"},
			Summary: "Phone-only capture loses after-hours leads."},
		{Tag: "manual_booking", Weight: 4, Any: []string{"request a quote"},
			Summary: "Manual quoting loses jobs to faster competitors."},
	}
	cfg.Analyst.Penalties = []config.Penalty{
		{Reason: "has_booking", Weight: -2, Any: []string{"calendly"}},
	}
	return RuleScorer{Cfg: cfg}
}

func TestRuleScorer(t *testing.T) {
	s := scorerFixture()

	t.Run("heaviest firing rule nominates the summary", func(t *testing.T) {
		score, summary, tags := s.Score("Call us today! Or request a quote online.")
		assert.Equal(t, 7, score)
		assert.Equal(t, "Manual quoting loses jobs to faster competitors.", summary)
		assert.ElementsMatch(t, []string{"no_lead_capture", "manual_booking"}, tags)
	})

	t.Run("case insensitive matching", func(t *testing.T) {
		score, _, _ := s.Score("CALL NOW for a free estimate")
		assert.Equal(t, 3, score)
	})

	t.Run("penalties subtract", func(t *testing.T) {
		score, _, _ := s.Score("Call us, or book instantly via Calendly")
		assert.Equal(t, 1, score)
	})

	t.Run("each rule fires at most once", func(t *testing.T) {
		score, _, tags := s.Score("call us, call now, call us again")
		assert.Equal(t, 3, score)
		assert.Equal(t, []string{"no_lead_capture"}, tags)
	})

	t.Run("score never goes negative", func(t *testing.T) {
		score, summary, _ := s.Score("calendly calendly calendly")
		assert.Equal(t, 0, score)
		assert.NotEmpty(t, summary)
	})

	t.Run("no signals falls back to the default summary", func(t *testing.T) {
		score, summary, tags := s.Score("welcome to our photo gallery")
		assert.Equal(t, 0, score)
		assert.Contains(t, summary, "lead-capture")
		assert.Empty(t, tags)
	})
}
