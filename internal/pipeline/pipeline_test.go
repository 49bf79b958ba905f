package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadswarm/internal/analyst"
	"leadswarm/internal/closer"
	"leadswarm/internal/config"
	"leadswarm/internal/domain"
	"leadswarm/internal/events"
	"leadswarm/internal/outreach"
	"leadswarm/internal/scout"
	"leadswarm/internal/store"
)

type stubProvider struct{ results []scout.SearchResult }

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Search(_ context.Context, _ string, offset, _ int) ([]scout.SearchResult, error) {
	if offset > 0 {
		return nil, nil
	}
	return s.results, nil
}

type stubGetter struct{}

func (stubGetter) FetchText(_ context.Context, pageURL string, _ int) (string, analyst.PageLinks, error) {
	return "Call us today for a free roofing estimate",
		analyst.PageLinks{Mailtos: []string{"owner@" + pageURL[len("https://"):] }}, nil
}

type stubAnalyzer struct{ score int }

func (s stubAnalyzer) Analyze(_ context.Context, _ string) (analyst.Report, error) {
	return analyst.Report{Score: s.score, Summary: "funnel leak"}, nil
}

type captureSender struct{ sent []outreach.OutboundEmail }

func (c *captureSender) Send(_ context.Context, msg outreach.OutboundEmail) error {
	c.sent = append(c.sent, msg)
	return nil
}

type quietMailbox struct{}

func (quietMailbox) HasReplyFrom(context.Context, string, time.Time) (bool, error) { return false, nil }
func (quietMailbox) Close()                                                        {}

func pipelineCfg() config.Config {
	var cfg config.Config
	cfg.Search.TargetNewLeads = 25
	cfg.Search.ResultsPerPage = 10
	cfg.Search.MaxOffset = 50
	cfg.Analyst.MaxDNAChars = 100000
	cfg.Outreach.MinScore = 5
	cfg.Outreach.Username = "me@gmail.com"
	cfg.Outreach.Profiles = map[string]domain.Profile{"default": {SenderName: "Alex"}}
	cfg.Closer.FollowupAfterDays = 3
	return cfg
}

func pipelineDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(t.TempDir() + "/pipeline.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.Migrate(db.Pool))
	return db
}

func TestFullPipelineRun(t *testing.T) {
	ctx := context.Background()
	db := pipelineDB(t)
	cfg := pipelineCfg()

	provider := &stubProvider{results: []scout.SearchResult{
		{Title: "Acme Roofing | Dallas", Link: "https://acmeroofing.com"},
		{Title: "DFW Roof Pros", Link: "https://dfwroofpros.com"},
		{Title: "Lone Star Roofs", Link: "https://lonestarroofs.com"},
	}}
	sender := &captureSender{}
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	runner := NewRunner(Deps{
		DB:       db.Pool,
		Cfg:      func() config.Config { return cfg },
		Provider: provider,
		Getter:   stubGetter{},
		Analyzer: stubAnalyzer{score: 8},
		Sender:   sender,
		Mailbox:  func(context.Context) (closer.Mailbox, error) { return quietMailbox{}, nil },
		Hub:      hub,
	})

	st, err := runner.Run(ctx, "roofing", "Dallas")
	require.NoError(t, err)
	require.Len(t, st.Stages, 3)
	assert.Equal(t, "scout", st.Stages[0].Stage)
	assert.Equal(t, 3, st.Stages[0].Count)
	assert.Equal(t, "analyst", st.Stages[1].Stage)
	assert.Equal(t, 3, st.Stages[1].Count)
	assert.Equal(t, "sniper", st.Stages[2].Stage)
	assert.Equal(t, 3, st.Stages[2].Count)
	assert.Len(t, sender.sent, 3)
	assert.False(t, runner.Status().Running)
	assert.NotEmpty(t, st.RunID)

	// every lead is now contacted
	contacted, err := store.LeadsByStatus(ctx, db.Pool, domain.StatusContacted)
	require.NoError(t, err)
	assert.Len(t, contacted, 3)

	// closer sweep: nothing replied, nothing old enough to nudge
	res, err := runner.RunCloser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Replied)
	assert.Equal(t, 0, res.FollowedUp)

	// repeat run adds nothing and sends nothing new
	st, err = runner.Run(ctx, "roofing", "Dallas")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Stages[0].Count)
	assert.Equal(t, 0, st.Stages[2].Count)
	assert.Len(t, sender.sent, 3)

	// stage lifecycle events were published
	assert.NotEmpty(t, drain(sub))
}

func TestPipelineContinuesPastFailedStage(t *testing.T) {
	ctx := context.Background()
	db := pipelineDB(t)
	cfg := pipelineCfg()

	// analyst backlog exists from a previous run
	_, err := store.InsertLeadIgnore(ctx, db.Pool, domain.Lead{URL: "https://backlog.com"})
	require.NoError(t, err)

	sender := &captureSender{}
	runner := NewRunner(Deps{
		DB:       db.Pool,
		Cfg:      func() config.Config { return cfg },
		Provider: failingProvider{},
		Getter:   stubGetter{},
		Analyzer: stubAnalyzer{score: 9},
		Sender:   sender,
	})

	st, err := runner.Run(ctx, "roofing", "Dallas")
	require.Error(t, err)
	require.Len(t, st.Stages, 3)
	assert.NotEmpty(t, st.Stages[0].Error)
	assert.Empty(t, st.Stages[1].Error)
	assert.Equal(t, 1, st.Stages[1].Count)
	assert.Len(t, sender.sent, 1)
}

func TestOnlyOneRunAtATime(t *testing.T) {
	db := pipelineDB(t)
	cfg := pipelineCfg()

	release := make(chan struct{})
	runner := NewRunner(Deps{
		DB:  db.Pool,
		Cfg: func() config.Config { return cfg },
		Provider: blockingProvider{release: release},
		Getter:   stubGetter{},
		Analyzer: stubAnalyzer{},
		Sender:   &captureSender{},
	})

	done := make(chan struct{})
	go func() {
		_, _ = runner.Run(context.Background(), "roofing", "Dallas")
		close(done)
	}()

	// wait until the first run is inside scout
	require.Eventually(t, func() bool { return runner.Status().Running }, time.Second, 5*time.Millisecond)

	_, err := runner.Run(context.Background(), "roofing", "Dallas")
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	<-done
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Search(context.Context, string, int, int) ([]scout.SearchResult, error) {
	return nil, fmt.Errorf("search backend down")
}

type blockingProvider struct{ release chan struct{} }

func (blockingProvider) Name() string { return "blocking" }
func (b blockingProvider) Search(context.Context, string, int, int) ([]scout.SearchResult, error) {
	<-b.release
	return nil, nil
}

func drain(ch chan string) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}
