package scout

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadswarm/internal/config"
	"leadswarm/internal/domain"
	"leadswarm/internal/store"
)

type stubProvider struct {
	pages map[int][]SearchResult // keyed by offset
	err   error
	calls int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Search(_ context.Context, _ string, offset, _ int) ([]SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.pages[offset], nil
}

func scoutCfg() config.Config {
	var cfg config.Config
	cfg.Search.TargetNewLeads = 10
	cfg.Search.ResultsPerPage = 10
	cfg.Search.MaxOffset = 30
	cfg.Search.ForbiddenHosts = []string{"yelp.com", "facebook.com"}
	return cfg
}

func scoutDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(t.TempDir() + "/scout.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.Migrate(db.Pool))
	return db
}

func TestScoutRun(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts new leads as status new", func(t *testing.T) {
		db := scoutDB(t)
		p := &stubProvider{pages: map[int][]SearchResult{
			0: {
				{Title: "Acme Roofing | Dallas", Link: "https://acmeroofing.com"},
				{Title: "Best Roofs - DFW", Link: "https://www.bestroofs.com/home"},
				{Title: "Roofing pros on Yelp", Link: "https://www.yelp.com/biz/acme"},
			},
		}}

		added, err := Run(ctx, db.Pool, scoutCfg(), p, "roofing", "Dallas")
		require.NoError(t, err)
		assert.Equal(t, 2, added)

		leads, err := store.LeadsByStatus(ctx, db.Pool, domain.StatusNew)
		require.NoError(t, err)
		require.Len(t, leads, 2)
		for _, l := range leads {
			assert.Equal(t, domain.StatusNew, l.Status)
			assert.Equal(t, "roofing", l.Niche)
			assert.Equal(t, "Dallas", l.Location)
			assert.Equal(t, "stub", l.Source)
		}
	})

	t.Run("skips domains already in the store", func(t *testing.T) {
		db := scoutDB(t)
		_, err := store.InsertLeadIgnore(ctx, db.Pool, domain.Lead{URL: "https://known.com"})
		require.NoError(t, err)

		p := &stubProvider{pages: map[int][]SearchResult{
			0: {{Title: "Known", Link: "https://www.known.com/other-page"}},
		}}
		added, err := Run(ctx, db.Pool, scoutCfg(), p, "roofing", "Dallas")
		require.NoError(t, err)
		assert.Equal(t, 0, added)
	})

	t.Run("stops at target and does not page further", func(t *testing.T) {
		db := scoutDB(t)
		cfg := scoutCfg()
		cfg.Search.TargetNewLeads = 2

		page := make([]SearchResult, 0, 10)
		for i := 0; i < 10; i++ {
			page = append(page, SearchResult{
				Title: fmt.Sprintf("Biz %d", i),
				Link:  fmt.Sprintf("https://biz%d.com", i),
			})
		}
		p := &stubProvider{pages: map[int][]SearchResult{0: page}}

		added, err := Run(ctx, db.Pool, cfg, p, "roofing", "Dallas")
		require.NoError(t, err)
		assert.Equal(t, 2, added)
		assert.Equal(t, 1, p.calls)
	})

	t.Run("offset breakout ends the search", func(t *testing.T) {
		db := scoutDB(t)
		cfg := scoutCfg()
		cfg.Search.MaxOffset = 20

		// every page returns only forbidden hosts, so the target is never hit
		junk := []SearchResult{{Title: "Yelp", Link: "https://yelp.com/x"}}
		p := &stubProvider{pages: map[int][]SearchResult{0: junk, 10: junk, 20: junk}}

		added, err := Run(ctx, db.Pool, cfg, p, "roofing", "Dallas")
		require.NoError(t, err)
		assert.Equal(t, 0, added)
		assert.Equal(t, 2, p.calls)
	})

	t.Run("api error returns partial progress", func(t *testing.T) {
		db := scoutDB(t)
		p := &stubProvider{err: fmt.Errorf("quota exhausted")}

		added, err := Run(ctx, db.Pool, scoutCfg(), p, "roofing", "Dallas")
		require.Error(t, err)
		assert.Equal(t, 0, added)
	})

	t.Run("empty niche or location rejected", func(t *testing.T) {
		db := scoutDB(t)
		_, err := Run(ctx, db.Pool, scoutCfg(), &stubProvider{}, "", "Dallas")
		assert.Error(t, err)
		_, err = Run(ctx, db.Pool, scoutCfg(), &stubProvider{}, "roofing", "  ")
		assert.Error(t, err)
	})
}

func TestBuildQuery(t *testing.T) {
	cfg := scoutCfg()
	cfg.Search.ExcludeSites = []string{"yelp.com", "angi.com"}

	q := BuildQuery(cfg, "roofing company", "Dallas, TX")
	assert.Equal(t, `"roofing company" "Dallas, TX" -site:yelp.com -site:angi.com`, q)
}

func TestTitleToBusinessName(t *testing.T) {
	cases := map[string]string{
		"Acme Roofing | Dallas TX":       "Acme Roofing",
		"Best Roofs - #1 in DFW":         "Best Roofs",
		"Plain Title":                    "Plain Title",
		"Dash-In-Name Roofing | Contact": "Dash-In-Name Roofing",
	}
	for in, want := range cases {
		assert.Equal(t, want, titleToBusinessName(in), "input %q", in)
	}
}

func TestIsForbiddenHost(t *testing.T) {
	cfg := scoutCfg()
	assert.True(t, isForbiddenHost(cfg, "yelp.com"))
	assert.True(t, isForbiddenHost(cfg, "m.facebook.com"))
	assert.False(t, isForbiddenHost(cfg, "acmeroofing.com"))
}
