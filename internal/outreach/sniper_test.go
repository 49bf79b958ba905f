package outreach

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadswarm/internal/config"
	"leadswarm/internal/domain"
	"leadswarm/internal/store"
)

type captureSender struct {
	sent   []OutboundEmail
	failTo map[string]bool
}

func (c *captureSender) Send(_ context.Context, msg OutboundEmail) error {
	if c.failTo[msg.To] {
		return fmt.Errorf("550 mailbox unavailable")
	}
	c.sent = append(c.sent, msg)
	return nil
}

type stubEnricher struct {
	byDomain map[string]string
}

func (s *stubEnricher) FindEmail(_ context.Context, domain string) (string, error) {
	return s.byDomain[domain], nil
}

func sniperCfg() config.Config {
	var cfg config.Config
	cfg.Outreach.MinScore = 5
	cfg.Outreach.Username = "me@gmail.com"
	cfg.Outreach.Profiles = map[string]domain.Profile{
		"default": {SenderName: "Alex", CompanyName: "Apex"},
	}
	return cfg
}

func sniperDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(t.TempDir() + "/sniper.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.Migrate(db.Pool))
	return db
}

func analyzedLead(t *testing.T, db *store.DB, url, email string, score int) int64 {
	t.Helper()
	ctx := context.Background()
	_, err := store.InsertLeadIgnore(ctx, db.Pool, domain.Lead{URL: url})
	require.NoError(t, err)
	var id int64
	require.NoError(t, db.Pool.QueryRow(`SELECT id FROM leads WHERE url = ?;`, url).Scan(&id))
	require.NoError(t, store.ApplyAnalysis(ctx, db.Pool, id, store.Analysis{
		Score: score, Summary: "pain point", Email: email, Status: domain.StatusAnalyzed,
	}))
	return id
}

func TestSniperRun(t *testing.T) {
	ctx := context.Background()

	t.Run("sends to qualified leads and marks contacted", func(t *testing.T) {
		db := sniperDB(t)
		id := analyzedLead(t, db, "https://hot.com", "owner@hot.com", 8)
		analyzedLead(t, db, "https://cold.com", "owner@cold.com", 3) // below threshold

		sender := &captureSender{}
		sent, err := Run(ctx, db.Pool, sniperCfg(), sender, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "owner@hot.com", sender.sent[0].To)
		assert.Equal(t, "me@gmail.com", sender.sent[0].From)

		lead, err := store.GetLead(ctx, db.Pool, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusContacted, lead.Status)
		require.NotNil(t, lead.SentAt)
		assert.WithinDuration(t, time.Now(), *lead.SentAt, time.Minute)
	})

	t.Run("never emails the same address twice across runs", func(t *testing.T) {
		db := sniperDB(t)
		analyzedLead(t, db, "https://one.com", "shared@biz.com", 9)

		sender := &captureSender{}
		sent, err := Run(ctx, db.Pool, sniperCfg(), sender, nil)
		require.NoError(t, err)
		require.Equal(t, 1, sent)

		// same address shows up again under a different domain
		analyzedLead(t, db, "https://two.com", "shared@biz.com", 9)

		sent, err = Run(ctx, db.Pool, sniperCfg(), sender, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
		assert.Len(t, sender.sent, 1)
	})

	t.Run("dedupes within one session", func(t *testing.T) {
		db := sniperDB(t)
		analyzedLead(t, db, "https://alpha.com", "Owner@Biz.com", 9)
		analyzedLead(t, db, "https://beta.com", "owner@biz.com", 9)

		sender := &captureSender{}
		sent, err := Run(ctx, db.Pool, sniperCfg(), sender, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("send failure marks send_failed and later retries", func(t *testing.T) {
		db := sniperDB(t)
		id := analyzedLead(t, db, "https://flaky.com", "owner@flaky.com", 9)

		sender := &captureSender{failTo: map[string]bool{"owner@flaky.com": true}}
		sent, err := Run(ctx, db.Pool, sniperCfg(), sender, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, sent)

		lead, err := store.GetLead(ctx, db.Pool, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSendFailed, lead.Status)

		// server recovers, retry succeeds
		sender.failTo = nil
		sent, err = Run(ctx, db.Pool, sniperCfg(), sender, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)

		lead, err = store.GetLead(ctx, db.Pool, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusContacted, lead.Status)
	})

	t.Run("enriches missing email via hunter", func(t *testing.T) {
		db := sniperDB(t)
		id := analyzedLead(t, db, "https://nomail.com", "", 9)

		enricher := &stubEnricher{byDomain: map[string]string{"nomail.com": "found@nomail.com"}}
		sender := &captureSender{}
		sent, err := Run(ctx, db.Pool, sniperCfg(), sender, enricher)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)

		lead, err := store.GetLead(ctx, db.Pool, id)
		require.NoError(t, err)
		assert.Equal(t, "found@nomail.com", lead.Email)
		assert.Equal(t, domain.StatusContacted, lead.Status)
	})

	t.Run("no email and no enrichment parks the lead", func(t *testing.T) {
		db := sniperDB(t)
		id := analyzedLead(t, db, "https://unreachable.com", "", 9)

		sender := &captureSender{}
		sent, err := Run(ctx, db.Pool, sniperCfg(), sender, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, sent)

		lead, err := store.GetLead(ctx, db.Pool, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDeadEnd, lead.Status)
	})
}
