package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadswarm/internal/domain"
	"leadswarm/internal/webutil"
)

// InsertLeadIgnore adds a lead unless its domain is already known. Relies on
// the unique index on domain, so re-running scout with the same query can
// never produce duplicate rows.
func InsertLeadIgnore(ctx context.Context, db *sql.DB, l domain.Lead) (added bool, err error) {
	if strings.TrimSpace(l.URL) == "" {
		return false, errors.New("missing url")
	}
	if l.Domain == "" {
		l.Domain = webutil.CanonicalDomain(l.URL)
	}
	if l.Domain == "" {
		return false, fmt.Errorf("cannot derive domain from url %q", l.URL)
	}
	if l.Status == "" {
		l.Status = domain.StatusNew
	}
	now := time.Now().UTC()
	if l.DiscoveredAt.IsZero() {
		l.DiscoveredAt = now
	}
	if l.LastActionAt.IsZero() {
		l.LastActionAt = now
	}

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO leads
  (business_name, url, domain, niche, location, score, summary,
   email, facebook, linkedin, instagram, twitter, contact_page,
   status, source, discovered_at, sent_at, last_action_at, followup_count)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		l.BusinessName, l.URL, l.Domain, l.Niche, l.Location, l.Score, l.Summary,
		l.Email, l.Facebook, l.LinkedIn, l.Instagram, l.Twitter, l.ContactPage,
		string(l.Status), l.Source,
		l.DiscoveredAt.Format(time.RFC3339), "",
		l.LastActionAt.Format(time.RFC3339), l.FollowupCount,
	)
	if err != nil {
		return false, fmt.Errorf("insert lead: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
