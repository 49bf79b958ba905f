package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadswarm/internal/domain"
)

// ErrBadTransition is returned when a stage tries to move a lead to a status
// the lifecycle doesn't allow. Nothing is written in that case.
var ErrBadTransition = errors.New("store: illegal lead status transition")

var ErrNotFound = errors.New("store: lead not found")

type ListLeadsOpts struct {
	Status string // filter by exact status; empty = all
	Sort   string // score | discovered | domain
	Window string // 24h | 7d | all
	Limit  int
}

const leadCols = `
id, business_name, url, domain, niche, location, score, summary,
email, facebook, linkedin, instagram, twitter, contact_page,
status, source, discovered_at, sent_at, last_action_at, followup_count`

func scanLead(rows interface{ Scan(...any) error }) (domain.Lead, error) {
	var l domain.Lead
	var status, discovered, sent, lastAction string
	if err := rows.Scan(
		&l.ID, &l.BusinessName, &l.URL, &l.Domain, &l.Niche, &l.Location,
		&l.Score, &l.Summary,
		&l.Email, &l.Facebook, &l.LinkedIn, &l.Instagram, &l.Twitter, &l.ContactPage,
		&status, &l.Source, &discovered, &sent, &lastAction, &l.FollowupCount,
	); err != nil {
		return domain.Lead{}, err
	}
	l.Status = domain.Status(status)
	l.DiscoveredAt, _ = time.Parse(time.RFC3339, discovered)
	l.LastActionAt, _ = time.Parse(time.RFC3339, lastAction)
	if sent != "" {
		if t, err := time.Parse(time.RFC3339, sent); err == nil {
			l.SentAt = &t
		}
	}
	return l, nil
}

func ListLeads(ctx context.Context, db *sql.DB, opts ListLeadsOpts) ([]domain.Lead, error) {
	// defaults
	if opts.Sort == "" {
		opts.Sort = "discovered"
	}
	if opts.Limit <= 0 {
		opts.Limit = 500
	}

	// whitelist sort columns (prevents SQL injection)
	sortCol := map[string]string{
		"score":      "score",
		"discovered": "discovered_at",
		"domain":     "domain",
	}[opts.Sort]
	if sortCol == "" {
		sortCol = "discovered_at"
	}
	order := "DESC"
	if sortCol == "domain" {
		order = "ASC"
	}

	var where []string
	var args []any
	switch opts.Window {
	case "24h":
		where = append(where, "discovered_at >= ?")
		args = append(args, time.Now().UTC().Add(-24*time.Hour).Format(time.RFC3339))
	case "7d":
		where = append(where, "discovered_at >= ?")
		args = append(args, time.Now().UTC().AddDate(0, 0, -7).Format(time.RFC3339))
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}

	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`
SELECT %s
FROM leads
%s
ORDER BY %s %s
LIMIT ?;
`, leadCols, clause, sortCol, order)
	args = append(args, opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LeadsByStatus is the common stage query: everything in one lifecycle state,
// oldest first so batches drain in discovery order.
func LeadsByStatus(ctx context.Context, db *sql.DB, statuses ...domain.Status) ([]domain.Lead, error) {
	if len(statuses) == 0 {
		return nil, errors.New("store: no statuses given")
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	query := fmt.Sprintf(`
SELECT %s
FROM leads
WHERE status IN (%s)
ORDER BY discovered_at ASC;
`, leadCols, marks)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func GetLead(ctx context.Context, db *sql.DB, id int64) (domain.Lead, error) {
	row := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM leads WHERE id = ?;`, leadCols), id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return l, err
}

// KnownDomains loads every domain already in the system so scout never
// re-adds a site it has seen before.
func KnownDomains(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT domain FROM leads WHERE domain != '';`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out[strings.ToLower(d)] = true
	}
	return out, rows.Err()
}

func DeleteLead(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?;`, id)
	return err
}

// CleanupDeadEnds drops dead-end rows older than 3 months; their domains come
// back into scout rotation after that.
func CleanupDeadEnds(db *sql.DB) (deleted int64, err error) {
	cutoff := time.Now().UTC().AddDate(0, -3, 0).Format(time.RFC3339)
	res, err := db.Exec(`
DELETE FROM leads
WHERE status = ? AND last_action_at < ?;
`, string(domain.StatusDeadEnd), cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup dead ends: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
