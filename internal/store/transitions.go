package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"leadswarm/internal/domain"
)

// Analysis is what the analyst learned about a lead. Status must be one of
// the analyze outcomes (analyzed/needs_dm/use_form/dead_end).
type Analysis struct {
	Score       int
	Summary     string
	Email       string
	Facebook    string
	LinkedIn    string
	Instagram   string
	Twitter     string
	ContactPage string
	Status      domain.Status
}

// transition moves a lead to a new status after validating the step against
// the lifecycle. The WHERE clause re-checks the current status so a
// concurrent mutation loses cleanly instead of clobbering.
func transition(ctx context.Context, db *sql.DB, id int64, to domain.Status, set string, args ...any) error {
	cur, err := GetLead(ctx, db, id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(cur.Status, to) {
		return fmt.Errorf("%w: %s -> %s (lead %d)", ErrBadTransition, cur.Status, to, id)
	}

	query := fmt.Sprintf(`
UPDATE leads
SET status = ?, last_action_at = ?%s
WHERE id = ? AND status = ?;`, set)

	full := []any{string(to), time.Now().UTC().Format(time.RFC3339)}
	full = append(full, args...)
	full = append(full, id, string(cur.Status))

	res, err := db.ExecContext(ctx, query, full...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: lead %d changed underneath us", ErrBadTransition, id)
	}
	return nil
}

func ApplyAnalysis(ctx context.Context, db *sql.DB, id int64, a Analysis) error {
	switch a.Status {
	case domain.StatusAnalyzed, domain.StatusNeedsDM, domain.StatusUseForm, domain.StatusDeadEnd:
	default:
		return fmt.Errorf("%w: %q is not an analysis outcome", ErrBadTransition, a.Status)
	}
	return transition(ctx, db, id, a.Status,
		`, score = ?, summary = ?, email = ?, facebook = ?, linkedin = ?, instagram = ?, twitter = ?, contact_page = ?`,
		a.Score, a.Summary, a.Email, a.Facebook, a.LinkedIn, a.Instagram, a.Twitter, a.ContactPage,
	)
}

func MarkContacted(ctx context.Context, db *sql.DB, id int64, at time.Time) error {
	return transition(ctx, db, id, domain.StatusContacted,
		`, sent_at = ?`, at.UTC().Format(time.RFC3339))
}

// MarkDeadEnd parks a lead that can never be contacted.
func MarkDeadEnd(ctx context.Context, db *sql.DB, id int64) error {
	return transition(ctx, db, id, domain.StatusDeadEnd, ``)
}

func MarkSendFailed(ctx context.Context, db *sql.DB, id int64) error {
	return transition(ctx, db, id, domain.StatusSendFailed, ``)
}

func MarkReplied(ctx context.Context, db *sql.DB, id int64) error {
	return transition(ctx, db, id, domain.StatusReplied, ``)
}

func MarkFollowedUp(ctx context.Context, db *sql.DB, id int64) error {
	return transition(ctx, db, id, domain.StatusFollowedUp,
		`, followup_count = followup_count + 1`)
}

// SetEmail backfills an enriched contact address without touching status.
func SetEmail(ctx context.Context, db *sql.DB, id int64, email string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE leads SET email = ? WHERE id = ?;`, email, id)
	return err
}
