package closer

import (
	"context"
	"database/sql"
	"log"
	"time"

	"leadswarm/internal/config"
	"leadswarm/internal/domain"
	"leadswarm/internal/outreach"
	"leadswarm/internal/store"
)

// Result is what one closer sweep accomplished.
type Result struct {
	Replied    int
	FollowedUp int
}

// Run checks the inbox for replies from contacted leads and nudges the quiet
// ones once the follow-up window has passed. A mailbox error on a lead means
// we cannot prove silence, so that lead is left alone rather than risk a
// follow-up on top of a reply we failed to see.
func Run(ctx context.Context, db *sql.DB, cfg config.Config, mbox Mailbox, sender outreach.Sender) (Result, error) {
	var res Result

	leads, err := store.LeadsByStatus(ctx, db, domain.StatusContacted, domain.StatusFollowedUp)
	if err != nil {
		return res, err
	}
	if len(leads) == 0 {
		log.Printf("[closer] no open conversations")
		return res, nil
	}

	profile := cfg.ActiveProfile()
	window := time.Duration(cfg.Closer.FollowupAfterDays) * 24 * time.Hour
	now := time.Now()

	for _, l := range leads {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if l.Email == "" || l.SentAt == nil {
			continue
		}

		replied, merr := mbox.HasReplyFrom(ctx, l.Email, *l.SentAt)
		if merr != nil {
			log.Printf("[closer] inbox check %s: %v", l.Email, merr)
			continue
		}
		if replied {
			if terr := store.MarkReplied(ctx, db, l.ID); terr != nil {
				log.Printf("[closer] mark replied %s: %v", l.Domain, terr)
				continue
			}
			res.Replied++
			log.Printf("[closer] reply from %s (%s)", l.Email, l.Domain)
			continue
		}

		// One nudge per lead, never more.
		if l.Status != domain.StatusContacted || l.FollowupCount > 0 {
			continue
		}
		if now.Sub(*l.SentAt) < window {
			continue
		}

		subject, body := outreach.ComposeFollowup(l, profile)
		msg := outreach.OutboundEmail{
			From:     cfg.Outreach.Username,
			FromName: profile.SenderName,
			To:       l.Email,
			Subject:  subject,
			Body:     body,
		}
		if serr := sender.Send(ctx, msg); serr != nil {
			log.Printf("[closer] follow-up to %s failed: %v", l.Email, serr)
			continue
		}
		if terr := store.MarkFollowedUp(ctx, db, l.ID); terr != nil {
			log.Printf("[closer] mark followed_up %s: %v", l.Domain, terr)
			continue
		}
		res.FollowedUp++
		log.Printf("[closer] followed up with %s (%s)", l.Email, l.Domain)
	}

	log.Printf("[closer] done, replied=%d followed_up=%d", res.Replied, res.FollowedUp)
	return res, nil
}
