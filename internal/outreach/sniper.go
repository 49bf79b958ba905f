package outreach

import (
	"context"
	"database/sql"
	"log"
	"math/rand"
	"strings"
	"time"

	"leadswarm/internal/config"
	"leadswarm/internal/domain"
	"leadswarm/internal/store"
)

// Run sends one outreach email to every qualified lead. A lead qualifies when
// its score meets the configured minimum, it has an address, and that address
// has never been mailed before in any prior run.
func Run(ctx context.Context, db *sql.DB, cfg config.Config, sender Sender, enricher EmailEnricher) (sent int, err error) {
	leads, err := store.LeadsByStatus(ctx, db, domain.StatusAnalyzed, domain.StatusSendFailed)
	if err != nil {
		return 0, err
	}
	if len(leads) == 0 {
		log.Printf("[sniper] nothing to send")
		return 0, nil
	}

	history, err := sentHistory(ctx, db)
	if err != nil {
		return 0, err
	}

	profile := cfg.ActiveProfile()
	mailed := map[string]bool{}

	for i, l := range leads {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if l.Score < cfg.Outreach.MinScore {
			continue
		}

		email := strings.ToLower(strings.TrimSpace(l.Email))
		if email == "" && enricher != nil && l.Domain != "" {
			found, eerr := enricher.FindEmail(ctx, l.Domain)
			if eerr != nil {
				log.Printf("[sniper] enrich %s: %v", l.Domain, eerr)
			} else if found != "" {
				email = strings.ToLower(found)
				if serr := store.SetEmail(ctx, db, l.ID, email); serr != nil {
					log.Printf("[sniper] save email for %s: %v", l.Domain, serr)
				}
			}
		}
		if email == "" {
			if terr := store.MarkDeadEnd(ctx, db, l.ID); terr != nil {
				log.Printf("[sniper] park %s: %v", l.Domain, terr)
			}
			continue
		}
		if history[email] || mailed[email] {
			log.Printf("[sniper] skip %s: already contacted %s", l.Domain, email)
			continue
		}

		subject, body := ComposeOutreach(l, profile, cfg.Outreach.AttachmentPath != "")
		msg := OutboundEmail{
			From:           cfg.Outreach.Username,
			FromName:       profile.SenderName,
			To:             email,
			Subject:        subject,
			Body:           body,
			AttachmentPath: cfg.Outreach.AttachmentPath,
		}

		if serr := sender.Send(ctx, msg); serr != nil {
			log.Printf("[sniper] send to %s failed: %v", email, serr)
			if terr := store.MarkSendFailed(ctx, db, l.ID); terr != nil {
				log.Printf("[sniper] mark send_failed %s: %v", l.Domain, terr)
			}
			continue
		}

		if terr := store.MarkContacted(ctx, db, l.ID, time.Now()); terr != nil {
			log.Printf("[sniper] mark contacted %s: %v", l.Domain, terr)
			continue
		}
		mailed[email] = true
		sent++
		log.Printf("[sniper] sent to %s (%s, score %d)", email, l.Domain, l.Score)

		if i < len(leads)-1 {
			if err := sleepJitter(ctx, cfg.Outreach.DelayMinSeconds, cfg.Outreach.DelayMaxSeconds); err != nil {
				return sent, err
			}
		}
	}

	log.Printf("[sniper] done, sent=%d", sent)
	return sent, nil
}

// sentHistory collects every address mailed in past runs so a business that
// reappears under a new domain never hears from us twice.
func sentHistory(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	prior, err := store.LeadsByStatus(ctx, db,
		domain.StatusContacted, domain.StatusReplied, domain.StatusFollowedUp)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(prior))
	for _, l := range prior {
		if e := strings.ToLower(strings.TrimSpace(l.Email)); e != "" {
			out[e] = true
		}
	}
	return out, nil
}

func sleepJitter(ctx context.Context, minSec, maxSec int) error {
	if maxSec <= 0 {
		return nil
	}
	if maxSec < minSec {
		maxSec = minSec
	}
	span := maxSec - minSec
	d := time.Duration(minSec) * time.Second
	if span > 0 {
		d += time.Duration(rand.Intn(span*1000)) * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
