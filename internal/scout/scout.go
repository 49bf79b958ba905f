package scout

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"leadswarm/internal/config"
	"leadswarm/internal/domain"
	"leadswarm/internal/store"
	"leadswarm/internal/webutil"
)

// Run pages through search results until it has target_new_leads fresh
// domains or hits the offset breakout, inserting each as status=new.
// Zero results is a normal outcome, not an error.
func Run(ctx context.Context, db *sql.DB, cfg config.Config, provider SearchProvider, niche, location string) (added int, err error) {
	niche = strings.TrimSpace(niche)
	location = strings.TrimSpace(location)
	if niche == "" || location == "" {
		return 0, fmt.Errorf("scout needs both a niche and a location")
	}

	known, err := store.KnownDomains(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("load known domains: %w", err)
	}
	if len(known) > 0 {
		log.Printf("[scout] loaded %d known domains to skip", len(known))
	}

	query := BuildQuery(cfg, niche, location)
	log.Printf("[scout] searching via %s: %s", provider.Name(), query)

	target := cfg.Search.TargetNewLeads
	perPage := cfg.Search.ResultsPerPage
	maxOffset := cfg.Search.MaxOffset

	offset := 0
	for added < target {
		if offset >= maxOffset {
			log.Printf("[scout] safety breakout: offset %d reached with %d/%d new leads", offset, added, target)
			break
		}

		results, serr := provider.Search(ctx, query, offset, perPage)
		if serr != nil {
			// Exit on API error; whatever was inserted so far stays.
			return added, fmt.Errorf("search page offset=%d: %w", offset, serr)
		}
		if len(results) == 0 {
			log.Printf("[scout] no more organic results, ending search")
			break
		}

		for _, r := range results {
			if added >= target {
				break
			}
			link := strings.TrimSpace(r.Link)
			if link == "" {
				continue
			}

			host := webutil.CanonicalDomain(link)
			if host == "" {
				continue
			}
			if known[host] {
				continue
			}
			if isForbiddenHost(cfg, host) {
				continue
			}

			lead := domain.Lead{
				BusinessName: titleToBusinessName(r.Title),
				URL:          webutil.CanonicalizeURL(link),
				Domain:       host,
				Niche:        niche,
				Location:     location,
				Status:       domain.StatusNew,
				Source:       provider.Name(),
			}

			ok, ierr := store.InsertLeadIgnore(ctx, db, lead)
			if ierr != nil {
				log.Printf("[scout] insert error domain=%q err=%v", host, ierr)
				continue
			}
			known[host] = true
			if ok {
				added++
				log.Printf("[scout] lead found: %s", lead.URL)
			}
		}

		offset += perPage
	}

	if added == 0 {
		log.Printf("[scout] no new direct business websites found for %q in %q", niche, location)
	} else {
		log.Printf("[scout] ok added=%d", added)
	}
	return added, nil
}
