package analyst

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"leadswarm/internal/config"
	"leadswarm/internal/domain"
	"leadswarm/internal/store"
	"leadswarm/internal/webutil"
)

const fetchFailedSummary = "Could not fetch site content"

// Run analyzes every status=new lead: fetch the site, build the combined
// "site DNA", score it, dig for a contact email, and write the outcome back.
// Already-analyzed rows are never touched, so re-runs are no-ops. A bad row
// logs and the batch moves on.
func Run(ctx context.Context, db *sql.DB, cfg config.Config, getter SiteGetter, analyzer Analyzer) (analyzed int, err error) {
	pending, err := store.LeadsByStatus(ctx, db, domain.StatusNew)
	if err != nil {
		return 0, fmt.Errorf("load pending leads: %w", err)
	}
	if len(pending) == 0 {
		log.Printf("[analyst] nothing to analyze")
		return 0, nil
	}
	log.Printf("[analyst] found %d leads to analyze", len(pending))

	for _, lead := range pending {
		select {
		case <-ctx.Done():
			return analyzed, ctx.Err()
		default:
		}

		a, aerr := analyzeOne(ctx, cfg, getter, analyzer, lead)
		if aerr != nil {
			log.Printf("[analyst] lead id=%d url=%s err=%v", lead.ID, lead.URL, aerr)
			continue
		}

		if uerr := store.ApplyAnalysis(ctx, db, lead.ID, a); uerr != nil {
			log.Printf("[analyst] apply analysis id=%d err=%v", lead.ID, uerr)
			continue
		}
		analyzed++
		log.Printf("[analyst] analyzed url=%s status=%s score=%d", lead.URL, a.Status, a.Score)
	}

	log.Printf("[analyst] ok analyzed=%d", analyzed)
	return analyzed, nil
}

func analyzeOne(ctx context.Context, cfg config.Config, getter SiteGetter, analyzer Analyzer, lead domain.Lead) (store.Analysis, error) {
	homeText, links, ferr := getter.FetchText(ctx, lead.URL, 1)

	if ferr != nil || homeText == "" {
		// No content at all: the contact links may still save the lead.
		a := store.Analysis{Summary: fetchFailedSummary, Status: statusForContact("", links)}
		return a, nil
	}

	dna := buildSiteDNA(ctx, cfg, getter, lead.URL, homeText, &links)

	rep, err := analyzer.Analyze(ctx, dna)
	if err != nil {
		return store.Analysis{}, fmt.Errorf("analyze: %w", err)
	}

	email := firstMailto(links)
	if email == "" {
		email = ExtractEmail(dna)
	}
	if email == "" {
		email = deepSearchEmail(ctx, cfg, getter, lead.URL)
	}

	return store.Analysis{
		Score:       rep.Score,
		Summary:     rep.Summary,
		Email:       email,
		Facebook:    links.Facebook,
		LinkedIn:    links.LinkedIn,
		Instagram:   links.Instagram,
		Twitter:     links.Twitter,
		ContactPage: links.ContactPage,
		Status:      statusForContact(email, links),
	}, nil
}

// buildSiteDNA concatenates the homepage with the configured deep-context
// pages. Sub-pages fetch concurrently; output order stays deterministic.
func buildSiteDNA(ctx context.Context, cfg config.Config, getter SiteGetter, leadURL, homeText string, links *PageLinks) string {
	var b strings.Builder
	b.WriteString("--- HOMEPAGE ---\n")
	b.WriteString(homeText)
	b.WriteString("\n")

	base := webutil.BaseURL(leadURL)
	paths := cfg.Analyst.DeepPaths

	texts := make([]string, len(paths))
	pageLinks := make([]PageLinks, len(paths))

	var g errgroup.Group
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			// best-effort: a missing sub-page is not an error
			text, pl, err := getter.FetchText(ctx, base+path, 0)
			if err == nil {
				texts[i] = text
				pageLinks[i] = pl
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, path := range paths {
		if texts[i] == "" {
			continue
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n", strings.ToUpper(path), texts[i])
		links.merge(pageLinks[i])
	}

	dna := b.String()
	if max := cfg.Analyst.MaxDNAChars; max > 0 && len(dna) > max {
		dna = dna[:max]
	}
	return dna
}

// deepSearchEmail walks the likely contact pages until one yields an address.
func deepSearchEmail(ctx context.Context, cfg config.Config, getter SiteGetter, leadURL string) string {
	base := webutil.BaseURL(leadURL)
	for _, path := range cfg.Analyst.EmailPaths {
		text, _, err := getter.FetchText(ctx, base+path, 0)
		if err != nil || text == "" {
			continue
		}
		if email := ExtractEmail(text); email != "" {
			log.Printf("[analyst] deep search found email on %s", path)
			return email
		}
	}
	return ""
}

func firstMailto(links PageLinks) string {
	for _, m := range links.Mailtos {
		if e := ExtractEmail(m); e != "" {
			return e
		}
	}
	return ""
}

// statusForContact picks the analysis outcome from the best available
// contact path: email beats DMs beats a bare form.
func statusForContact(email string, links PageLinks) domain.Status {
	switch {
	case email != "":
		return domain.StatusAnalyzed
	case links.HasSocial():
		return domain.StatusNeedsDM
	case links.ContactPage != "":
		return domain.StatusUseForm
	default:
		return domain.StatusDeadEnd
	}
}
