package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"leadswarm/internal/domain"
	"leadswarm/internal/webutil"
)

// The CSV surface exists for interchange only; the sqlite table is the
// system of record. The leading comment record carries the schema version.
const csvSchemaComment = "# leadswarm leads export schema=1"

var csvHeader = []string{
	"business_name", "url", "domain", "niche", "location", "score", "summary",
	"email", "facebook", "linkedin", "instagram", "twitter", "contact_page",
	"status", "source", "discovered_at", "sent_at", "last_action_at", "followup_count",
}

func ExportCSV(ctx context.Context, db *sql.DB, w io.Writer) error {
	leads, err := ListLeads(ctx, db, ListLeadsOpts{Window: "all", Limit: 1 << 20})
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, csvSchemaComment+"\n"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range leads {
		sent := ""
		if l.SentAt != nil {
			sent = l.SentAt.Format(time.RFC3339)
		}
		rec := []string{
			l.BusinessName, l.URL, l.Domain, l.Niche, l.Location,
			strconv.Itoa(l.Score), l.Summary,
			l.Email, l.Facebook, l.LinkedIn, l.Instagram, l.Twitter, l.ContactPage,
			string(l.Status), l.Source,
			l.DiscoveredAt.Format(time.RFC3339), sent,
			l.LastActionAt.Format(time.RFC3339),
			strconv.Itoa(l.FollowupCount),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads either a full export or the legacy two-column
// leads_queue.csv shape (URL,Status). Rows dedupe by domain on insert;
// malformed rows are skipped and counted, never fatal.
func ImportCSV(ctx context.Context, db *sql.DB, r io.Reader) (added, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}

	idx := map[string]int{}
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	urlIdx, ok := idx["url"]
	if !ok {
		return 0, 0, fmt.Errorf("csv has no url column (header %v)", header)
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for {
		rec, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			skipped++
			continue
		}
		if urlIdx >= len(rec) || strings.TrimSpace(rec[urlIdx]) == "" {
			skipped++
			continue
		}

		status := domain.StatusNew
		if s := field(rec, "status"); s != "" {
			parsed, perr := domain.ParseStatus(s)
			if perr != nil {
				skipped++
				continue
			}
			status = parsed
		}

		score := 0
		if s := field(rec, "score"); s != "" {
			score, _ = strconv.Atoi(s)
		}
		followups := 0
		if s := field(rec, "followup_count"); s != "" {
			followups, _ = strconv.Atoi(s)
		}

		l := domain.Lead{
			BusinessName:  field(rec, "business_name"),
			URL:           strings.TrimSpace(rec[urlIdx]),
			Domain:        webutil.CanonicalDomain(rec[urlIdx]),
			Niche:         field(rec, "niche"),
			Location:      field(rec, "location"),
			Score:         score,
			Summary:       field(rec, "summary"),
			Email:         field(rec, "email"),
			Facebook:      field(rec, "facebook"),
			LinkedIn:      field(rec, "linkedin"),
			Instagram:     field(rec, "instagram"),
			Twitter:       field(rec, "twitter"),
			ContactPage:   field(rec, "contact_page"),
			Status:        status,
			Source:        "import",
			FollowupCount: followups,
		}
		if ts := field(rec, "discovered_at"); ts != "" {
			l.DiscoveredAt, _ = time.Parse(time.RFC3339, ts)
		}

		ok, ierr := InsertLeadIgnore(ctx, db, l)
		if ierr != nil {
			skipped++
			continue
		}
		if ok {
			added++
		} else {
			skipped++
		}
	}
	return added, skipped, nil
}
