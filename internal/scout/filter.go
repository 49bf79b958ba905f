package scout

import (
	"fmt"
	"strings"

	"leadswarm/internal/config"
)

// BuildQuery quotes the niche/location and excludes directory sites at the
// query level so most junk never comes back at all.
func BuildQuery(cfg config.Config, niche, location string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q %q", niche, location)
	for _, site := range cfg.Search.ExcludeSites {
		b.WriteString(" -site:")
		b.WriteString(site)
	}
	return b.String()
}

// isForbiddenHost catches directory/aggregator domains that slip past the
// query-level exclusions.
func isForbiddenHost(cfg config.Config, host string) bool {
	h := strings.ToLower(host)
	for _, f := range cfg.Search.ForbiddenHosts {
		if f != "" && strings.Contains(h, strings.ToLower(f)) {
			return true
		}
	}
	return false
}

// titleToBusinessName trims the usual search-result tail ("Acme Roofing |
// Dallas TX roofer") down to the business name.
func titleToBusinessName(title string) string {
	for _, sep := range []string{" | ", " – ", " - ", " — "} {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return strings.TrimSpace(title)
}
