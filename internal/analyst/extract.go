package analyst

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

var emailIgnoreTerms = []string{
	"sentry", "no-reply", "noreply", "example", "domain", "email", "username", "user", "test",
}

var emailIgnoreExts = []string{
	".png", ".jpg", ".jpeg", ".gif", ".css", ".js", ".svg", ".woff", ".woff2", ".ttf", ".webp",
}

// ExtractEmail pulls the first plausible contact address out of page text.
// Minified asset names match the email regex surprisingly often, hence the
// extension filter.
func ExtractEmail(text string) string {
	for _, m := range emailRe.FindAllString(text, -1) {
		lower := strings.ToLower(m)

		skip := false
		for _, term := range emailIgnoreTerms {
			if strings.Contains(lower, term) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		for _, ext := range emailIgnoreExts {
			if strings.HasSuffix(lower, ext) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		return m
	}
	return ""
}
