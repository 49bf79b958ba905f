package outreach

import (
	"fmt"
	"math/rand"
	"strings"

	"leadswarm/internal/domain"
)

// Spintax pools. Rotating phrasing keeps bulk cold email out of the
// template-detection buckets.
var (
	greetings = []string{"Hi there,", "Hello,", "Hey,", "Greetings,"}
	openers   = []string{
		"I was just taking a look at your site",
		"I came across your website",
		"I was reviewing your online presence",
		"My team was just looking at your site",
	}
	transitions = []string{
		"and I noticed a quick win.",
		"and wanted to share an observation.",
		"and spotted a massive area for optimization.",
		"and wanted to drop a quick note.",
	}
	signOffs = []string{"Best,", "Cheers,", "Regards,", "Talk soon,"}
)

func pick(pool []string) string { return pool[rand.Intn(len(pool))] }

// ComposeOutreach builds the initial cold-email subject and body around the
// analyst's pain-point sentence and the active sender profile.
func ComposeOutreach(lead domain.Lead, profile domain.Profile, attach bool) (subject, body string) {
	subject = fmt.Sprintf("A specific idea for %s", lead.Domain)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", pick(greetings))
	fmt.Fprintf(&b, "%s at %s %s\n\n", pick(openers), lead.URL, pick(transitions))
	fmt.Fprintf(&b, "%s\n\n", lead.Summary)
	if attach {
		fmt.Fprintf(&b, "I've attached a custom strategic briefing showing exactly how %s can plug this leak.\n\n", profile.CompanyName)
	}
	if profile.Phone != "" {
		fmt.Fprintf(&b, "Let's chat: %s\n", profile.Phone)
	}
	if profile.TrustLink != "" {
		fmt.Fprintf(&b, "Trust link: %s\n", profile.TrustLink)
	}
	fmt.Fprintf(&b, "\n%s\n%s\n", pick(signOffs), profile.SenderName)

	return subject, b.String()
}

// ComposeFollowup builds the single polite nudge the closer sends when an
// outreach goes unanswered past the threshold.
func ComposeFollowup(lead domain.Lead, profile domain.Profile) (subject, body string) {
	subject = fmt.Sprintf("Re: Question about %s's lead flow", lead.Domain)

	var b strings.Builder
	b.WriteString("Hi again,\n\n")
	b.WriteString("I know things get buried in the inbox, so I just wanted to float this to the top.\n\n")
	fmt.Fprintf(&b, "Did you get a chance to look at the audit I sent over for %s?\n\n", lead.Domain)
	b.WriteString("I'm confident that fixing the leak we identified will have an immediate impact on your conversion rates.\n\n")
	b.WriteString("Let me know if you'd like me to resend the link.\n\n")
	fmt.Fprintf(&b, "Best,\n%s\n", profile.SenderName)

	return subject, b.String()
}
