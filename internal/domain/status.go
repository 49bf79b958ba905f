package domain

import (
	"fmt"
	"strings"
)

// Status is the lead's position in the outreach lifecycle. Transitions are
// validated; stages never write a status the machine doesn't allow.
type Status string

const (
	StatusNew        Status = "new"         // discovered by scout, not analyzed
	StatusAnalyzed   Status = "analyzed"    // scored, has a contact email
	StatusNeedsDM    Status = "needs_dm"    // only social profiles found
	StatusUseForm    Status = "use_form"    // only a contact form found
	StatusDeadEnd    Status = "dead_end"    // no contact path at all
	StatusContacted  Status = "contacted"   // outreach email sent
	StatusSendFailed Status = "send_failed" // send attempted and failed
	StatusReplied    Status = "replied"     // reply detected in inbox
	StatusFollowedUp Status = "followed_up" // single follow-up sent
)

var transitions = map[Status][]Status{
	StatusNew:        {StatusAnalyzed, StatusNeedsDM, StatusUseForm, StatusDeadEnd},
	StatusAnalyzed:   {StatusContacted, StatusSendFailed, StatusDeadEnd},
	StatusSendFailed: {StatusContacted, StatusSendFailed, StatusDeadEnd},
	StatusContacted:  {StatusReplied, StatusFollowedUp},
	StatusFollowedUp: {StatusReplied},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
// Self-transitions are not legal; the store treats them as no-ops anyway.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseStatus maps stored/imported text to a Status. Legacy CSV exports used
// free-text statuses ("Unscanned", "Sent", ...); map those too.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusNew, "unscanned":
		return StatusNew, nil
	case StatusAnalyzed:
		return StatusAnalyzed, nil
	case StatusNeedsDM, "requires dm":
		return StatusNeedsDM, nil
	case StatusUseForm, "use form":
		return StatusUseForm, nil
	case StatusDeadEnd, "dead end":
		return StatusDeadEnd, nil
	case StatusContacted, "sent":
		return StatusContacted, nil
	case StatusSendFailed, "send failed":
		return StatusSendFailed, nil
	case StatusReplied:
		return StatusReplied, nil
	case StatusFollowedUp, "followed up":
		return StatusFollowedUp, nil
	}
	return "", fmt.Errorf("unknown lead status %q", s)
}

func (s Status) String() string { return string(s) }

// Terminal reports whether no stage will touch the lead again.
func (s Status) Terminal() bool {
	return s == StatusDeadEnd || s == StatusReplied
}
