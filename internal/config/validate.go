package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus errors/warnings the UI
// can render.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.ExcludeSites = trimList(out.Search.ExcludeSites)
	out.Search.ForbiddenHosts = trimList(out.Search.ForbiddenHosts)
	out.Analyst.DeepPaths = trimList(out.Analyst.DeepPaths)
	out.Analyst.EmailPaths = trimList(out.Analyst.EmailPaths)

	// ---- Search ----

	if out.Search.TargetNewLeads <= 0 {
		res.addErr("search.target_new_leads must be > 0")
	}
	if out.Search.ResultsPerPage <= 0 {
		res.addErr("search.results_per_page must be > 0")
	}
	if out.Search.MaxOffset <= 0 {
		res.addErr("search.max_offset must be > 0")
	}
	if len(out.Search.ForbiddenHosts) == 0 {
		res.addWarn("search.forbidden_hosts is empty; directory sites will pollute the lead queue.")
	}

	// ---- Analyst ----

	if out.Analyst.FetchTimeoutSeconds <= 0 {
		res.addErr("analyst.fetch_timeout_seconds must be > 0")
	}
	if out.Analyst.MaxDNAChars <= 0 {
		res.addErr("analyst.max_dna_chars must be > 0")
	}
	if len(out.Analyst.SignalRules) == 0 {
		res.addWarn("analyst.signal_rules is empty; every lead will fall through to the default score.")
	}

	// ---- Outreach ----

	if out.Outreach.MinScore < 0 {
		res.addErr("outreach.min_score must be >= 0")
	}
	if out.Outreach.DelayMinSeconds < 0 || out.Outreach.DelayMaxSeconds < out.Outreach.DelayMinSeconds {
		res.addErr("outreach delay window is invalid (need 0 <= delay_min_seconds <= delay_max_seconds)")
	}
	if strings.TrimSpace(out.Outreach.SMTPHost) == "" {
		res.addWarn("outreach.smtp_host is empty; sniper will fail at send time.")
	}
	if _, ok := out.Outreach.Profiles[out.Outreach.ActiveProfile]; !ok && out.Outreach.ActiveProfile != "" {
		res.addWarn("outreach.active_profile %q has no profile entry; falling back to default.", out.Outreach.ActiveProfile)
	}

	// ---- Closer ----

	if out.Closer.FollowupAfterDays <= 0 {
		res.addErr("closer.followup_after_days must be > 0")
	}
	if strings.TrimSpace(out.Closer.Mailbox) == "" {
		out.Closer.Mailbox = "INBOX"
	}

	// ---- Polling ----

	if out.Polling.CloserSeconds <= 0 {
		res.addErr("polling.closer_seconds must be > 0")
	} else if out.Polling.CloserSeconds < 60 {
		res.addWarn("polling.closer_seconds is very low (%d) and may hit IMAP rate limits.", out.Polling.CloserSeconds)
	}

	// ---- Vault ----

	if out.Vault.Enabled {
		if strings.TrimSpace(out.Vault.Endpoint) == "" {
			res.addErr("vault.endpoint is required when vault.enabled=true")
		}
		if strings.TrimSpace(out.Vault.Bucket) == "" {
			res.addErr("vault.bucket is required when vault.enabled=true")
		}
	}

	return out, res
}
