package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"leadswarm/internal/domain"
)

// Rule is a keyword signal used by the heuristic analyzer. Matching any term
// adds Weight to the lead's qualification score and nominates Summary as the
// pain-point sentence.
type Rule struct {
	Tag     string   `yaml:"tag" json:"tag"`
	Weight  int      `yaml:"weight" json:"weight"`
	Any     []string `yaml:"any" json:"any"`
	Summary string   `yaml:"summary" json:"summary"`
}

type Penalty struct {
	Reason string   `yaml:"reason" json:"reason"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Search struct {
		Engine         string   `yaml:"engine" json:"engine"` // serpapi
		TargetNewLeads int      `yaml:"target_new_leads" json:"target_new_leads"`
		ResultsPerPage int      `yaml:"results_per_page" json:"results_per_page"`
		MaxOffset      int      `yaml:"max_offset" json:"max_offset"`
		ExcludeSites   []string `yaml:"exclude_sites" json:"exclude_sites"`
		ForbiddenHosts []string `yaml:"forbidden_hosts" json:"forbidden_hosts"`
	} `yaml:"search" json:"search"`

	Analyst struct {
		FetchTimeoutSeconds int      `yaml:"fetch_timeout_seconds" json:"fetch_timeout_seconds"`
		DeepPaths           []string `yaml:"deep_paths" json:"deep_paths"`
		EmailPaths          []string `yaml:"email_paths" json:"email_paths"`
		MaxDNAChars         int      `yaml:"max_dna_chars" json:"max_dna_chars"`
		Model               string   `yaml:"model" json:"model"`

		SignalRules []Rule    `yaml:"signal_rules" json:"signal_rules"`
		Penalties   []Penalty `yaml:"penalties" json:"penalties"`
	} `yaml:"analyst" json:"analyst"`

	Outreach struct {
		MinScore        int    `yaml:"min_score" json:"min_score"`
		SMTPHost        string `yaml:"smtp_host" json:"smtp_host"`
		SMTPPort        int    `yaml:"smtp_port" json:"smtp_port"`
		Username        string `yaml:"username" json:"username"`
		DelayMinSeconds int    `yaml:"delay_min_seconds" json:"delay_min_seconds"`
		DelayMaxSeconds int    `yaml:"delay_max_seconds" json:"delay_max_seconds"`
		AttachmentPath  string `yaml:"attachment_path" json:"attachment_path"`
		ActiveProfile   string `yaml:"active_profile" json:"active_profile"`

		Profiles map[string]domain.Profile `yaml:"profiles" json:"profiles"`
	} `yaml:"outreach" json:"outreach"`

	Closer struct {
		IMAPHost          string `yaml:"imap_host" json:"imap_host"`
		IMAPPort          int    `yaml:"imap_port" json:"imap_port"`
		Mailbox           string `yaml:"mailbox" json:"mailbox"`
		FollowupAfterDays int    `yaml:"followup_after_days" json:"followup_after_days"`
	} `yaml:"closer" json:"closer"`

	Polling struct {
		CloserSeconds int `yaml:"closer_seconds" json:"closer_seconds"`
	} `yaml:"polling" json:"polling"`

	Vault struct {
		Enabled  bool   `yaml:"enabled" json:"enabled"`
		Endpoint string `yaml:"endpoint" json:"endpoint"`
		Region   string `yaml:"region" json:"region"`
		Bucket   string `yaml:"bucket" json:"bucket"`
		UseSSL   bool   `yaml:"use_ssl" json:"use_ssl"`
	} `yaml:"vault" json:"vault"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// ActiveProfile resolves the configured sender identity, falling back to the
// "default" profile and then to a zero value so composing never panics.
func (c Config) ActiveProfile() domain.Profile {
	if p, ok := c.Outreach.Profiles[c.Outreach.ActiveProfile]; ok {
		return p
	}
	if p, ok := c.Outreach.Profiles["default"]; ok {
		return p
	}
	return domain.Profile{}
}
