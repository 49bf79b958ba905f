// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"leadswarm/internal/domain"
)

// ProfilesFile lets an operator keep white-label sender profiles in a
// separate file next to the main config.
type ProfilesFile struct {
	Profiles map[string]domain.Profile `yaml:"profiles"`
}

func OverlayProfiles(cfg *Config, profilesPath string) error {
	b, err := os.ReadFile(profilesPath)
	if err != nil {
		// Missing profiles file should not kill startup
		return nil
	}

	var pf ProfilesFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return err
	}

	if len(pf.Profiles) == 0 {
		return nil
	}
	if cfg.Outreach.Profiles == nil {
		cfg.Outreach.Profiles = make(map[string]domain.Profile, len(pf.Profiles))
	}
	for key, p := range pf.Profiles {
		cfg.Outreach.Profiles[key] = p
	}
	return nil
}
