package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadswarm/internal/domain"
)

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := Load("../../config/config.yml")
	require.NoError(t, err)

	normalized, vr := NormalizeAndValidate(cfg)
	assert.True(t, vr.OK(), "default config must validate: %v", vr.Errors)

	assert.Equal(t, "serpapi", normalized.Search.Engine)
	assert.Greater(t, normalized.Search.TargetNewLeads, 0)
	assert.NotEmpty(t, normalized.Search.ForbiddenHosts)
	assert.NotEmpty(t, normalized.Analyst.SignalRules)
	assert.Equal(t, 5, normalized.Outreach.MinScore)
	assert.Equal(t, "INBOX", normalized.Closer.Mailbox)
	require.NoError(t, Validate(normalized))
}

func TestNormalizeAndValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load("../../config/config.yml")
		require.NoError(t, err)
		return cfg
	}

	t.Run("trims and dedupes lists", func(t *testing.T) {
		cfg := valid()
		cfg.Search.ForbiddenHosts = []string{" yelp.com ", "yelp.com", "", "YELP.COM", "bbb.org"}
		out, vr := NormalizeAndValidate(cfg)
		require.True(t, vr.OK())
		assert.Equal(t, []string{"yelp.com", "bbb.org"}, out.Search.ForbiddenHosts)
	})

	t.Run("rejects bad numbers", func(t *testing.T) {
		cfg := valid()
		cfg.Search.TargetNewLeads = 0
		cfg.Closer.FollowupAfterDays = -1
		_, vr := NormalizeAndValidate(cfg)
		assert.False(t, vr.OK())
		assert.Len(t, vr.Errors, 2)
	})

	t.Run("rejects inverted delay window", func(t *testing.T) {
		cfg := valid()
		cfg.Outreach.DelayMinSeconds = 60
		cfg.Outreach.DelayMaxSeconds = 10
		_, vr := NormalizeAndValidate(cfg)
		assert.False(t, vr.OK())
	})

	t.Run("defaults empty mailbox to INBOX", func(t *testing.T) {
		cfg := valid()
		cfg.Closer.Mailbox = "  "
		out, vr := NormalizeAndValidate(cfg)
		require.True(t, vr.OK())
		assert.Equal(t, "INBOX", out.Closer.Mailbox)
	})

	t.Run("vault fields required when enabled", func(t *testing.T) {
		cfg := valid()
		cfg.Vault.Enabled = true
		cfg.Vault.Endpoint = ""
		cfg.Vault.Bucket = ""
		_, vr := NormalizeAndValidate(cfg)
		assert.False(t, vr.OK())
	})
}

func TestSaveAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg, err := Load("../../config/config.yml")
	require.NoError(t, err)

	require.NoError(t, SaveAtomic(path, cfg))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Outreach.MinScore, reloaded.Outreach.MinScore)

	// second save keeps a .bak of the previous version
	cfg.Outreach.MinScore = 7
	require.NoError(t, SaveAtomic(path, cfg))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)

	reloaded, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.Outreach.MinScore)
}

func TestSaveAtomic_RejectsInvalid(t *testing.T) {
	var cfg Config
	cfg.App.Port = -1
	err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg)
	assert.Error(t, err)
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir, "../../config/config.yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)

	// user edits survive a second bootstrap
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 9999\n"), 0o644))
	again, err := EnsureUserConfig(dir, "../../config/config.yml")
	require.NoError(t, err)
	cfg, err := Load(again)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.App.Port)
}

func TestOverlayProfiles(t *testing.T) {
	dir := t.TempDir()
	profilesPath := filepath.Join(dir, "profiles.yml")
	require.NoError(t, os.WriteFile(profilesPath, []byte(`
profiles:
  whitelabel:
    company_name: Shadow Corp
    sender_name: Jordan
`), 0o644))

	var cfg Config
	cfg.Outreach.Profiles = map[string]domain.Profile{"default": {SenderName: "Alex"}}

	require.NoError(t, OverlayProfiles(&cfg, profilesPath))
	assert.Len(t, cfg.Outreach.Profiles, 2)
	assert.Equal(t, "Jordan", cfg.Outreach.Profiles["whitelabel"].SenderName)

	t.Run("missing file is not fatal", func(t *testing.T) {
		require.NoError(t, OverlayProfiles(&cfg, filepath.Join(dir, "nope.yml")))
	})
}

func TestActiveProfile(t *testing.T) {
	var cfg Config
	cfg.Outreach.Profiles = map[string]domain.Profile{
		"default": {SenderName: "Alex"},
		"alt":     {SenderName: "Sam"},
	}

	cfg.Outreach.ActiveProfile = "alt"
	assert.Equal(t, "Sam", cfg.ActiveProfile().SenderName)

	cfg.Outreach.ActiveProfile = "missing"
	assert.Equal(t, "Alex", cfg.ActiveProfile().SenderName)
}
