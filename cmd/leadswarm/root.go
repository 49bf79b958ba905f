package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"leadswarm/internal/analyst"
	"leadswarm/internal/closer"
	"leadswarm/internal/config"
	"leadswarm/internal/outreach"
	"leadswarm/internal/rank"
	"leadswarm/internal/scout"
	"leadswarm/internal/secrets"
	"leadswarm/internal/store"
	"leadswarm/internal/webutil"
)

var flagDataDir string

var rootCmd = &cobra.Command{
	Use:   "leadswarm",
	Short: "Autonomous lead generation pipeline for local service businesses",
	Long: `leadswarm finds local businesses with leaky sales funnels, scores their
websites, sends a personalized outreach email, and watches the inbox
for replies.

The pipeline runs in four stages:
  scout   - search the web for businesses in a niche and city
  analyst - fetch each site and score its conversion weaknesses
  sniper  - email qualified leads, one message per business, ever
  closer  - detect replies and send a single follow-up to silent leads`,
	SilenceUsage: true,
}

func init() {
	_ = godotenv.Load()
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "./data", "directory for the database, lock file, and user config")

	rootCmd.AddCommand(scoutCmd)
	rootCmd.AddCommand(analystCmd)
	rootCmd.AddCommand(sniperCmd)
	rootCmd.AddCommand(closerCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(secretsCmd)
}

// runtime is everything an open pipeline stage needs: loaded config, the
// database, and the exclusive stage lock.
type runtime struct {
	cfg     config.Config
	cfgPath string
	db      *store.DB
	lock    *flock.Flock
}

func openRuntime() (*runtime, error) {
	dataDir := flagDataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	cfgPath, err := config.EnsureUserConfig(dataDir, "config/config.yml")
	if err != nil {
		return nil, fmt.Errorf("bootstrap config: %w", err)
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	lock, err := store.AcquireStageLock(dataDir)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(filepath.Join(dataDir, "leads.db"))
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	if err := store.Migrate(db.Pool); err != nil {
		db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &runtime{cfg: cfg, cfgPath: cfgPath, db: db, lock: lock}, nil
}

func loadConfig(cfgPath string) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := config.OverlayProfiles(&cfg, filepath.Join(filepath.Dir(cfgPath), "profiles.yml")); err != nil {
		return cfg, fmt.Errorf("overlay profiles: %w", err)
	}
	normalized, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Printf("level=warn msg=%q", w)
	}
	if !vr.OK() {
		return cfg, fmt.Errorf("config invalid: %v", vr.Errors)
	}
	return normalized, nil
}

func (r *runtime) close() {
	if r.db != nil {
		r.db.Close()
	}
	if r.lock != nil {
		_ = r.lock.Unlock()
	}
}

// buildProvider wires the configured search engine.
func buildProvider(cfg config.Config) (scout.SearchProvider, error) {
	key, err := secrets.Get(secrets.NameSerpAPIKey)
	if err != nil || key == "" {
		return nil, fmt.Errorf("serpapi key not set (run: leadswarm secrets set %s)", secrets.NameSerpAPIKey)
	}
	return scout.NewSerpAPIClient(key, webutil.NewHostLimiter(1, 2)), nil
}

// buildAnalyzer prefers Gemini and falls back to the rule scorer when no API
// key is available.
func buildAnalyzer(ctx context.Context, cfg config.Config) analyst.Analyzer {
	rules := rank.RuleScorer{Cfg: cfg}
	key, err := secrets.Get(secrets.NameGeminiKey)
	if err != nil || key == "" {
		log.Printf("[analyst] no gemini key, using rule scorer only")
		return analyst.RuleAnalyzer{Rules: rules}
	}
	a, err := analyst.NewGeminiAnalyzer(ctx, key, cfg.Analyst.Model, rules)
	if err != nil {
		log.Printf("[analyst] gemini client: %v, using rule scorer only", err)
		return analyst.RuleAnalyzer{Rules: rules}
	}
	return a
}

func buildFetcher(cfg config.Config) *analyst.Fetcher {
	timeout := time.Duration(cfg.Analyst.FetchTimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return analyst.NewFetcher(timeout, webutil.NewHostLimiter(0.5, 1), cfg.Analyst.MaxDNAChars)
}

func buildSender(cfg config.Config) (outreach.Sender, error) {
	pass, err := secrets.Get(secrets.NameEmailPassword)
	if err != nil || pass == "" {
		return nil, fmt.Errorf("email password not set (run: leadswarm secrets set %s)", secrets.NameEmailPassword)
	}
	return &outreach.SMTPSender{
		Host:     cfg.Outreach.SMTPHost,
		Port:     cfg.Outreach.SMTPPort,
		Username: cfg.Outreach.Username,
		Password: pass,
	}, nil
}

// buildEnricher returns nil when Hunter is not configured, which the sniper
// treats as "no enrichment".
func buildEnricher() outreach.EmailEnricher {
	key, err := secrets.Get(secrets.NameHunterKey)
	if err != nil || key == "" {
		return nil
	}
	return outreach.NewHunterClient(key)
}

func dialMailbox(ctx context.Context, cfg config.Config) (closer.Mailbox, error) {
	pass, err := secrets.Get(secrets.NameEmailPassword)
	if err != nil || pass == "" {
		return nil, fmt.Errorf("email password not set (run: leadswarm secrets set %s)", secrets.NameEmailPassword)
	}
	return closer.DialMailbox(ctx, cfg.Closer.IMAPHost, cfg.Closer.IMAPPort,
		cfg.Outreach.Username, pass, cfg.Closer.Mailbox)
}
