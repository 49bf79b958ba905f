package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups the pipeline's secrets in the OS keychain.
	KeyringService = "leadswarm"
)

// Named secrets the stages pull at call time. Env vars are the fallback so
// headless deployments can run without a keychain.
const (
	NameEmailPassword = "email_password"
	NameSerpAPIKey    = "serpapi_key"
	NameGeminiKey     = "gemini_key"
	NameHunterKey     = "hunter_key"
)

var envFallback = map[string]string{
	NameEmailPassword: "EMAIL_PASS",
	NameSerpAPIKey:    "SERP_API_KEY",
	NameGeminiKey:     "GEMINI_API_KEY",
	NameHunterKey:     "HUNTER_API_KEY",
}

func KnownNames() []string {
	return []string{NameEmailPassword, NameSerpAPIKey, NameGeminiKey, NameHunterKey}
}

// Get looks in the keychain first, then the matching env var.
func Get(name string) (string, error) {
	if _, ok := envFallback[name]; !ok {
		return "", fmt.Errorf("unknown secret %q", name)
	}

	pw, err := keyring.Get(KeyringService, name)
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}

	if v := strings.TrimSpace(os.Getenv(envFallback[name])); v != "" {
		return v, nil
	}

	return "", fmt.Errorf("secret %q not found (set it in the keychain or via %s)", name, envFallback[name])
}

func Set(name, value string) error {
	if _, ok := envFallback[name]; !ok {
		return fmt.Errorf("unknown secret %q", name)
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, name, value)
}

func Delete(name string) error {
	if _, ok := envFallback[name]; !ok {
		return fmt.Errorf("unknown secret %q", name)
	}
	return keyring.Delete(KeyringService, name)
}
