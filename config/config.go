package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"pointsledger/native/rewards"
)

// Config is the host configuration for the reward ledger.
type Config struct {
	// DataDir is where the persistent record store lives.
	DataDir string `toml:"DataDir"`
	// ServiceName labels log lines emitted by the host.
	ServiceName string `toml:"ServiceName"`
	// Environment labels log lines (e.g. "dev", "prod").
	Environment string `toml:"Environment"`
	// LogFile, when set, routes logs to a size-rotated file instead of
	// stdout.
	LogFile string `toml:"LogFile"`
	// CredentialIssuer is the issuer claim expected on capability tokens.
	CredentialIssuer string `toml:"CredentialIssuer"`

	Policy Policy `toml:"Policy"`
}

// Policy configures reward issuance and bonus behaviour.
type Policy struct {
	// SelfServiceCreate lets customers issue rewards for themselves; when
	// false, creation requires the reward admin capability.
	SelfServiceCreate bool `toml:"SelfServiceCreate"`
	// ReferralBonus is the one-time referral point grant.
	ReferralBonus uint64 `toml:"ReferralBonus"`
	// TriggerBonus is the point grant applied by an external event trigger.
	TriggerBonus uint64 `toml:"TriggerBonus"`
	// TriggerValidationPhrase validates the reward instead of granting
	// points when a trigger payload matches it exactly.
	TriggerValidationPhrase string `toml:"TriggerValidationPhrase"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		DataDir:          "./pointsledger-data",
		ServiceName:      "pointsledger",
		Environment:      "dev",
		CredentialIssuer: "pointsledger",
		Policy: Policy{
			SelfServiceCreate: false,
			ReferralBonus:     250,
			TriggerBonus:      100,
		},
	}
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	for _, undecoded := range meta.Undecoded() {
		return nil, fmt.Errorf("config file %s contains unknown key %q", path, undecoded.String())
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaults.DataDir
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		c.ServiceName = defaults.ServiceName
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = defaults.Environment
	}
	if strings.TrimSpace(c.CredentialIssuer) == "" {
		c.CredentialIssuer = defaults.CredentialIssuer
	}
}

// Validate rejects configurations the engine cannot honour.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil configuration")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir is required")
	}
	return nil
}

// EnginePolicy converts the configured policy into the engine's policy type.
func (c *Config) EnginePolicy() rewards.Policy {
	return rewards.Policy{
		SelfServiceCreate:       c.Policy.SelfServiceCreate,
		ReferralBonus:           c.Policy.ReferralBonus,
		TriggerBonus:            c.Policy.TriggerBonus,
		TriggerValidationPhrase: c.Policy.TriggerValidationPhrase,
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
