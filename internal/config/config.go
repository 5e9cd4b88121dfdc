package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategies select which rule source drives resolution. Fixed per
// deployment, never switched on data at runtime.
const (
	StrategySplit    = "split"
	StrategyCombined = "combined"
)

// Audit backends.
const (
	AuditCSV    = "csv"
	AuditSQLite = "sqlite"
)

// Config models openhours.yml.
type Config struct {
	Strategy string `yaml:"strategy"`
	Rules    struct {
		Holiday       string `yaml:"holiday"`
		BusinessHours string `yaml:"business_hours"`
		Combined      string `yaml:"combined"`
	} `yaml:"rules"`
	Audit struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"audit"`
	Lookups struct {
		BusinessHours  string `yaml:"business_hours"`
		PublicHolidays string `yaml:"public_holidays"`
	} `yaml:"lookups"`
	Random struct {
		Year int `yaml:"year"`
	} `yaml:"random"`
}

// Load reads and validates config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with oh config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategySplit:
		if c.Rules.Holiday == "" {
			return fmt.Errorf("config.rules.holiday is required for the split strategy")
		}
		if c.Rules.BusinessHours == "" {
			return fmt.Errorf("config.rules.business_hours is required for the split strategy")
		}
	case StrategyCombined:
		if c.Rules.Combined == "" {
			return fmt.Errorf("config.rules.combined is required for the combined strategy")
		}
	default:
		return fmt.Errorf("config.strategy must be %q or %q", StrategySplit, StrategyCombined)
	}
	switch c.Audit.Backend {
	case AuditCSV, AuditSQLite:
	default:
		return fmt.Errorf("config.audit.backend must be %q or %q", AuditCSV, AuditSQLite)
	}
	if c.Audit.Path == "" {
		return fmt.Errorf("config.audit.path is required")
	}
	if c.Random.Year <= 0 {
		return fmt.Errorf("config.random.year is required")
	}
	return nil
}

// Default returns the default Config struct.
func Default() *Config {
	cfg, err := FromYAML([]byte(defaultTemplate))
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// GenerateDefault returns the default config YAML.
func GenerateDefault() string { return defaultTemplate }

const defaultTemplate = `strategy: split

rules:
  holiday: rules/public_holidays.yml
  business_hours: rules/business_hours.yml
  combined: rules/combined_business_and_holidays.yml

audit:
  backend: csv
  path: data/decision_log.csv

lookups:
  business_hours: data/business_hours.csv
  public_holidays: data/2026_pubhol_QLD.csv

random:
  year: 2026
`
