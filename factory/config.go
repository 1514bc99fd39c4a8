/*
Package factory provides JSON to Go reward configuration conversion.

PURPOSE:
  Converts JSON configuration documents into a reward.CoefficientTable and
  related settings. This enables tuning without code changes - operators
  can adjust level multipliers in JSON, and the factory creates the proper
  Go structs.

WHY JSON?
  - Non-developers can adjust multipliers
  - Easy integration with an admin UI
  - Version control for reward configuration
  - Database storage of configs

JSON SCHEMA:
  {
    "coefficients": {
      "1": "1.0",
      "2": "1.5",
      "3": "2.0"
    },
    "default_currency": "gems",
    "role_provider": "discord"
  }

  Coefficient values are decimal STRINGS. Float literals would round-trip
  through binary floating point and lose exactness.

USAGE:
  cfg, err := factory.ParseConfig(jsonDoc)
  table := cfg.Coefficients

SEE ALSO:
  - reward/coefficient.go: Lookup contract and default-level policy
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/orbit/reward-engine/ledger"
	"github.com/orbit/reward-engine/reward"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of the engine configuration.
type ConfigJSON struct {
	// Coefficients maps level (as a string key, JSON objects can't have
	// integer keys) to a decimal-string multiplier.
	Coefficients map[string]string `json:"coefficients"`

	DefaultCurrency string `json:"default_currency,omitempty"`
	RoleProvider    string `json:"role_provider,omitempty"`
}

// Config is the parsed, validated engine configuration.
type Config struct {
	Coefficients    *reward.CoefficientTable
	DefaultCurrency ledger.CurrencyID
	RoleProvider    reward.Provider
}

// =============================================================================
// PARSING
// =============================================================================

// ParseConfig parses and validates a JSON configuration document.
func ParseConfig(data []byte) (Config, error) {
	var doc ConfigJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("invalid config JSON: %w", err)
	}

	entries := make(map[int]string, len(doc.Coefficients))
	for rawLevel, coeff := range doc.Coefficients {
		level, err := strconv.Atoi(rawLevel)
		if err != nil {
			return Config{}, fmt.Errorf("coefficient level %q is not an integer", rawLevel)
		}
		entries[level] = coeff
	}

	table, err := reward.NewCoefficientTable(entries)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Coefficients:    table,
		DefaultCurrency: ledger.CurrencyID(doc.DefaultCurrency),
		RoleProvider:    reward.Provider(doc.RoleProvider),
	}
	if cfg.RoleProvider == "" {
		cfg.RoleProvider = reward.ProviderDiscord
	}
	return cfg, nil
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// DefaultConfig returns the built-in configuration used when no file is
// supplied: five levels with multipliers stepping by 0.5.
func DefaultConfig() Config {
	return Config{
		Coefficients: reward.MustCoefficientTable(map[int]string{
			1: "1.0",
			2: "1.5",
			3: "2.0",
			4: "2.5",
			5: "3.0",
		}),
		DefaultCurrency: "coins",
		RoleProvider:    reward.ProviderDiscord,
	}
}
