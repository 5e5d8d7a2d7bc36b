// Package config loads the accounts and classification rules used by the
// journal generator from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrConfigNotFound = errors.New("configuration file not found")

// Account is one ledger account from accounts.yml.
type Account struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Identifier string `yaml:"identifier,omitempty"`
}

// Conditions gate a classification rule. A rule with no keywords never
// matches.
type Conditions struct {
	Keywords []string `yaml:"keywords"`
}

// Rule routes transactions whose description contains one of the keywords
// to the named account. Rules are evaluated in file order; first match wins.
type Rule struct {
	Name       string     `yaml:"name"`
	Conditions Conditions `yaml:"conditions"`
	Account    string     `yaml:"account"`
}

type accountsFile struct {
	Accounts []Account `yaml:"accounts"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadAccounts reads accounts.yml. A file without an accounts list yields
// an empty slice, not an error.
func LoadAccounts(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read accounts config: %w", err)
	}

	var f accountsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse accounts config %s: %w", path, err)
	}
	return f.Accounts, nil
}

// LoadRules reads rules.yml. A file without a rules list yields an empty
// slice, not an error.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read rules config: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules config %s: %w", path, err)
	}
	return f.Rules, nil
}

// DefaultBankAccount returns the name of the first Asset account, or the
// fallback when no asset account is configured.
func DefaultBankAccount(accounts []Account, fallback string) string {
	for _, acc := range accounts {
		if strings.EqualFold(acc.Type, "asset") && acc.Name != "" {
			return acc.Name
		}
	}
	return fallback
}
