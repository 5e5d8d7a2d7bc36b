package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAccounts(t *testing.T) {
	path := writeFile(t, "accounts.yml", `accounts:
  - name: Checking Account
    type: Asset
    identifier: "1234"
  - name: Office Supplies
    type: Expense
`)

	accounts, err := LoadAccounts(path)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Checking Account", accounts[0].Name)
	assert.Equal(t, "Asset", accounts[0].Type)
	assert.Equal(t, "1234", accounts[0].Identifier)
	assert.Equal(t, "Office Supplies", accounts[1].Name)
}

func TestLoadAccountsMissingFile(t *testing.T) {
	_, err := LoadAccounts(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadAccountsInvalidYAML(t *testing.T) {
	path := writeFile(t, "accounts.yml", "accounts: [unclosed\n")
	_, err := LoadAccounts(path)
	assert.Error(t, err)
}

func TestLoadAccountsMissingKey(t *testing.T) {
	path := writeFile(t, "accounts.yml", "other_key: value\n")
	accounts, err := LoadAccounts(path)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestLoadRules(t *testing.T) {
	path := writeFile(t, "rules.yml", `rules:
  - name: Office Supplies Rule
    conditions:
      keywords: ["office depot", "staples"]
    account: Office Supplies
`)

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Office Supplies Rule", rules[0].Name)
	assert.Equal(t, []string{"office depot", "staples"}, rules[0].Conditions.Keywords)
	assert.Equal(t, "Office Supplies", rules[0].Account)
}

func TestLoadRulesMissingKey(t *testing.T) {
	path := writeFile(t, "rules.yml", "other_data: some_value\n")
	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestDefaultBankAccount(t *testing.T) {
	accounts := []Account{
		{Name: "Office Supplies", Type: "Expense"},
		{Name: "Main Checking", Type: "asset"},
		{Name: "Savings", Type: "Asset"},
	}
	assert.Equal(t, "Main Checking", DefaultBankAccount(accounts, "Checking Account"))
	assert.Equal(t, "Checking Account", DefaultBankAccount(nil, "Checking Account"))
}
