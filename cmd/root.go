package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagAccounts  string
	flagRules     string
	flagOutputDir string
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:   "jules",
	Short: "Headless accounting batch processor",
	Long:  "Parses bank statements, matches them against processed vouchers, generates journal entries, and produces a trial balance report.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAccounts, "accounts", "config/accounts.yml", "Path to accounts.yml")
	rootCmd.PersistentFlags().StringVar(&flagRules, "rules", "config/rules.yml", "Path to rules.yml")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "data", "Directory for generated files")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Verbose development logging")
}

func newLogger() (*zap.Logger, error) {
	if flagDebug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func Execute() error {
	return rootCmd.Execute()
}
