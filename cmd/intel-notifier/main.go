// cmd/intel-notifier/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"news-intel/internal/common/config"
)

var (
	configPath    string
	customersPath string
	crmPath       string
	concurrency   int
	dryRun        bool
)

var rootCmd = &cobra.Command{
	Use:   "intel-notifier",
	Short: "Email each customer a weekly news intelligence digest",
	Long: `Searches the past week's news for every customer topic, keeps the results a
language model judges relevant, cross-references them with the CRM snapshot and
emails an executive summary. When nothing passes the relevance filter the top raw
results are sent instead.

Flags override the configuration file.`,
	SilenceUsage: true,
	RunE:         runNotifier,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config.yaml (default: configs/config.yaml)")
	rootCmd.Flags().StringVar(&customersPath, "customers", "", "Path to the customers JSON file")
	rootCmd.Flags().StringVar(&crmPath, "crm", "", "Path to the CRM JSON file (file source only)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Customers processed in parallel")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log emails instead of sending them")
}

// flagOverrides maps explicitly set flags onto the loaded configuration.
func flagOverrides(cmd *cobra.Command) config.Override {
	return func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("customers") {
			cfg.Inputs.CustomersFile = customersPath
		}
		if flags.Changed("crm") {
			cfg.Inputs.CRMFile = crmPath
			cfg.CRM.Source = config.CRMSourceFile
		}
		if flags.Changed("concurrency") && concurrency > 0 {
			cfg.Pipeline.Concurrency = concurrency
		}
		if dryRun {
			cfg.Notifications.Email.Provider = config.EmailProviderLog
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
