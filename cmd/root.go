package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/git-galluppakistan/survey-dashboard/app/config"
)

var (
	cfgFile string
	cfg     *cfgpkg.Config
)

var rootCmd = &cobra.Command{
	Use:   "surveydash",
	Short: "Survey dashboard backend: memory-bounded CSV ingestion and filtering",
	Long: `surveydash loads a large compressed survey export, applies a label
codebook, and serves facet-filtered response distributions and
cross-tabulations over HTTP for the dashboard frontend.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.surveydash/config.yaml)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		c, _ = cfgpkg.Load("")
	}
	cfg = c
}
