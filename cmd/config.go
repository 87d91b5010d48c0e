package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/git-galluppakistan/survey-dashboard/app/config"
)

var configInitPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dashboard configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfgpkg.Save(cfg, configInitPath); err != nil {
			return err
		}
		path := configInitPath
		if path == "" {
			path = "~/.surveydash/config.yaml"
		}
		fmt.Printf("Wrote configuration to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("data_dir:          %s\n", cfg.DataDir)
		fmt.Printf("source_candidates: %v\n", cfg.SourceCandidates)
		fmt.Printf("codebook_file:     %s\n", cfg.CodebookFile)
		fmt.Printf("batch_rows:        %d\n", cfg.BatchRows)
		fmt.Printf("cache_size_mb:     %d\n", cfg.CacheSizeMB)
		fmt.Printf("listen_addr:       %s\n", cfg.ListenAddr)
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "output path (default is ~/.surveydash/config.yaml)")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
