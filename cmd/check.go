package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/git-galluppakistan/survey-dashboard/app/engine"
	"github.com/git-galluppakistan/survey-dashboard/app/loader"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the survey export once and print dataset diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := loader.Load(cmd.Context(), loader.Options{
			DataDir:          cfg.DataDir,
			SourceCandidates: cfg.SourceCandidates,
			CodebookPath:     cfg.ResolvedCodebookPath(),
			BatchRows:        cfg.BatchRows,
		})
		if err != nil {
			return err
		}

		eng := engine.New(result.Table)
		summary := eng.Summary(nil)

		fmt.Printf("Source:    %s\n", result.SourcePath)
		if result.CodebookPath != "" {
			fmt.Printf("Codebook:  %s\n", result.CodebookPath)
		}
		fmt.Printf("Rows:      %d\n", summary.TotalRows)
		fmt.Printf("Columns:   %d\n", result.Table.ColumnCount())
		fmt.Printf("Questions: %d\n", summary.Questions)
		fmt.Printf("Memory:    %d bytes\n", result.Table.MemoryFootprint())
		fmt.Printf("Load time: %v\n", result.LoadDuration)

		for _, opt := range eng.FacetOptions(nil) {
			if !opt.Enabled {
				fmt.Printf("Facet %-10s disabled (no matching column)\n", opt.Facet)
				continue
			}
			if opt.Facet == "age" {
				if opt.MinAge != nil && opt.MaxAge != nil {
					fmt.Printf("Facet %-10s %s, range %d-%d\n", opt.Facet, opt.Column, *opt.MinAge, *opt.MaxAge)
				} else {
					fmt.Printf("Facet %-10s %s, no parseable ages\n", opt.Facet, opt.Column)
				}
				continue
			}
			fmt.Printf("Facet %-10s %s, %d values\n", opt.Facet, opt.Column, len(opt.Values))
		}

		for _, warn := range result.Warnings {
			fmt.Printf("Warning: %s\n", warn)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
