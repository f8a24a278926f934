package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wizenheimer/sitesearch"
)

func buildCmd() *cobra.Command {
	cfg := sitesearch.DefaultConfig()

	c := &cobra.Command{
		Use:   "build",
		Short: "Build the final index from a directory of per-page JSON documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := sitesearch.Build(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d documents, %d unique terms, %d bytes on disk\n",
				stats.DocsIndexed, stats.UniqueTerms, stats.IndexBytes)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c.Flags().StringVar(&cfg.InputDir, "input", envDefault("SITESEARCH_INPUT", cfg.InputDir), "directory of per-page JSON documents")
	c.Flags().StringVar(&cfg.PartialDir, "partial", envDefault("SITESEARCH_PARTIAL", cfg.PartialDir), "directory for transient partial-index files")
	c.Flags().StringVar(&cfg.FinalDir, "final", envDefault("SITESEARCH_FINAL", cfg.FinalDir), "directory for the final sharded index")
	c.Flags().IntVar(&cfg.FlushLimit, "flush-limit", cfg.FlushLimit, "documents accumulated in memory before a partial flush")

	return c
}
