package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "sitesearch",
		Short:         "Build and query a disk-resident inverted index over a static HTML corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(buildCmd())
	root.AddCommand(searchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
