package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wizenheimer/sitesearch"
)

func searchCmd() *cobra.Command {
	var query string
	var finalDir string

	c := &cobra.Command{
		Use:   "search",
		Short: "Run a single query against a built index",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := query
			if strings.TrimSpace(q) == "" {
				line, err := readOneLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				q = line
			}

			store, err := sitesearch.OpenFileStore(finalDir)
			if err != nil {
				return err
			}

			driver := sitesearch.NewDriver(store)
			for _, r := range driver.Query(q) {
				fmt.Fprintf(cmd.OutOrStdout(), "%.4f\t%s\n", r.Score, r.URL)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c.Flags().StringVar(&query, "query", "", "query text (reads one line from stdin if omitted)")
	c.Flags().StringVar(&finalDir, "final", envDefault("SITESEARCH_FINAL", sitesearch.DefaultConfig().FinalDir), "directory holding the built index")

	return c
}

func readOneLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return scanner.Text(), nil
}
