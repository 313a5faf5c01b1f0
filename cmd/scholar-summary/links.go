// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/links"
)

var linksCmd = &cobra.Command{
	Use:   "links [files...]",
	Short: "Extract candidate paper links from email text",
	Long: `Links runs only the extraction and filtering stages: it scans the given
text files (or stdin when none are given) for URLs and prints the ones
that look like paper candidates, one per line. Useful for checking what
a run would pick up from a particular email.`,
	RunE: runLinks,
}

func init() {
	linksCmd.Flags().Bool("all", false, "print all extracted URLs, including filtered-out ones")

	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, args []string) error {
	showAll, _ := cmd.Flags().GetBool("all")
	cfg := buildConfig()

	var texts []string
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		texts = append(texts, string(data))
	}
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		texts = append(texts, string(data))
	}

	extracted := links.ExtractAll(texts)
	if !showAll {
		extracted = links.NewFilter(cfg.LinkFilter).Apply(extracted)
	}
	for _, l := range extracted {
		fmt.Fprintln(cmd.OutOrStdout(), l.URL)
	}
	fmt.Fprintf(os.Stderr, "%d link(s)\n", len(extracted))
	return nil
}
