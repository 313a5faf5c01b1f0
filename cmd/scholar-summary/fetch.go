// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/fetch"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/links"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/resolve"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls...]",
	Short: "Resolve URLs and fetch paper metadata",
	Long: `Fetch runs the resolution and metadata-fetch stages for the given URLs
and prints what was found as YAML. Redirectors are unwrapped and arXiv
and DOI links are canonicalized exactly as the full pipeline would.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more URLs to fetch")
	}
	cfg := buildConfig()

	filter := links.NewFilter(cfg.LinkFilter)
	resolver := resolve.New(resolve.NoRedirectClient(cfg.Resolver.HTTPConfig), filter, cfg.Resolver)

	client := &http.Client{Timeout: cfg.Fetcher.Timeout}
	strategy, err := fetch.New(client, cfg.Fetcher)
	if err != nil {
		return err
	}
	fetcher := fetch.WithRetry(strategy, cfg.Fetcher.RetryTimes)

	failed := 0
	for _, rawURL := range args {
		link, err := resolver.Resolve(cmd.Context(), rawURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: resolving %s: %v\n", rawURL, err)
		}

		meta, err := fetcher.Fetch(cmd.Context(), link)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fetch %s: %v\n", link.CanonicalURL, err)
			failed++
			continue
		}

		out := struct {
			Identity string      `yaml:"identity"`
			URL      string      `yaml:"url"`
			Metadata interface{} `yaml:"metadata"`
		}{
			Identity: link.IdentityKey(),
			URL:      link.CanonicalURL,
			Metadata: meta,
		}
		data, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "---\n%s", data)
	}

	if failed > 0 {
		return fmt.Errorf("%d URL(s) failed", failed)
	}
	return nil
}
