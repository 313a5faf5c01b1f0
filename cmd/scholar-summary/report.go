// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/report"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report <result.json>",
	Short: "Render a digest from a saved pipeline result",
	Long: `Report re-renders the digest from a pipeline result saved with
"run --save". Handy for previewing the HTML format or regenerating a
digest without re-running the network stages.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("format", "", "output format: markdown or html (default: configured report.format)")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.Report.Format = format
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var res types.PipelineResult
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	gen := report.New(cfg.Report)
	digest, err := gen.Render(&res)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), digest)
	return nil
}
