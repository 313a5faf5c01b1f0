// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/mail"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/mailbox"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/pipeline"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/report"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/seen"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process pending Scholar emails and mail the digest",
	Long: `Run executes the full pipeline: read pending notification emails from
the mailbox, extract and resolve paper links, fetch metadata, summarize,
rank, render the digest, and send it over SMTP. Papers already reported
in previous runs are skipped via the seen store.

With --dry-run the digest is printed to stdout instead of being mailed,
and neither the mailbox nor the seen store is modified.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "print the digest instead of mailing it; leave mailbox and seen store untouched")
	runCmd.Flags().String("save", "", "also write the raw pipeline result as JSON to this file")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	savePath, _ := cmd.Flags().GetString("save")
	cfg := buildConfig()

	mb, err := mailbox.New(cfg.Mailbox)
	if err != nil {
		return err
	}
	msgs, err := mb.Read(cfg.Pipeline.MaxItems)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(os.Stderr, "no pending emails; nothing to do")
		return nil
	}
	fmt.Fprintf(os.Stderr, "read %d pending email(s) from %s\n", len(msgs), cfg.Mailbox.Dir)

	p, err := pipeline.New(cfg, os.Stderr)
	if err != nil {
		return err
	}

	var store *seen.Store
	if cfg.Seen.Enabled {
		store, err = seen.NewStore(cfg.Seen)
		if err != nil {
			return err
		}
		defer store.Close()

		known, err := store.LoadKnown()
		if err != nil {
			return err
		}
		p.SetKnown(known)
	}

	bodies := make([]string, len(msgs))
	for i, m := range msgs {
		bodies[i] = m.Body
	}

	res, err := p.Run(cmd.Context(), bodies)
	if err != nil {
		return err
	}

	if savePath != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(savePath, data, 0o644); err != nil {
			return fmt.Errorf("saving result: %w", err)
		}
	}

	gen := report.New(cfg.Report)
	digest, err := gen.Render(res)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintln(os.Stdout, digest)
		return nil
	}

	sender, err := mail.New(cfg.Mail)
	if err != nil {
		return err
	}
	if err := sender.Send(gen.Subject(), digest, cfg.Report.Format); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "digest sent to %v\n", cfg.Mail.To)

	if store != nil {
		if err := store.MarkSeen(res.Records); err != nil {
			return err
		}
		if err := store.MarkSeen(res.LowRelevance); err != nil {
			return err
		}
	}
	return mb.MarkProcessed(msgs)
}
