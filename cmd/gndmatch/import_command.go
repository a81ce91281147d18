package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"gndmatch/internal/ingest"
	"gndmatch/internal/preflight"
	"gndmatch/internal/store"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import authority or Gazetteer dumps into the record store",
	}
	importCmd.AddCommand(newImportDNBCommand(ctx))
	importCmd.AddCommand(newImportGazCommand(ctx))
	return importCmd
}

func newImportDNBCommand(ctx *commandContext) *cobra.Command {
	var oldAuthority bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "dnb <file>",
		Short: "Import a DNB JSON-LD authority dump (plain or gzip)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := ingest.OptionsFromConfig(cfg)
			if cmd.Flags().Changed("old") {
				opts.OldAuthority = oldAuthority
			}
			return runImport(cmd, ctx, args[0], "DNB", jsonOutput, func(runCtx context.Context, ing *ingest.Ingestor) (ingest.Result, error) {
				return ing.ImportDNB(runCtx, args[0])
			}, opts)
		},
	}
	cmd.Flags().BoolVar(&oldAuthority, "old", false, "Also import old authority numbers")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the import summary as JSON")
	return cmd
}

func newImportGazCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "gaz <file>",
		Short: "Import a Gazetteer JSON dump (plain or gzip)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runImport(cmd, ctx, args[0], "Gazetteer", jsonOutput, func(runCtx context.Context, ing *ingest.Ingestor) (ingest.Result, error) {
				return ing.ImportGaz(runCtx, args[0])
			}, ingest.OptionsFromConfig(cfg))
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the import summary as JSON")
	return cmd
}

type importFunc func(context.Context, *ingest.Ingestor) (ingest.Result, error)

func runImport(cmd *cobra.Command, ctx *commandContext, path, label string, jsonOutput bool, run importFunc, opts ingest.Options) error {
	req := preflight.Request{Inputs: []string{path}}
	return ctx.withStore(cmd.Context(), true, req, func(st *store.Store, logger *slog.Logger) error {
		res, err := run(cmd.Context(), ingest.New(st, logger, opts))
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd, res)
		}
		printImportSummary(cmd.OutOrStdout(), label, res)
		return nil
	})
}

func printImportSummary(out io.Writer, label string, res ingest.Result) {
	fmt.Fprintf(out, "Imported %s records from %s\n", label, res.Source)
	fmt.Fprintf(out, "  accepted:   %d\n", res.Accepted)
	fmt.Fprintf(out, "  rejected:   %d\n", res.Rejected)
	fmt.Fprintf(out, "  duplicates: %d\n", res.Duplicates)
	fmt.Fprintf(out, "  ignored:    %d\n", res.Ignored)
	fmt.Fprintf(out, "  run id:     %s (%s)\n", res.RunID, res.Duration.Round(time.Millisecond))
}
