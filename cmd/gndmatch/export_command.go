package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gndmatch/internal/export"
	"gndmatch/internal/preflight"
	"gndmatch/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		output    string
		format    string
		delimiter string
		limit     int
		threshold float64
		preview   int
	)

	cmd := &cobra.Command{
		Use:       "export <meta|name>",
		Short:     "Export match candidates with their GND identifiers",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"meta", "name"},
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := store.ParseCategory(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("format") {
				format = cfg.Export.Format
			}
			if !flags.Changed("delimiter") {
				delimiter = cfg.Export.Delimiter
			}
			if !flags.Changed("limit") {
				limit = cfg.Export.Limit
			}
			if !flags.Changed("threshold") {
				threshold = cfg.Export.Threshold
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			if preview > 0 {
				query := store.MatchQuery{Category: category, Threshold: threshold, Limit: preview}
				return ctx.withStore(cmd.Context(), false, preflight.Request{}, func(st *store.Store, _ *slog.Logger) error {
					return renderPreview(cmd, st, query)
				})
			}

			output = strings.TrimSpace(output)
			if output == "" {
				return errors.New("--output is required unless --preview is set")
			}
			outDir := filepath.Dir(output)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory %q: %w", outDir, err)
			}

			req := preflight.Request{OutputDir: outDir}
			return ctx.withStore(cmd.Context(), false, req, func(st *store.Store, logger *slog.Logger) error {
				res, err := export.New(st, logger).Export(cmd.Context(), export.Options{
					Category:  category,
					Threshold: threshold,
					Limit:     limit,
					Format:    format,
					Delimiter: delimiter,
					Output:    output,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s matches to %s (%s)\n", res.Rows, category, res.Output, res.Format)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "Destination file")
	flags.StringVarP(&format, "format", "f", "", "Output format: csv or parquet (default from export.format)")
	flags.StringVar(&delimiter, "delimiter", "", "CSV field delimiter (default from export.delimiter)")
	flags.IntVarP(&limit, "limit", "n", 0, "Maximum number of rows, 0 for all (default from export.limit)")
	flags.Float64VarP(&threshold, "threshold", "t", 0, "Minimum score (default from export.threshold)")
	flags.IntVar(&preview, "preview", 0, "Print the first N rows as a table instead of writing a file")
	return cmd
}

func renderPreview(cmd *cobra.Command, st *store.Store, q store.MatchQuery) error {
	headers := []string{"DNB ID", "DNB Pref Name", "Gaz GND ID", "Gaz Pref Name", "Score"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
	if q.Category == store.CategoryName {
		headers = []string{"DNB ID", "DNB Name", "Gaz GND ID", "Gaz Title", "Score"}
	}

	var rows [][]string
	err := st.MatchRows(cmd.Context(), q, func(r store.MatchRow) error {
		score := strconv.FormatFloat(r.Score, 'f', 4, 64)
		if q.Category == store.CategoryName {
			rows = append(rows, []string{r.DNBID, r.DNBName, r.GazGNDID, r.GazTitle, score})
		} else {
			rows = append(rows, []string{r.DNBID, r.DNBPrefName, r.GazGNDID, r.GazPrefTitle, score})
		}
		return nil
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No matches")
		return nil
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns, shouldColorize(out)))
	return nil
}
