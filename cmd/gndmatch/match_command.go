package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"gndmatch/internal/match"
	"gndmatch/internal/preflight"
	"gndmatch/internal/store"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var threshold float64
	var jsonOutput bool
	var purge bool

	cmd := &cobra.Command{
		Use:       "match <meta|name>",
		Short:     "Score DNB names against Gazetteer names and store candidates",
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
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Match.Threshold
			}

			return ctx.withStore(cmd.Context(), false, preflight.Request{}, func(st *store.Store, logger *slog.Logger) error {
				if purge {
					n, err := st.PurgeCandidates(cmd.Context(), category)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s candidates\n", n, category)
					return nil
				}
				res, err := match.New(st, logger).Run(cmd.Context(), match.Options{
					Category:  category,
					Threshold: threshold,
				})
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, res)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Matched %s values (threshold %s %g)\n", res.Category, res.Category.Comparator(), res.Threshold)
				fmt.Fprintf(out, "  dnb values:  %d\n", res.DNBValues)
				fmt.Fprintf(out, "  gaz values:  %d\n", res.GazValues)
				fmt.Fprintf(out, "  skipped:     %d empty\n", res.SkippedEmpty)
				fmt.Fprintf(out, "  compared:    %d pairs\n", res.Compared)
				fmt.Fprintf(out, "  candidates:  %d\n", res.Candidates)
				fmt.Fprintf(out, "  run id:      %s (%s)\n", res.RunID, res.Duration.Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Minimum Jaro-Winkler score (default from match.threshold)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the match summary as JSON")
	cmd.Flags().BoolVar(&purge, "purge", false, "Delete the stored candidates of the category instead of matching")
	return cmd
}
