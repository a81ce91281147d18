package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"gndmatch/internal/preflight"
	"gndmatch/internal/store"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var yamlOutput bool
	var runs int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts, candidate counts and recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return errors.New("--json and --yaml are mutually exclusive")
			}
			return ctx.withStore(cmd.Context(), false, preflight.Request{}, func(st *store.Store, _ *slog.Logger) error {
				stats, err := st.Stats(cmd.Context(), runs)
				if err != nil {
					return err
				}
				switch {
				case jsonOutput:
					return writeJSON(cmd, stats)
				case yamlOutput:
					return writeYAML(cmd, stats)
				}
				renderStats(cmd, st.Path(), stats)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print statistics as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Print statistics as YAML")
	cmd.Flags().IntVar(&runs, "runs", 10, "Number of recent runs to show")
	return cmd
}

func renderStats(cmd *cobra.Command, path string, stats store.Stats) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintf(out, "Database: %s\n", path)
	counts := [][]string{
		{"DNB records", itoa(stats.DNBRecords)},
		{"DNB variant names", itoa(stats.VariantNames)},
		{"DNB old authority numbers", itoa(stats.OldAuthorities)},
		{"Gazetteer records", itoa(stats.GazRecords)},
		{"Gazetteer names", itoa(stats.GazNames)},
		{"Gazetteer GND links", itoa(stats.GazGNDLinks)},
		{"Meta candidates", itoa(stats.MetaCandidates)},
		{"Name candidates", itoa(stats.NameCandidates)},
	}
	fmt.Fprintln(out, renderTable([]string{"Table", "Rows"}, counts, []columnAlignment{alignLeft, alignRight}, colorize))

	if len(stats.RecentRuns) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	rows := make([][]string, 0, len(stats.RecentRuns))
	for _, run := range stats.RecentRuns {
		detail := run.Source
		if run.Threshold != nil {
			detail = fmt.Sprintf("%s %g", run.Category, *run.Threshold)
		}
		count := itoa(run.Accepted)
		if run.Kind == store.RunKindMatch {
			count = itoa(run.Candidates)
		}
		rows = append(rows, []string{
			run.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			run.Kind,
			detail,
			count,
			itoa(run.Rejected),
			itoa(run.Duplicates),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Finished", "Kind", "Detail", "Records", "Rejected", "Duplicates"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
		colorize,
	))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
