package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"speakertag/internal/logging"
	"speakertag/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and review saved resolution runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsConfirmCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				runs, err := st.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []*store.Run{}
					}
					return writeJSON(cmd, runs)
				}

				w := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(w, "No saved runs")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ID,
						valueOrDash(run.MeetingID),
						run.CreatedAt.Local().Format(time.DateTime),
						strconv.Itoa(run.SpeakerCount),
						strconv.Itoa(run.ReviewCount),
					})
				}
				headers := []string{"Run", "Meeting", "Created", "Speakers", "Review"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight}
				fmt.Fprintln(w, renderTable(w, headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type runView struct {
	*store.Run
	Mappings []*store.Mapping `json:"mappings"`
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the speaker mappings of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				run, err := st.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				mappings, err := st.Mappings(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if jsonOutput {
					if mappings == nil {
						mappings = []*store.Mapping{}
					}
					return writeJSON(cmd, runView{Run: run, Mappings: mappings})
				}
				printRun(cmd, run, mappings)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printRun(cmd *cobra.Command, run *store.Run, mappings []*store.Mapping) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run:      %s\n", run.ID)
	fmt.Fprintf(w, "Meeting:  %s\n", valueOrDash(run.MeetingID))
	fmt.Fprintf(w, "Created:  %s\n", run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Review:   %d of %d\n", run.ReviewCount, run.SpeakerCount)
	if len(mappings) == 0 {
		return
	}

	rows := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, []string{
			m.SpeakerLabel,
			m.FinalName,
			valueOrDash(m.SuggestedName),
			formatConfidence(m.Confidence),
			m.MatchMethod.String(),
			yesNo(m.IsModified),
			reviewMarker(m.NeedsReview),
		})
	}
	headers := []string{"Speaker", "Name", "Suggested", "Confidence", "Method", "Modified", "Review"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
	fmt.Fprintln(w, renderTable(w, headers, rows, aligns))
}

func newRunsConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <run-id> <speaker> <name>",
		Short: "Record the reviewed name for a speaker",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[2])
			if name == "" {
				return fmt.Errorf("name must not be empty")
			}
			return ctx.withStore(func(st *store.Store) error {
				m, err := st.ConfirmName(cmd.Context(), args[0], args[1], name)
				if err != nil {
					return err
				}
				ctx.loggerValue().Info("speaker name confirmed",
					logging.String(logging.FieldRunID, m.RunID),
					logging.String(logging.FieldSpeaker, m.SpeakerLabel),
					logging.Bool("modified", m.IsModified),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s", m.SpeakerLabel, m.FinalName)
				if m.IsModified && m.SuggestedName != "" {
					fmt.Fprintf(cmd.OutOrStdout(), " (was %s)", m.SuggestedName)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
