package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"speakertag/internal/logging"
	"speakertag/internal/meeting"
	"speakertag/internal/metrics"
	"speakertag/internal/speakermatch"
	"speakertag/internal/store"
)

type resolveOutput struct {
	RunID     string `json:"run_id,omitempty"`
	MeetingID string `json:"meeting_id,omitempty"`
	speakermatch.Result
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var save bool
	var meetingID string
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "resolve <input.json>",
		Short: "Resolve speaker labels in an evidence document (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := meeting.Load(args[0])
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if id := strings.TrimSpace(meetingID); id != "" {
				doc.MeetingID = id
			}

			logger := ctx.loggerValue()
			if doc.MeetingID != "" {
				logger = logger.With(logging.String(logging.FieldMeetingID, doc.MeetingID))
			}
			resolver, err := ctx.resolver(logger)
			if err != nil {
				return err
			}
			result := resolver.Resolve(doc.Input())

			if path := strings.TrimSpace(metricsFile); path != "" {
				rec := metrics.NewRecorder()
				rec.Observe(result, time.Now())
				if err := rec.WriteTextfile(path); err != nil {
					logger.Warn("metrics textfile not written",
						logging.String(logging.FieldEventType, "metrics_write_failed"),
						logging.String(logging.FieldErrorHint, "check that the metrics directory exists and is writable"),
						logging.Error(err),
					)
				}
			}

			out := resolveOutput{MeetingID: doc.MeetingID, Result: result}
			if save {
				if err := ctx.withStore(func(st *store.Store) error {
					run, err := st.SaveRun(cmd.Context(), doc.MeetingID, result)
					if err != nil {
						return err
					}
					out.RunID = run.ID
					logger.Info("resolution run saved",
						logging.String(logging.FieldRunID, run.ID),
						logging.Int("review_count", run.ReviewCount),
					)
					return nil
				}); err != nil {
					return fmt.Errorf("save run: %w", err)
				}
			}

			if jsonOutput {
				return writeJSON(cmd, out)
			}
			printResolveResult(cmd, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the result to the local database")
	cmd.Flags().StringVar(&meetingID, "meeting-id", "", "Override the meeting id recorded with a saved run")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics for this run")
	return cmd
}

func printResolveResult(cmd *cobra.Command, out resolveOutput) {
	w := cmd.OutOrStdout()
	entries := out.Ordered()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No speakers to resolve")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.SpeakerLabel,
			entry.Name,
			formatConfidence(entry.Confidence),
			entry.MatchMethod.String(),
			reviewMarker(entry.NeedsReview),
		})
	}
	headers := []string{"Speaker", "Name", "Confidence", "Method", "Review"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
	fmt.Fprintln(w, renderTable(w, headers, rows, aligns))

	if len(out.NeedsReview) > 0 {
		fmt.Fprintf(w, "Needs review: %s\n", strings.Join(out.NeedsReview, ", "))
	}
	if out.RunID != "" {
		fmt.Fprintf(w, "Saved run %s\n", out.RunID)
	}
}

func formatConfidence(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func reviewMarker(needsReview bool) string {
	if needsReview {
		return "review"
	}
	return ""
}
