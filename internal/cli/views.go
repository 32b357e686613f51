package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yukikurage/task-board/internal/views"
)

func addFilterFlags(cmd *cobra.Command, f *views.Filter) {
	cmd.Flags().StringVar(&f.Assignee, "assignee", views.FilterAll, `user id, "unassigned" or "all"`)
	cmd.Flags().StringVar(&f.Team, "team", views.FilterAll, `team id or "all"`)
	cmd.Flags().StringVar(&f.Search, "search", "", "case-insensitive match on title or tag")
}

func (a *app) boardCmd() *cobra.Command {
	var filter views.Filter
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show tasks grouped into status columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			columns := views.ByStatusColumns(engine.Cache(), filter)
			return a.render(columns, func(w io.Writer) {
				for i, col := range columns {
					if i > 0 {
						fmt.Fprintln(w)
					}
					header(w, "%s (%d)", col.Label, len(col.Tasks))
					writeTasks(w, col.Tasks)
				}
			})
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

func (a *app) calendarCmd() *cobra.Command {
	var (
		filter views.Filter
		tz     string
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show dated tasks bucketed by due day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("invalid time zone %q: %w", tz, err)
			}
			engine, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			buckets := views.ByDueDateBuckets(engine.Cache(), filter, loc)
			return a.render(buckets, func(w io.Writer) {
				if len(buckets) == 0 {
					fmt.Fprintln(w, mutedStyle.Render("No dated tasks"))
					return
				}
				for _, b := range buckets {
					header(w, "%s", b.Day.Format("2006-01-02 Mon"))
					writeTasks(w, b.Tasks)
				}
			})
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().StringVar(&tz, "tz", "UTC", "IANA time zone that defines day boundaries")
	return cmd
}

func (a *app) timelineCmd() *cobra.Command {
	var filter views.Filter
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show dated tasks as spans grouped by team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			groups := views.ByTimeline(engine.Cache(), filter)
			return a.render(groups, func(w io.Writer) {
				if len(groups) == 0 {
					fmt.Fprintln(w, mutedStyle.Render("No dated tasks"))
					return
				}
				for _, g := range groups {
					header(w, "Team %s", shortID(g.TeamID))
					for _, item := range g.Items {
						fmt.Fprintf(w, "  %s .. %s  %s\n",
							item.Start.Format(time.DateOnly), item.End.Format(time.DateOnly), item.Task.Title)
					}
				}
			})
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

type statsReport struct {
	Summary views.BoardSummary `json:"summary" yaml:"summary"`
	Users   []views.UserStats  `json:"users" yaml:"users"`
}

func (a *app) statsCmd() *cobra.Command {
	var filter views.Filter
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show status counts and completion rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			report := statsReport{
				Summary: views.Summary(engine.Cache(), filter),
				Users:   views.ByUser(engine.Cache(), filter),
			}
			return a.render(report, func(w io.Writer) {
				s := report.Summary
				header(w, "Board")
				fmt.Fprintf(w, "  %d tasks, %d unassigned, %.0f%% done\n", s.Total, s.Unassigned, s.CompletionRate*100)
				for _, u := range report.Users {
					fmt.Fprintf(w, "  @%s  %d tasks, %.0f%% done\n", shortID(u.UserID), u.Total, u.CompletionRate*100)
				}
			})
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}
