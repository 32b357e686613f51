package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yukikurage/task-board/internal/board"
	"github.com/yukikurage/task-board/internal/drag"
	"github.com/yukikurage/task-board/internal/models"
)

var errAmbiguousID = errors.New("id prefix matches more than one task")

// resolveID accepts a full id or the unique prefix shown in text output.
func resolveID(cache *board.Cache, id string) (string, error) {
	if _, ok := cache.Get(id); ok {
		return id, nil
	}
	var match string
	for _, t := range cache.Snapshot() {
		if !strings.HasPrefix(t.ID, id) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%s: %w", id, errAmbiguousID)
		}
		match = t.ID
	}
	if match == "" {
		return "", &board.NotFoundError{TaskID: id}
	}
	return match, nil
}

// parseStatus accepts IN_PROGRESS, in-progress or "in progress".
func parseStatus(s string) (models.TaskStatus, error) {
	normalized := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToUpper(strings.TrimSpace(s)))
	status := models.TaskStatus(normalized)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q (want BACKLOG, TODO, IN_PROGRESS or DONE)", s)
	}
	return status, nil
}

func parseDate(s string) (*time.Time, error) {
	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &day, nil
}

func (a *app) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <status>",
		Short: "Drag a task into another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			engine, err := a.loadEngine(ctx)
			if err != nil {
				return err
			}
			id, err := resolveID(engine.Cache(), args[0])
			if err != nil {
				return err
			}

			ctrl := drag.NewController(engine, engine.Cache(), drag.WithLogger(a.logger))
			if err := ctrl.Start(id); err != nil {
				return err
			}
			if err := ctrl.Hover(status); err != nil {
				ctrl.Cancel()
				return err
			}
			conf, err := ctrl.End(ctx)
			if err != nil {
				return err
			}

			if conf == nil {
				task, _ := engine.Cache().Get(id)
				return a.render(task, func(w io.Writer) {
					fmt.Fprintf(w, "%q is already in %s\n", task.Title, status.Label())
				})
			}
			if err := a.settle(ctx, conf.Intent); err != nil {
				return err
			}
			return a.render(conf, func(w io.Writer) {
				fmt.Fprintln(w, conf.Message())
			})
		},
	}
}

// taskFlags are the editable fields shared by create and update.
type taskFlags struct {
	title, description         string
	status, workType, priority string
	assignee, team             string
	start, due                 string
	tags                       []string
}

func (f *taskFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "task title")
	fs.StringVar(&f.description, "description", "", "task description")
	fs.StringVar(&f.status, "status", "", "BACKLOG, TODO, IN_PROGRESS or DONE")
	fs.StringVar(&f.workType, "work-type", "", "FEATURE, BUG or CHORE")
	fs.StringVar(&f.priority, "priority", "", "HIGH, MEDIUM or LOW")
	fs.StringVar(&f.assignee, "assignee", "", "assignee user id")
	fs.StringVar(&f.team, "team", "", "team id")
	fs.StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	fs.StringVar(&f.due, "due", "", "due date (YYYY-MM-DD)")
	fs.StringSliceVar(&f.tags, "tag", nil, "tag, repeatable")
}

func (a *app) createCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := board.CreateInput{
				Title:       f.title,
				Description: f.description,
				WorkType:    models.WorkType(strings.ToUpper(f.workType)),
				Priority:    models.Priority(strings.ToUpper(f.priority)),
				Tags:        f.tags,
				TeamID:      f.team,
			}
			if f.status != "" {
				status, err := parseStatus(f.status)
				if err != nil {
					return err
				}
				input.Status = status
			}
			if f.assignee != "" {
				input.AssigneeID = &f.assignee
			}
			var err error
			if f.start != "" {
				if input.StartDate, err = parseDate(f.start); err != nil {
					return err
				}
			}
			if f.due != "" {
				if input.DueDate, err = parseDate(f.due); err != nil {
					return err
				}
			}

			engine, err := a.loadEngine(ctx)
			if err != nil {
				return err
			}
			intent, err := engine.Create(ctx, input)
			if err != nil {
				return err
			}
			if err := a.settle(ctx, intent); err != nil {
				return err
			}

			task, _ := intent.Task()
			return a.render(task, func(w io.Writer) {
				fmt.Fprintf(w, "Created %q (%s)\n", task.Title, task.ID)
			})
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var (
		f                              taskFlags
		unassign, clearStart, clearDue bool
	)
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change fields of a task; flags that are not given stay as they are",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			patch, err := f.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if unassign {
				patch.AssigneeID = models.Null[string]()
			}
			if clearStart {
				patch.StartDate = models.Null[time.Time]()
			}
			if clearDue {
				patch.DueDate = models.Null[time.Time]()
			}

			engine, err := a.loadEngine(ctx)
			if err != nil {
				return err
			}
			id, err := resolveID(engine.Cache(), args[0])
			if err != nil {
				return err
			}
			intent, err := engine.Update(ctx, id, patch)
			if err != nil {
				return err
			}
			if err := a.settle(ctx, intent); err != nil {
				return err
			}

			task, _ := engine.Cache().Get(id)
			return a.render(task, func(w io.Writer) {
				fmt.Fprintf(w, "Updated %q\n", task.Title)
			})
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&unassign, "unassign", false, "clear the assignee")
	cmd.Flags().BoolVar(&clearStart, "clear-start", false, "clear the start date")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "clear the due date")
	cmd.MarkFlagsMutuallyExclusive("assignee", "unassign")
	cmd.MarkFlagsMutuallyExclusive("start", "clear-start")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

// patch builds a TaskPatch from the flags that were given on the command line.
func (f *taskFlags) patch(fs *pflag.FlagSet) (models.TaskPatch, error) {
	var p models.TaskPatch
	if fs.Changed("title") {
		p.Title = &f.title
	}
	if fs.Changed("description") {
		p.Description = &f.description
	}
	if fs.Changed("status") {
		status, err := parseStatus(f.status)
		if err != nil {
			return p, err
		}
		p.Status = &status
	}
	if fs.Changed("work-type") {
		wt := models.WorkType(strings.ToUpper(f.workType))
		p.WorkType = &wt
	}
	if fs.Changed("priority") {
		pr := models.Priority(strings.ToUpper(f.priority))
		p.Priority = &pr
	}
	if fs.Changed("assignee") {
		p.AssigneeID = models.Some(f.assignee)
	}
	if fs.Changed("team") {
		p.TeamID = &f.team
	}
	if fs.Changed("start") {
		day, err := parseDate(f.start)
		if err != nil {
			return p, err
		}
		p.StartDate = models.Some(*day)
	}
	if fs.Changed("due") {
		day, err := parseDate(f.due)
		if err != nil {
			return p, err
		}
		p.DueDate = models.Some(*day)
	}
	if fs.Changed("tag") {
		tags := models.NewTagSet(f.tags...)
		p.Tags = &tags
	}
	return p, nil
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, err := a.loadEngine(ctx)
			if err != nil {
				return err
			}
			id, err := resolveID(engine.Cache(), args[0])
			if err != nil {
				return err
			}
			task, _ := engine.Cache().Get(id)

			intent, err := engine.Delete(ctx, id)
			if err != nil {
				return err
			}
			if err := a.settle(ctx, intent); err != nil {
				return err
			}
			return a.render(task, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %q\n", task.Title)
			})
		},
	}
}

func (a *app) suggestCmd() *cobra.Command {
	var teamID string
	cmd := &cobra.Command{
		Use:   "suggest <description>",
		Short: "Ask the advisor who on a team should take a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestion, err := a.store.SuggestAssignee(cmd.Context(), teamID, args[0])
			if err != nil {
				return err
			}
			return a.render(suggestion, func(w io.Writer) {
				header(w, "%s", suggestion.SuggestedAssignee)
				fmt.Fprintf(w, "  %s\n", suggestion.Reason)
			})
		},
	}
	cmd.Flags().StringVar(&teamID, "team", "", "team id")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}
