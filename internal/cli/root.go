// Package cli is the board client: it loads the task collection from the store
// service, renders board projections and issues optimistic intents.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/yukikurage/task-board/internal/board"
	"github.com/yukikurage/task-board/internal/client"
	"github.com/yukikurage/task-board/internal/config"
)

type app struct {
	cfg     *config.Config
	out     io.Writer
	server  string
	format  string
	verbose bool

	logger *slog.Logger
	store  *client.HTTPStore
}

// NewRootCommand builds the board command tree. Output goes to out; logs go to
// the command's error stream.
func NewRootCommand(cfg *config.Config, out io.Writer) *cobra.Command {
	a := &app{cfg: cfg, out: out}

	root := &cobra.Command{
		Use:           "board",
		Short:         "Team task board client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.format {
			case formatText, formatJSON, formatYAML:
			default:
				return fmt.Errorf("unknown output format %q (want text, json or yaml)", a.format)
			}

			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			a.store = client.NewHTTPStore(a.server, client.WithHTTPClient(&http.Client{Timeout: a.cfg.StoreTimeout}))
			return nil
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.server, "server", cfg.ServerURL, "store service base URL")
	root.PersistentFlags().StringVarP(&a.format, "format", "o", formatText, "output format: text, json or yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(
		a.boardCmd(),
		a.calendarCmd(),
		a.timelineCmd(),
		a.statsCmd(),
		a.moveCmd(),
		a.createCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.suggestCmd(),
	)
	return root
}

// loadEngine returns an engine whose cache holds the store's current collection.
func (a *app) loadEngine(ctx context.Context) (*board.Engine, error) {
	engine := board.NewEngine(board.NewCache(), a.store,
		board.WithLogger(a.logger),
		board.WithStoreTimeout(a.cfg.StoreTimeout),
	)
	if err := engine.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	return engine, nil
}

// settle blocks until intent commits, returning the rollback error otherwise.
func (a *app) settle(ctx context.Context, intent *board.Intent) error {
	if err := intent.Wait(ctx); err != nil {
		return err
	}
	a.logger.Debug("intent committed", "kind", intent.Kind, "task_id", intent.TaskID)
	return nil
}
