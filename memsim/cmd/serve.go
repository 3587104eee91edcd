package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/sarchlab/memspace/memspace"
	"github.com/sarchlab/memspace/monitoring"
	"github.com/sarchlab/memspace/script"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	name   string
	port   int
	open   bool
	script string
}

func newServeCmd(cfg *config) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a memory space over HTTP until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "MemorySpace", "name of the space")
	cmd.Flags().IntVar(&opts.port, "port", 0, "port to listen on, random if unset")
	cmd.Flags().BoolVar(&opts.open, "open", false, "open the monitor in a browser")
	cmd.Flags().StringVar(&opts.script, "script", "",
		"script to run against the space once the server is up")

	return cmd
}

func serve(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config,
	opts *serveOptions,
) (err error) {
	s, err := newSession(cfg, opts.name, cfg.Capacity)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, s.close()) }()

	monitor := monitoring.NewMonitor().WithLogger(cfg.logger)
	if opts.port != 0 {
		monitor = monitor.WithPortNumber(opts.port)
	}

	monitor.RegisterSpace(s.space)

	url := monitor.StartServer()

	if opts.open {
		if err := browser.OpenURL(url + "/api/space/" + opts.name); err != nil {
			cfg.logger.Warn("cannot open browser", zap.Error(err))
		}
	}

	if opts.script != "" {
		if err := runMonitored(cmd, monitor, opts); err != nil {
			return err
		}
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := monitor.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return s.summarize(cmd.OutOrStdout())
}

// runMonitored executes a script line by line so that its progress shows
// up on the monitor. Each line holds the space lock only while it runs.
func runMonitored(
	cmd *cobra.Command,
	monitor *monitoring.Monitor,
	opts *serveOptions,
) error {
	content, err := os.ReadFile(opts.script)
	if err != nil {
		return err
	}

	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	bar := monitor.CreateProgressBar(opts.script, uint64(len(lines)))
	defer monitor.CompleteProgressBar(bar)

	var runner *script.Runner

	err = monitor.Do(opts.name, func(s *memspace.Space) error {
		runner = script.NewRunner(s, cmd.OutOrStdout())
		return nil
	})
	if err != nil {
		return err
	}

	for i, text := range lines {
		bar.IncrementInProgress(1)

		err := monitor.Do(opts.name, func(*memspace.Space) error {
			return runner.Exec(text)
		})
		if err != nil {
			return &script.LineError{Line: i + 1, Text: strings.TrimSpace(text), Err: err}
		}

		bar.MoveInProgressToFinished(1)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Finished %s after %d lines\n", opts.script, len(lines))

	return nil
}
