package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"gitactivity/internal/dashboard"
	"gitactivity/internal/logger"
)

const (
	clearScreen = "\033[H\033[2J"
	keyHelp     = "Keys (then Enter): r refresh  n next  p prev  s <column> sort  / <term> search  q quit"
)

func newWatchCmd(out io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Render the dashboard and refresh it on an interval",
		Long: `watch redraws the dashboard on every refresh. Commands typed on stdin,
each followed by Enter, control it while it runs:

  r           refresh now (also retries after an error)
  n, p        next and previous page
  s <column>  sort by column, again to flip direction
  / <term>    search, "/" alone clears it
  q           quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.InOrStdin(), out, opts)
		},
	}
}

func newOnceCmd(out io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Fetch activity and statistics once, render them and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), out, opts)
		},
	}
}

func runWatch(ctx context.Context, in io.Reader, out io.Writer, opts *options) error {
	view, err := opts.newView()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	renderer := dashboard.NewRenderer(out)
	renderer.Keys = keyHelp
	var mu sync.Mutex
	draw := func(s dashboard.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(out, clearScreen)
		if err := renderer.Render(s); err != nil {
			logger.Errorf(err, "Failed to render dashboard")
		}
		if s.Err != nil {
			logger.Warnf("Refresh failed: %v", s.Err)
		}
	}

	poller := dashboard.NewPoller(opts.newClient(), view, opts.interval)
	poller.OnUpdate = draw
	draw(view.Snapshot())

	go readKeys(ctx, in, func(line string) {
		if !handleKey(line, view, poller) {
			quit()
			return
		}
		draw(view.Snapshot())
	})

	logger.Debugf("Polling %s every %s", opts.server, opts.interval)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// readKeys calls handle for every line read from in until in is exhausted
// or ctx is done.
func readKeys(ctx context.Context, in io.Reader, handle func(string)) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		handle(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		logger.Errorf(err, "Failed to read commands")
	}
}

// handleKey applies one command line to the view. It returns false when the
// dashboard should quit.
func handleKey(line string, view *dashboard.View, poller *dashboard.Poller) bool {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch {
	case cmd == "q":
		return false
	case cmd == "r":
		poller.Refresh()
	case cmd == "n":
		view.NextPage()
	case cmd == "p":
		view.PrevPage()
	case cmd == "s":
		key, err := dashboard.ParseField(arg)
		if err != nil {
			logger.Warnf("%v", err)
			return true
		}
		view.ToggleSort(key)
	case strings.HasPrefix(line, "/"):
		view.SetSearch(strings.TrimSpace(strings.TrimPrefix(line, "/")))
	case line != "":
		logger.Warnf("Unknown command %q", line)
	}
	return true
}

func runOnce(ctx context.Context, out io.Writer, opts *options) error {
	view, err := opts.newView()
	if err != nil {
		return err
	}

	fetchErr := dashboard.NewPoller(opts.newClient(), view, opts.interval).FetchOnce(ctx)
	if err := dashboard.NewRenderer(out).Render(view.Snapshot()); err != nil {
		return err
	}
	return fetchErr
}
