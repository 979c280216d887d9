// Package cli contains the commands of the terminal dashboard, built using
// the Cobra library.
package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gitactivity/internal/client"
	"gitactivity/internal/dashboard"
	"gitactivity/internal/logger"
)

type options struct {
	server   string
	search   string
	action   string
	author   string
	sortKey  string
	asc      bool
	page     int
	pageSize int
	interval time.Duration
	timeout  time.Duration
	verbose  bool
}

// NewRootCmd builds the dashboard command tree writing to out. Running the
// root command without a subcommand behaves like watch.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dashboard",
		Short: "A terminal dashboard for git activity.",
		Long: `dashboard polls the git activity API and renders summary statistics
and a filterable, sortable, paginated activity log.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logger.Configure(logger.LevelDebug, true)
			} else {
				logger.Discard()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.InOrStdin(), out, opts)
		},
	}
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringVarP(&opts.server, "server", "s", "http://localhost:8080", "Base URL of the activity API")
	f.StringVar(&opts.search, "search", "", "Case-insensitive search over author, action and branches")
	f.StringVar(&opts.action, "action", dashboard.All, "Only show this action")
	f.StringVar(&opts.author, "author", dashboard.All, "Only show this author")
	f.StringVar(&opts.sortKey, "sort", string(dashboard.FieldTimestamp), "Column to sort by")
	f.BoolVar(&opts.asc, "asc", false, "Sort ascending instead of descending")
	f.IntVar(&opts.page, "page", 1, "Page to show")
	f.IntVar(&opts.pageSize, "page-size", dashboard.DefaultPageSize, "Rows per page (5, 10, 25 or 50)")
	f.DurationVar(&opts.interval, "interval", dashboard.DefaultInterval, "Refresh interval for watch")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP timeout for each API request")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	root.AddCommand(newWatchCmd(out, opts), newOnceCmd(out, opts))
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *options) newView() (*dashboard.View, error) {
	key, err := dashboard.ParseField(o.sortKey)
	if err != nil {
		return nil, err
	}
	if !dashboard.ValidPageSize(o.pageSize) {
		return nil, fmt.Errorf("unsupported page size %d, use one of %v", o.pageSize, dashboard.PageSizes)
	}

	dir := dashboard.Desc
	if o.asc {
		dir = dashboard.Asc
	}

	v := dashboard.NewView()
	v.SetSearch(o.search)
	v.SetActionFilter(o.action)
	v.SetAuthorFilter(o.author)
	v.SetSort(dashboard.SortConfig{Key: key, Direction: dir})
	v.SetPageSize(o.pageSize)
	v.SetPage(o.page)
	return v, nil
}

func (o *options) newClient() *client.Client {
	return client.New(o.server).WithHTTPClient(&http.Client{Timeout: o.timeout})
}
