package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gitactivity/internal/models"
)

// FormatRelative renders a timestamp as "Nm ago", "Nh ago" or "Nd ago".
func FormatRelative(timestamp string, now time.Time) string {
	t := models.ParseTimestamp(timestamp)
	if t.IsZero() {
		return "unknown"
	}
	diff := max(now.Sub(t), 0)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	}
}

func shortRequestID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

// Renderer writes a snapshot as plain text, styling headings when w is a
// terminal.
type Renderer struct {
	// Keys, if set, is a key help line shown under every screen. A renderer
	// with Keys offers a manual retry on the error screen.
	Keys string

	w      io.Writer
	now    func() time.Time
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	alert  lipgloss.Style
	subtle lipgloss.Style
}

func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		w:      w,
		now:    time.Now,
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		label:  r.NewStyle().Foreground(lipgloss.Color("245")),
		value:  r.NewStyle().Bold(true),
		alert:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		subtle: r.NewStyle().Faint(true),
	}
}

func (r *Renderer) Render(s Snapshot) error {
	var b strings.Builder

	if s.State == StateError {
		fmt.Fprintln(&b, r.alert.Render("Error Loading Data"))
		if s.Err != nil {
			fmt.Fprintln(&b, s.Err.Error())
		}
		if r.Keys != "" {
			fmt.Fprintln(&b, r.subtle.Render("Press r to retry now, or wait for the next refresh."))
			fmt.Fprintln(&b, r.subtle.Render(r.Keys))
		} else {
			fmt.Fprintln(&b, r.subtle.Render("Retrying on next refresh."))
		}
		_, err := io.WriteString(r.w, b.String())
		return err
	}

	fmt.Fprintln(&b, r.title.Render("Git Activity Dashboard"))
	status := "Last updated: "
	if s.LastUpdated.IsZero() {
		status += "never"
	} else {
		status += s.LastUpdated.Local().Format("15:04:05")
	}
	if s.State == StateRefreshing {
		status += "  (refreshing)"
	}
	fmt.Fprintln(&b, r.subtle.Render(status))
	fmt.Fprintln(&b)

	r.renderStats(&b, s)
	fmt.Fprintln(&b)
	r.renderFilters(&b, s)
	fmt.Fprintln(&b)
	r.renderTable(&b, s)
	if r.Keys != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, r.subtle.Render(r.Keys))
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) renderStats(b *strings.Builder, s Snapshot) {
	if s.StatsPending {
		for _, title := range []string{"Total Activities", "Unique Authors", "Branch Operations", "Recent Activity"} {
			fmt.Fprintf(b, "%-18s %s\n", r.label.Render(title), "...")
		}
		return
	}

	cards := []struct {
		title  string
		value  int
		change string
	}{
		{"Total Activities", s.Stats.TotalActivities, fmt.Sprintf("+%d today", s.Stats.TodayActivities)},
		{"Unique Authors", s.Stats.UniqueAuthors, "Active contributors"},
		{"Branch Operations", s.Stats.BranchOperations, s.Stats.WeeklyGrowth + "% this week"},
		{"Recent Activity", s.Stats.RecentActivity, "Last 24 hours"},
	}
	for _, c := range cards {
		fmt.Fprintf(b, "%s %s  %s\n",
			r.label.Render(fmt.Sprintf("%-18s", c.title)),
			r.value.Render(fmt.Sprintf("%6d", c.value)),
			r.subtle.Render(c.change))
	}
}

func (r *Renderer) renderFilters(b *strings.Builder, s Snapshot) {
	action, author := s.Filter.Action, s.Filter.Author
	if isAll(action) {
		action = All
	}
	if isAll(author) {
		author = All
	}
	fmt.Fprintf(b, "Search: %q  Action: %s  Author: %s  Sort: %s %s  Page size: %d\n",
		s.Filter.Search, action, author, s.Sort.Key, s.Sort.Direction, s.Page.Size)
	if len(s.Authors) > 0 {
		fmt.Fprintf(b, "Authors: %s\n", strings.Join(s.Authors, ", "))
	}
}

func (r *Renderer) renderTable(b *strings.Builder, s Snapshot) {
	fmt.Fprintln(b, r.title.Render("Activity Log"))

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tAUTHOR\tBRANCH\tREQUEST\tTIME")
	if s.ActivityPending {
		for range 5 {
			fmt.Fprintln(tw, "...\t...\t...\t...\t...")
		}
		tw.Flush()
		return
	}

	now := r.now()
	for _, a := range s.Page.Items {
		branch := a.FromBranch
		if a.ToBranch != a.FromBranch {
			branch += " -> " + a.ToBranch
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.Action, a.Author, branch, shortRequestID(a.RequestID), FormatRelative(a.Timestamp, now))
	}
	tw.Flush()

	if s.Page.Total == 0 {
		fmt.Fprintln(b, "No activity matches the current filters.")
		return
	}
	fmt.Fprintf(b, "Showing %d to %d of %d entries  (page %d of %d)\n",
		s.Page.From(), s.Page.To(), s.Page.Total, s.Page.Number, s.Page.TotalPages)
}
