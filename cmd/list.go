package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/clock"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects on the backend",
	Long:  `List every uploaded project, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := newClient().ListProjects(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		displayProjects(cmd.OutOrStdout(), projects, time.Now())
		return nil
	},
}

func displayProjects(out io.Writer, projects []internal.Project, now time.Time) {
	if len(projects) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("No projects found"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d project(s)", len(projects))))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Duration")+"\t"+
		titleStyle.Render("Size")+"\t"+titleStyle.Render("Created")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))

	for i := range projects {
		p := &projects[i]

		name := p.DisplayName()
		if len(name) > 50 {
			name = name[:47] + "..."
		}

		duration := dateStyle.Render("—")
		if p.DurationS > 0 {
			duration = countStyle.Render(clock.Format(p.DurationS))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID(p.ID)),
			name,
			duration,
			internal.FormatBytes(p.SizeBytes),
			dateStyle.Render(formatCreated(p.CreatedAt, now)),
		)
	}

	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("Tip: Use the full ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(projects[0].ID)+
		idStyle.Render(") with `audio-splitter show <id>`"))
}

// formatCreated shows recent times relative to the day and older ones as dates
func formatCreated(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	t = t.Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(listCmd)
}
