package cmd

import (
	"fmt"
	"io"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/clock"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	showWaveformWidth int
)

var (
	projectHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// showCmd prints one project with its waveform and last export
var showCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project",
	Long:  `Display a project's metadata, a waveform overview and its last export.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		project, err := client.GetProject(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}

		var values []float64
		if showWaveformWidth > 0 {
			wf, err := client.Waveform(cmd.Context(), project.ID, showWaveformWidth)
			if err != nil {
				internal.LogWarn("Waveform unavailable: %v", err)
			} else {
				values = wf.Values
			}
		}

		displayProject(cmd.OutOrStdout(), project, values)
		return nil
	},
}

func displayProject(out io.Writer, p *internal.Project, waveform []float64) {
	_, _ = fmt.Fprintln(out, projectHeaderStyle.Render(p.DisplayName()))

	field := func(label, value string) {
		if value == "" {
			return
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label+":")), value)
	}
	field("ID", p.ID)
	field("File", p.OriginalName)
	field("Size", internal.FormatBytes(p.SizeBytes))
	if p.DurationS > 0 {
		field("Duration", clock.Format(p.DurationS))
	}
	field("Title", p.Tags.Title)
	field("Artist", p.Tags.Artist)
	field("Album", p.Tags.Album)
	field("Type", p.Tags.FileType)
	if !p.CreatedAt.IsZero() {
		field("Created", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	if line := sparkline(waveform, len(waveform)); line != "" {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, line)
	}

	_, _ = fmt.Fprintln(out)
	run := p.LastExport
	if run == nil {
		_, _ = fmt.Fprintln(out, idStyle.Render("Not exported yet"))
		return
	}
	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Last export: %d file(s) at %d kbps", len(run.Items), run.BitrateKbps)))
	for _, item := range run.Items {
		_, _ = fmt.Fprintf(out, "  %s  %s\n", item.Filename, dateStyle.Render(item.OutputPath))
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVar(&showWaveformWidth, "width", 60, "Waveform width in characters (0 to skip)")
}
