package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/media"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// healthTimeout bounds the backend probe
const healthTimeout = 5 * time.Second

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the tools and the backend are usable",
	Long: `Check the health of audio-splitter by verifying:
  • Configuration
  • ffmpeg and ffprobe availability
  • The backend data directory
  • Backend reachability

Only an unreachable backend fails the check; missing tools are reported as
warnings because the client commands do not need them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		detail := func(format string, a ...interface{}) {
			if healthcheckVerbose {
				_, _ = fmt.Fprintf(out, "   "+format+"\n", a...)
			}
		}

		_, _ = fmt.Fprintln(out, sectionStyle.Render("Audio Splitter Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: configuration
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration valid"))
		detail("Platform: %s/%s", runtime.GOOS, runtime.GOARCH)
		if configPath != "" {
			detail("Config file: %s", configPath)
		}
		detail("Server URL: %s", cfg.Client.ServerURL)
		detail("Bitrate: %d kbps", cfg.Client.BitrateKbps)
		_, _ = fmt.Fprintln(out)

		// Step 2: media tools
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Checking media tools..."))
		toolsOK := checkTools(cmd.Context(), out, detail)
		_, _ = fmt.Fprintln(out)

		// Step 3: data directory
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Checking data directory..."))
		checkDataDir(out, detail)
		_, _ = fmt.Fprintln(out)

		// Step 4: backend
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting backend..."))
		ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
		defer cancel()
		backendErr := newClient().Health(ctx)
		if backendErr != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable:"), backendErr)
			detail("Start it with `audio-splitter serve` or pass --server")
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Backend is up"))
			detail("URL: %s", cfg.Client.ServerURL)
		}
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("Summary"))
		_, _ = fmt.Fprintln(out)
		switch {
		case backendErr != nil:
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: %w", backendErr)
		case !toolsOK:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Backend reachable, but ffmpeg tools are missing locally"))
			return nil
		default:
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			return nil
		}
	},
}

func checkTools(ctx context.Context, out io.Writer, detail func(string, ...interface{})) bool {
	runner := media.NewRunner(cfg.Media)
	ok := true
	for _, bin := range []string{runner.FFmpeg, runner.FFprobe} {
		ver, err := runner.Version(ctx, bin)
		if err != nil {
			ok = false
			_, _ = fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %s not usable", bin)))
			var me *internal.MediaError
			if errors.As(err, &me) {
				detail("%v", me.Err)
			}
			continue
		}
		_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s found", bin)))
		if path, err := exec.LookPath(bin); err == nil {
			detail("Path: %s", path)
		}
		detail("%s", ver)
	}
	return ok
}

func checkDataDir(out io.Writer, detail func(string, ...interface{})) {
	paths, err := internal.NewStoragePaths(cfg.Server.DataDir)
	if err != nil {
		_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Data directory invalid:"), err)
		return
	}
	info, err := os.Stat(paths.DataDir)
	switch {
	case err == nil && info.IsDir():
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Data directory exists"))
		if _, err := os.Stat(paths.DatabasePath()); err == nil {
			detail("Database: %s", paths.DatabasePath())
		} else {
			detail("Database not created yet: %s", paths.DatabasePath())
		}
	case err == nil:
		_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Data path is not a directory"))
	default:
		_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Data directory not found (created by `serve`)"))
	}
	detail("Directory: %s", paths.DataDir)
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "v", false, "Show detailed diagnostic information")
}
