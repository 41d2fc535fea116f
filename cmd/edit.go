package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/clock"
	"github.com/ChristianPRO1982/audio-splitter/internal/session"
	"github.com/spf13/cobra"
)

const editHelp = `Commands:
  upload PATH        upload a recording (replaces the current one)
  play               start or pause playback
  seek T             move the playhead (seconds, M:SS or H:MM:SS)
  mark [T]           add a marker at T, or at the playhead
  name KEY NAME      set the filename of segment KEY
  jump KEY           move the playhead to the start of segment KEY
  export [KBPS]      export all segments
  show               print the session
  help               print this help
  quit               leave`

// editCmd runs an interactive marking session against the backend
var editCmd = &cobra.Command{
	Use:   "edit [file]",
	Short: "Place markers and export interactively",
	Long: `Start an interactive session. Commands are read one per line from stdin,
so a script can be piped in as well.

` + editHelp,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ls := startSession(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), true)
		defer ls.Stop()

		r := &repl{ls: ls, out: ls.out, printer: internal.NewPrinter(ls.out, ls.errOut)}
		if len(args) == 1 {
			r.exec(ctx, "upload "+args[0])
		}
		return r.run(ctx, cmd.InOrStdin())
	},
}

type repl struct {
	ls      *liveSession
	out     io.Writer
	printer *internal.Printer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = internal.IsTerminal(f)
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			_, _ = fmt.Fprint(r.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if !r.exec(ctx, scanner.Text()) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// exec runs one command line and reports whether to keep going
func (r *repl) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return true
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch name {
	case "quit", "exit", "q":
		return false
	case "help", "?":
		_, _ = fmt.Fprintln(r.out, editHelp)
	case "upload":
		if len(args) == 0 {
			err = fmt.Errorf("usage: upload PATH")
			break
		}
		_, err = r.ls.upload(ctx, strings.Join(args, " "))
	case "play":
		r.ls.ctl.TogglePlay()
	case "seek":
		var t float64
		if t, err = oneTime(args, "seek T"); err == nil {
			r.ls.ctl.Seek(t)
			err = r.ls.sync(ctx)
		}
	case "mark":
		if len(args) == 0 {
			r.ls.ctl.AddMarker()
			err = r.ls.sync(ctx)
			break
		}
		var t float64
		if t, err = oneTime(args, "mark [T]"); err == nil {
			_, err = r.ls.mark(ctx, t)
		}
	case "name":
		if len(args) < 2 {
			err = fmt.Errorf("usage: name KEY NAME")
			break
		}
		var key int
		if key, err = strconv.Atoi(args[0]); err == nil {
			r.ls.ctl.EditFilename(key, strings.Join(args[1:], " "))
			err = r.ls.sync(ctx)
		}
	case "jump":
		if len(args) != 1 {
			err = fmt.Errorf("usage: jump KEY")
			break
		}
		var key int
		if key, err = strconv.Atoi(args[0]); err == nil {
			r.ls.ctl.JumpTo(key)
			err = r.ls.sync(ctx)
		}
	case "export":
		kbps := cfg.Client.BitrateKbps
		if len(args) > 0 {
			kbps, err = strconv.Atoi(args[0])
		}
		if err == nil {
			_, err = r.ls.export(ctx, kbps)
		}
	case "show":
		r.show()
	default:
		err = fmt.Errorf("unknown command %q (try help)", name)
	}

	if err != nil {
		r.printer.Warning(err.Error())
	}
	return true
}

func (r *repl) show() {
	v := r.ls.ctl.View()
	_, _ = fmt.Fprintf(r.out, "State: %s\n", v.State)
	if v.ProjectID != "" {
		_, _ = fmt.Fprintf(r.out, "Project: %s\n", v.ProjectID)
	}
	if v.State.HasProject() {
		_, _ = fmt.Fprintf(r.out, "Position: %s / %s\n", clock.Format(v.Position), clock.Format(v.Duration))
	}
	renderMarkers(r.out, v.Markers)
	if v.State == session.StateReady || v.State == session.StateExporting {
		renderSegments(r.out, v.Segments)
	}
}

func oneTime(args []string, usage string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	return clock.Parse(args[0])
}

func init() {
	rootCmd.AddCommand(editCmd)
}
