package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProgressStep represents a single step in a multi-step process
type ProgressStep struct {
	Message string
	Fn      func() error
}

// Printer writes user-facing status lines. Symbols are styled only when the
// target is a terminal.
type Printer struct {
	Out io.Writer
	Err io.Writer
	mu  sync.Mutex
}

// NewPrinter returns a Printer writing to out and errOut
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{Out: out, Err: errOut}
}

func (p *Printer) line(w io.Writer, style lipgloss.Style, symbol, plainPrefix, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if isTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", style.Render(symbol), message)
		return
	}
	fmt.Fprintf(w, "%s%s\n", plainPrefix, message)
}

// Success prints a success message
func (p *Printer) Success(message string) {
	p.line(p.Out, successStyle, "✓", "", message)
}

// Error prints an error message
func (p *Printer) Error(message string) {
	p.line(p.Err, errorStyle, "✗", "", message)
}

// Info prints an info message
func (p *Printer) Info(message string) {
	p.line(p.Out, progressStyle, "ℹ", "", message)
}

// Warning prints a warning message
func (p *Printer) Warning(message string) {
	p.line(p.Err, warningStyle, "⚠", "WARNING: ", message)
}

// ShowProgress runs fn while a spinner with message is shown on stderr.
// Outside a terminal the message is logged and fn runs without decoration.
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}
	return spin(ctx, os.Stderr, message, fn)
}

// ShowProgressWithSteps shows progress for multiple steps
func ShowProgressWithSteps(ctx context.Context, steps []ProgressStep) error {
	for i, step := range steps {
		msg := fmt.Sprintf("[%d/%d] %s", i+1, len(steps), step.Message)
		if err := ShowProgress(ctx, msg, step.Fn); err != nil {
			return fmt.Errorf("%s: %w", step.Message, err)
		}
	}
	return nil
}

// spin draws a spinner on w until fn returns or ctx is done
func spin(ctx context.Context, w io.Writer, message string, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case err := <-done:
			if err != nil {
				fmt.Fprintf(w, "\r%s %s\n", errorStyle.Render("✗"), message)
				return err
			}
			fmt.Fprintf(w, "\r%s %s\n", successStyle.Render("✓"), message)
			return nil
		case <-ctx.Done():
			fmt.Fprintf(w, "\r%s %s\n", warningStyle.Render("…"), message)
			return ctx.Err()
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(w, "\r%s %s", progressStyle.Render(frame), message)
		}
	}
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	return isTerminal(w)
}

// FormatBytes renders a size such as 1536 as "1.5 KB"
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
