// Package cli renders compctl output: notifications, tables and detail views.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/foxxcyber/compwatch/internal/setup"
)

var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorWarning = lipgloss.Color("#FFC107")
	colorError   = lipgloss.Color("#e53935")
	colorInfo    = lipgloss.Color("#2196F3")
	colorMuted   = lipgloss.Color("#6b7280")
)

// Styles are the lipgloss styles bound to one output
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Bold(true).MarginBottom(1),
		Label:   r.NewStyle().Bold(true).Width(16),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Header:  r.NewStyle().Bold(true).Padding(0, 1),
		Cell:    r.NewStyle().Padding(0, 1),
		Success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		Warning: r.NewStyle().Foreground(colorWarning).Bold(true),
		Error:   r.NewStyle().Foreground(colorError).Bold(true),
		Info:    r.NewStyle().Foreground(colorInfo).Bold(true),
	}
}

// Printer writes styled output. It satisfies setup.Notifier.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
}

// NewPrinter renders for w, picking colors from w's terminal capabilities
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: w, styles: newStyles(lipgloss.NewRenderer(w))}
}

func (p *Printer) Styles() Styles { return p.styles }

// Writer is the underlying output
func (p *Printer) Writer() io.Writer { return p.out }

// Notify prints one notification line
func (p *Printer) Notify(level setup.Level, msg string) {
	var tag string
	switch level {
	case setup.LevelSuccess:
		tag = p.styles.Success.Render("✓")
	case setup.LevelWarning:
		tag = p.styles.Warning.Render("!")
	case setup.LevelError:
		tag = p.styles.Error.Render("✗")
	default:
		tag = p.styles.Info.Render("•")
	}
	p.Println(tag + " " + msg)
}

// Println writes s and a newline
func (p *Printer) Println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}

// Printf writes a formatted line
func (p *Printer) Printf(format string, args ...any) {
	p.Println(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Title prints a bold heading
func (p *Printer) Title(s string) {
	p.Println(p.styles.Title.Render(s))
}

// Fields prints label/value pairs, skipping empty values
func (p *Printer) Fields(pairs ...string) {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		b.WriteString(p.styles.Label.Render(pairs[i]))
		b.WriteString(pairs[i+1])
		b.WriteString("\n")
	}
	p.Println(strings.TrimRight(b.String(), "\n"))
}
