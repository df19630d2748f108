package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"go.trai.ch/pynix/internal/adapters/detector"
	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/pynix/internal/ui/output"
	"go.trai.ch/pynix/internal/ui/style"
)

// catalogNameWidth caps the name column so one very long attribute does not
// push every description off screen.
const catalogNameWidth = 32

// styleSet holds the styles for one print call, bound to the App's stdout.
// Binding to the writer keeps piped and test output free of escape codes.
type styleSet struct {
	ok   lipgloss.Style
	warn lipgloss.Style
	name lipgloss.Style
	path lipgloss.Style
	dim  lipgloss.Style
}

func (a *App) styleSet() styleSet {
	r := lipgloss.NewRenderer(a.stdout)
	if a.noColor || output.ColorProfile() == termenv.Ascii || detector.DetectEnvironment() == detector.ModePlain {
		r.SetColorProfile(termenv.Ascii)
	}
	return styleSet{
		ok:   r.NewStyle().Foreground(style.Green),
		warn: r.NewStyle().Foreground(style.Amber),
		name: r.NewStyle().Foreground(style.Cobalt).Bold(true),
		path: r.NewStyle().Foreground(style.Slate),
		dim:  r.NewStyle().Foreground(style.Slate).Faint(true),
	}
}

func (a *App) printResolutions(results []resolveResult) {
	s := a.styleSet()
	for _, r := range results {
		if !r.Known {
			fmt.Fprintf(a.stdout, "%s %s %s\n",
				s.warn.Render(style.Circle),
				s.name.Render(r.Package),
				s.dim.Render("(not in the package set)"))
			continue
		}
		fmt.Fprintf(a.stdout, "%s %s\n", s.ok.Render(style.Check), s.name.Render(r.Package))
		for _, p := range r.Paths {
			fmt.Fprintf(a.stdout, "    %s\n", s.path.Render(p))
		}
	}
}

func (a *App) printImports(results []importResult) {
	s := a.styleSet()
	for _, r := range results {
		if !r.Found {
			fmt.Fprintf(a.stdout, "%s %s %s\n",
				s.warn.Render(style.Circle),
				s.name.Render(r.Module),
				s.dim.Render("(module not found)"))
			continue
		}
		fmt.Fprintf(a.stdout, "%s %s %s\n",
			s.ok.Render(style.Check),
			s.name.Render(r.Module),
			s.dim.Render("("+r.Kind+")"))
		if r.Origin != "" {
			fmt.Fprintf(a.stdout, "    %s\n", s.path.Render(r.Origin))
		}
		if len(r.Members) > 0 {
			fmt.Fprintf(a.stdout, "    %s\n", s.dim.Render("members: "+strings.Join(r.Members, ", ")))
		}
	}
}

func (a *App) printCatalog(entries []domain.CatalogEntry, fetchedAt time.Time) {
	s := a.styleSet()
	if len(entries) == 0 {
		fmt.Fprintln(a.stdout, "no packages match")
		return
	}

	width := 0
	for _, e := range entries {
		if n := len(e.Name); n > width {
			width = n
		}
	}
	if width > catalogNameWidth {
		width = catalogNameWidth
	}

	for _, e := range entries {
		padded := fmt.Sprintf("%-*s", width, e.Name)
		fmt.Fprintf(a.stdout, "%s  %s\n", s.name.Render(padded), s.dim.Render(e.Description))
	}

	noun := "packages"
	if len(entries) == 1 {
		noun = "package"
	}
	age := time.Since(fetchedAt).Truncate(time.Second)
	fmt.Fprintf(a.stdout, "\n%d %s (fetched %s ago)\n", len(entries), noun, age)
}

func (a *App) printDaemonStatus(status *ports.DaemonStatus) {
	s := a.styleSet()
	fmt.Fprintf(a.stdout, "%s %s\n", s.ok.Render(style.Dot), s.name.Render("daemon running"))

	field := func(label, value string) {
		padded := fmt.Sprintf("%-16s", label)
		fmt.Fprintf(a.stdout, "    %s %s\n", s.dim.Render(padded), value)
	}
	field("pid", strconv.Itoa(status.PID))
	field("uptime", status.Uptime.Truncate(time.Second).String())
	field("last activity", fmt.Sprintf("%s ago", time.Since(status.LastActivity).Truncate(time.Second)))
	field("idle remaining", status.IdleRemaining.Truncate(time.Second).String())
	field("cached packages", strconv.Itoa(status.CachedPackages))
}

func (a *App) printDaemonStopped() {
	s := a.styleSet()
	fmt.Fprintf(a.stdout, "%s daemon is not running\n", s.dim.Render(style.Circle))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
