package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/aretw0/wtf/pkg/core"
	"github.com/aretw0/wtf/pkg/remote"
)

var (
	termStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	hiddenStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(14)
)

var errAborted = errors.New("operation aborted")

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func printEntry(w io.Writer, e core.Entry) {
	fmt.Fprintf(w, "%s: %s\n", termStyle.Render(e.Term), e.Definition)
}

func printNumbered(w io.Writer, entries []core.Entry) {
	for i, e := range entries {
		fmt.Fprintf(w, "%d. %s: %s\n", i+1, termStyle.Render(e.Term), e.Definition)
	}
}

// confirm asks a yes/no question. Without a terminal --yes is required.
func confirm(title string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !isTTY(os.Stdin) {
		return false, errors.New("stdin is not a terminal; pass --yes to confirm")
	}

	ok := true
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// pick selects entries from candidates. A single candidate is returned as is;
// otherwise the 1-based indexes from --index are used, or the user is asked.
func pick(title string, candidates []core.Entry, indexes []int) ([]core.Entry, error) {
	if len(candidates) == 1 {
		return candidates, nil
	}

	if len(indexes) > 0 {
		var out []core.Entry
		seen := make(map[int]bool)
		for _, n := range indexes {
			if n < 1 || n > len(candidates) {
				return nil, fmt.Errorf("index %d out of range 1..%d", n, len(candidates))
			}
			if !seen[n] {
				seen[n] = true
				out = append(out, candidates[n-1])
			}
		}
		return out, nil
	}

	if !isTTY(os.Stdin) {
		return nil, errors.New("several definitions match; pass --index to choose")
	}

	options := make([]huh.Option[int], 0, len(candidates))
	for i, e := range candidates {
		options = append(options, huh.NewOption(e.Definition, i))
	}
	var chosen []int
	err := huh.NewMultiSelect[int]().
		Title(title).
		Options(options...).
		Value(&chosen).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return nil, errAborted
	}
	if err != nil {
		return nil, err
	}

	out := make([]core.Entry, 0, len(chosen))
	for _, i := range chosen {
		out = append(out, candidates[i])
	}
	return out, nil
}

// progressLine renders download progress on a terminal.
type progressLine struct {
	f      *os.File
	last   time.Time
	active bool
}

func newProgressLine(f *os.File) *progressLine {
	if !isTTY(f) {
		return nil
	}
	return &progressLine{f: f}
}

func (p *progressLine) update(tr *remote.Transfer) {
	if !tr.Done() && time.Since(p.last) < 100*time.Millisecond {
		return
	}
	p.last = time.Now()
	p.active = true

	line := tr.String()
	if frac := tr.Fraction(); frac >= 0 {
		line = progressBar(frac, p.barWidth()) + " " + line
	}
	fmt.Fprintf(p.f, "\r\033[K%s", line)
}

func (p *progressLine) finish() {
	if p != nil && p.active {
		fmt.Fprintln(p.f)
		p.active = false
	}
}

func (p *progressLine) barWidth() int {
	width, _, err := term.GetSize(int(p.f.Fd()))
	if err != nil {
		return 20
	}
	return min(max(width/4, 10), 40)
}

func progressBar(frac float64, width int) string {
	filled := min(int(frac*float64(width)), width)
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

func shortVersion(v string) string {
	if len(v) > 7 {
		return v[:7]
	}
	return v
}

// describeSync turns a sync report into a one-line message.
func describeSync(r core.SyncReport) string {
	switch r.Status {
	case core.StatusUpToDate:
		return fmt.Sprintf("Dictionary is up to date (version %s).", shortVersion(r.Version))
	case core.StatusNoNetwork:
		return "No network connection; using the local dictionary."
	case core.StatusNeedsSync:
		if r.Mode == core.ModeDelta {
			return fmt.Sprintf("Dictionary updated to %s (+%d -%d).", shortVersion(r.Version), r.Added, r.Deleted)
		}
		return fmt.Sprintf("Dictionary downloaded at version %s (%d definitions).", shortVersion(r.Version), r.Added)
	default:
		return fmt.Sprintf("Sync finished with status %s.", r.Status)
	}
}
