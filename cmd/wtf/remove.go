package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/wtf"
	"github.com/aretw0/wtf/pkg/core"
)

var removeIndexes []int

var removeCmd = &cobra.Command{
	Use:   "remove <term> | <term>:<definition>",
	Short: "Hide definitions of a term",
	Long: `Hide one or more definitions of a term. The shared snapshot is never
edited; the removal is recorded locally and can be undone with 'wtf recover'.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inst, err := openDictionary()
		if err != nil {
			fatal("Failed to open dictionary", err)
		}
		out := cmd.OutOrStdout()

		term, exact := splitTarget(strings.Join(args, " "))
		candidates, err := definitionsOf(cmd.Context(), inst, term, false)
		if errors.Is(err, core.ErrNotFound) {
			fmt.Fprintf(out, "Term '%s' not found in the dictionary.\n", term)
			return
		}
		if err != nil {
			fatal("Lookup failed", err)
		}
		candidates = narrow(candidates, exact)
		if len(candidates) == 0 {
			fmt.Fprintln(out, "No definitions available to remove.")
			return
		}

		runSelection(cmd.Context(), out, selection{
			candidates: candidates,
			indexes:    removeIndexes,
			noun:       "remove",
			done:       "removed",
			apply:      inst.Service.Remove,
		})
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().IntSliceVar(&removeIndexes, "index", nil, "1-based numbers of the definitions to remove")
	removeCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// splitTarget accepts either a bare term or an exact term:definition pair.
func splitTarget(arg string) (term, definition string) {
	if e, err := core.ParseEntry(arg); err == nil {
		return e.Term, e.Definition
	}
	return strings.TrimSpace(arg), ""
}

// definitionsOf returns the stored definitions of term with the wanted visibility.
func definitionsOf(ctx context.Context, inst *wtf.Instance, term string, hidden bool) ([]core.Entry, error) {
	defs, err := inst.Service.ListDefinitions(ctx, term)
	if err != nil {
		return nil, err
	}
	var out []core.Entry
	for _, d := range defs {
		if d.Hidden == hidden {
			out = append(out, d.Entry)
		}
	}
	return out, nil
}

// narrow keeps the entry whose definition matches the one typed by the user.
// Stored definitions may carry surrounding spaces that the user did not type.
func narrow(entries []core.Entry, definition string) []core.Entry {
	if definition == "" {
		return entries
	}
	for _, e := range entries {
		if e.Definition == definition || strings.TrimSpace(e.Definition) == definition {
			return []core.Entry{e}
		}
	}
	return nil
}

type selection struct {
	candidates []core.Entry
	indexes    []int
	noun       string // verb used in prompts
	done       string // past tense used in the summary
	apply      func(ctx context.Context, term, definition string) error
}

// runSelection lists the candidates, lets the user pick and confirm, then
// applies the operation to every picked entry.
func runSelection(ctx context.Context, out io.Writer, s selection) {
	if len(s.candidates) == 1 {
		fmt.Fprintln(out, "Found definition:")
		printEntry(out, s.candidates[0])
	} else {
		fmt.Fprintln(out, "Found definitions:")
		printNumbered(out, s.candidates)
	}

	chosen, err := pick(fmt.Sprintf("Select the definitions to %s", s.noun), s.candidates, s.indexes)
	if errors.Is(err, errAborted) {
		fmt.Fprintln(out, "Operation aborted.")
		return
	}
	if err != nil {
		fatal("Selection failed", err)
	}
	if len(chosen) == 0 {
		fmt.Fprintln(out, "No valid numbers selected.")
		return
	}

	question := fmt.Sprintf("Are you sure you want to %s this definition?", s.noun)
	if len(chosen) > 1 {
		question = fmt.Sprintf("Are you sure you want to %s these %d definitions?", s.noun, len(chosen))
	}
	ok, err := confirm(question)
	if err != nil {
		fatal("Confirmation failed", err)
	}
	if !ok {
		fmt.Fprintln(out, "Operation aborted.")
		return
	}

	n := 0
	for _, e := range chosen {
		if err := s.apply(ctx, e.Term, e.Definition); err != nil {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("Could not %s %s: %v", s.noun, e, err)))
			continue
		}
		n++
	}

	switch {
	case n == 0:
		fmt.Fprintf(out, "No definitions were %s.\n", s.done)
	case n == 1 && len(chosen) == 1:
		fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("Definition %s successfully.", s.done)))
	default:
		fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("%d definition(s) %s successfully.", n, s.done)))
	}
}
