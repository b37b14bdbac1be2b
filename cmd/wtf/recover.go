package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/wtf/pkg/core"
)

var recoverIndexes []int

var recoverCmd = &cobra.Command{
	Use:   "recover <term> | <term>:<definition>",
	Short: "Bring back removed definitions of a term",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inst, err := openDictionary()
		if err != nil {
			fatal("Failed to open dictionary", err)
		}
		out := cmd.OutOrStdout()

		term, exact := splitTarget(strings.Join(args, " "))
		candidates, err := definitionsOf(cmd.Context(), inst, term, true)
		if errors.Is(err, core.ErrNotFound) {
			fmt.Fprintf(out, "Term '%s' not found in the dictionary.\n", term)
			return
		}
		if err != nil {
			fatal("Lookup failed", err)
		}
		candidates = narrow(candidates, exact)
		if len(candidates) == 0 {
			fmt.Fprintln(out, "No removed definitions to recover.")
			return
		}

		runSelection(cmd.Context(), out, selection{
			candidates: candidates,
			indexes:    recoverIndexes,
			noun:       "recover",
			done:       "recovered",
			apply:      inst.Service.Recover,
		})
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
	recoverCmd.Flags().IntSliceVar(&recoverIndexes, "index", nil, "1-based numbers of the definitions to recover")
	recoverCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}
