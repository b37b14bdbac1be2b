package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/wtf/pkg/core"
)

var isCmd = &cobra.Command{
	Use:   "is <term>",
	Short: "Show the definitions of a term",
	Long:  `Print every visible definition of a term. Multi-word terms may be given unquoted.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		term := strings.Join(args, " ")

		inst, err := openDictionary()
		if err != nil {
			fatal("Failed to open dictionary", err)
		}

		ctx := cmd.Context()
		entries, err := inst.Service.Lookup(ctx, term)
		switch {
		case errors.Is(err, core.ErrNotFound):
			fmt.Fprintf(cmd.OutOrStdout(), "Lol I don't know what '%s' means.\n", term)
		case err != nil:
			fatal("Lookup failed", err)
		default:
			for _, e := range entries {
				printEntry(cmd.OutOrStdout(), e)
			}
		}

		autoSync(ctx, inst)
	},
}

func init() {
	rootCmd.AddCommand(isCmd)
}
