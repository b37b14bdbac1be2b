package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/wtf/pkg/core"
)

var addCmd = &cobra.Command{
	Use:   "add <term>:<definition>",
	Short: "Add a definition to your dictionary",
	Long: `Add a definition. Everything before the first colon is the term.
Adding a definition you removed earlier makes it visible again.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := core.ParseEntry(strings.Join(args, " "))
		if err != nil {
			fatal("Invalid format. Use `wtf add <term>:<definition>`", err)
		}

		inst, err := openDictionary()
		if err != nil {
			fatal("Failed to open dictionary", err)
		}

		ctx := cmd.Context()
		err = inst.Service.Add(ctx, e.Term, e.Definition)
		switch {
		case errors.Is(err, core.ErrAlreadyExists):
			fmt.Fprintln(cmd.OutOrStdout(), "This definition already exists.")
		case err != nil:
			fatal("Could not add definition", err)
		default:
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Definition added successfully."))
		}

		autoSync(ctx, inst)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
