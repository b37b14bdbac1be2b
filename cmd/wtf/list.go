package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/wtf/pkg/core"
)

var (
	listJSON   bool
	listAll    bool
	listHidden bool
)

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List terms matching a glob pattern",
	Long: `List the visible terms whose name matches a glob pattern (case-insensitive).
The default pattern '*' lists every term.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}

		inst, err := openDictionary()
		if err != nil {
			fatal("Failed to open dictionary", err)
		}

		ctx := cmd.Context()
		terms, err := inst.Service.Search(ctx, pattern)
		if err != nil {
			fatal("Search failed", err)
		}

		out := cmd.OutOrStdout()
		if !listAll && !listHidden && !listJSON {
			for _, t := range terms {
				fmt.Fprintln(out, t)
			}
			autoSync(ctx, inst)
			return
		}

		var defs []core.Definition
		for _, t := range terms {
			all, err := inst.Service.ListDefinitions(ctx, t)
			if err != nil {
				fatal("Lookup failed", err)
			}
			for _, d := range all {
				if d.Hidden && !listHidden {
					continue
				}
				defs = append(defs, d)
			}
		}

		if listJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(defs); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, d := range defs {
			if d.Hidden {
				fmt.Fprintln(out, hiddenStyle.Render(d.Term+": "+d.Definition))
				continue
			}
			printEntry(out, d.Entry)
		}
		autoSync(ctx, inst)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output definitions in JSON format")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Print the definitions, not only the terms")
	listCmd.Flags().BoolVar(&listHidden, "hidden", false, "Include removed definitions")
}
