package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/wtf/pkg/adapters/fs"
	"github.com/aretw0/wtf/pkg/adapters/lifecycle"
	"github.com/aretw0/wtf/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report changes to the dictionary files until interrupted",
	Long: `Watch the dictionary files and print every change, reloading the dictionary
after each one. Useful while editing the files by hand or when another
process syncs the same home.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		inst, err := openDictionary()
		if err != nil {
			fatal("Failed to open dictionary", err)
		}
		ctx := cmd.Context()
		if err := inst.Service.Load(ctx); err != nil {
			fatal("Failed to load dictionary", err)
		}

		events, err := inst.Service.Watch(ctx)
		if err != nil {
			fatal("Failed to watch dictionary", err)
		}
		source := lifecycle.NewSource(events)
		if err := source.Start(ctx); err != nil {
			fatal("Failed to start watcher", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", dimStyle.Render(inst.Home))

		for ev := range source.Events() {
			fmt.Fprintf(out, "%s %s\n", dimStyle.Render(time.Now().Format(time.TimeOnly)), ev)

			if e, ok := ev.(core.Event); ok && e.File == fs.FileMetadata {
				continue
			}
			if err := inst.Service.Load(ctx); err != nil {
				slog.Warn("reload failed", "error", err)
				continue
			}
			if s, ok := inst.Service.State().(core.ServiceState); ok {
				fmt.Fprintf(out, "  %d definitions, %d removed\n", s.Entries, s.Removed)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
