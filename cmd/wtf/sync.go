package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/wtf"
	"github.com/aretw0/wtf/pkg/core"
)

var (
	syncForce    bool
	syncAuto     string
	syncInterval time.Duration
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the dictionary with the shared repository",
	Long: `Check the shared repository for a newer dictionary and apply it, downloading
only the changed lines when possible. Your own additions and removals are kept.

--auto and --interval change the automatic sync policy; given alone they do
not contact the network.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		progress := newProgressLine(os.Stderr)
		var extra []wtf.Option
		if progress != nil {
			extra = append(extra, wtf.WithProgress(progress.update))
		}

		inst, err := openDictionary(extra...)
		if err != nil {
			fatal("Failed to open dictionary", err)
		}
		if inst.Engine == nil {
			fatal("Sync failed", core.ErrSyncDisabled)
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		policyChanged := cmd.Flags().Changed("auto") || cmd.Flags().Changed("interval")
		if policyChanged {
			var auto *bool
			if cmd.Flags().Changed("auto") {
				on, err := parseSwitch(syncAuto)
				if err != nil {
					fatal("Invalid --auto value", err)
				}
				auto = &on
			}
			var interval *time.Duration
			if cmd.Flags().Changed("interval") {
				interval = &syncInterval
			}

			meta, err := inst.Engine.ConfigureSync(ctx, auto, interval)
			if err != nil {
				fatal("Failed to update sync policy", err)
			}
			fmt.Fprintf(out, "Automatic sync %s, every %s.\n", onOff(meta.AutoSync), meta.SyncInterval)
			if !syncForce {
				return
			}
		}

		report, err := inst.Service.Sync(ctx, syncForce)
		progress.finish()
		if err != nil {
			if errors.Is(err, core.ErrNoNetwork) {
				fmt.Fprintln(out, warnStyle.Render(describeSync(report)))
				os.Exit(1)
			}
			fatal("Sync failed", err)
		}
		fmt.Fprintln(out, okStyle.Render(describeSync(report)))
	},
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Download the full snapshot even if the version is unchanged")
	syncCmd.Flags().StringVar(&syncAuto, "auto", "", "Turn automatic sync on or off")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", core.DefaultSyncInterval, "Minimum time between automatic syncs")
}
