package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/wtf"
	"github.com/aretw0/wtf/pkg/core"
	"github.com/aretw0/wtf/pkg/remote"
)

var (
	verbose   bool
	cfgFile   string
	useLocal  bool
	readOnly  bool
	noSync    bool
	assumeYes bool

	v   = viper.New()
	cfg appConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wtf",
	Short: "A personal slang dictionary for the terminal",
	Long: `wtf looks up, adds and hides short slang definitions.
The dictionary is a shared snapshot kept in sync with a GitHub repository,
plus your own additions. Removing a definition only hides it; recover brings it back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(v)
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err := setupLogger(cfg, verbose)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeLogger()
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&cfgFile, "config", "", "Config file (default <home>/config.yaml)")
	flags.String("home", "", "Data directory (default ~/.wtf)")
	flags.BoolVar(&useLocal, "local", false, "Use the nearest .wtf directory above the working directory")
	flags.BoolVar(&readOnly, "read-only", false, "Refuse every change to the dictionary files")
	flags.BoolVar(&noSync, "no-sync", false, "Skip the automatic background sync")

	_ = v.BindPFlag("home", flags.Lookup("home"))
}

// openDictionary wires the dictionary from the effective configuration.
func openDictionary(extra ...wtf.Option) (*wtf.Instance, error) {
	del, err := remote.ParseDeletePolicy(cfg.Sync.DeletePolicy)
	if err != nil {
		return nil, err
	}
	add, err := remote.ParseAddPolicy(cfg.Sync.AddPolicy)
	if err != nil {
		return nil, err
	}

	opts := []wtf.Option{
		wtf.WithLogger(slog.Default()),
		wtf.WithReadOnly(readOnly),
		wtf.WithRemote(remote.Config{
			APIBase: cfg.Remote.API,
			RawBase: cfg.Remote.Raw,
			Repo:    cfg.Remote.Repo,
			Branch:  cfg.Remote.Branch,
			Path:    cfg.Remote.Path,
			Token:   cfg.Remote.Token,
		}),
		wtf.WithTimeouts(cfg.Remote.ProbeTimeout, cfg.Remote.Timeout),
		wtf.WithDeletePolicy(del),
		wtf.WithAddPolicy(add),
	}
	return wtf.Open(cfg.Home, append(opts, extra...)...)
}

// autoSync runs the background sync after a command's output has been
// printed. Failures never change the exit status.
func autoSync(ctx context.Context, inst *wtf.Instance) {
	if noSync || readOnly || !cfg.Sync.Auto || inst.Engine == nil {
		return
	}
	report, ran := inst.Service.AutoSync(ctx)
	if ran && report.Status == core.StatusNeedsSync {
		fmt.Fprintln(os.Stderr, dimStyle.Render(describeSync(report)))
	}
}
