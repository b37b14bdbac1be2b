package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/wtf"
	"github.com/aretw0/wtf/pkg/remote"
)

// appConfig is the effective CLI configuration after merging defaults, the
// config file, WTF_* environment variables and flags.
type appConfig struct {
	Home       string       `toml:"home"`
	ConfigFile string       `toml:"-"`
	Remote     remoteConfig `toml:"remote"`
	Sync       syncConfig   `toml:"sync"`
	Log        logConfig    `toml:"log"`
}

type remoteConfig struct {
	API          string        `toml:"api"`
	Raw          string        `toml:"raw"`
	Repo         string        `toml:"repo"`
	Branch       string        `toml:"branch"`
	Path         string        `toml:"path"`
	Token        string        `toml:"token,omitempty"`
	ProbeTimeout time.Duration `toml:"-"`
	Timeout      time.Duration `toml:"-"`
}

type syncConfig struct {
	Auto         bool   `toml:"auto"`
	DeletePolicy string `toml:"delete_policy"`
	AddPolicy    string `toml:"add_policy"`
}

type logConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file,omitempty"`
	Rotate bool   `toml:"rotate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("remote.api", remote.DefaultAPIBase)
	v.SetDefault("remote.raw", remote.DefaultRawBase)
	v.SetDefault("remote.repo", remote.DefaultRepo)
	v.SetDefault("remote.branch", remote.DefaultBranch)
	v.SetDefault("remote.path", remote.DefaultPath)
	v.SetDefault("remote.probe_timeout", remote.DefaultProbeTimeout)
	v.SetDefault("remote.timeout", remote.DefaultTimeout)
	v.SetDefault("sync.auto", true)
	v.SetDefault("sync.delete_policy", remote.DeleteExact.String())
	v.SetDefault("sync.add_policy", remote.AddUnique.String())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.rotate", false)
}

// loadConfig resolves the data home first, since the config file lives inside it.
func loadConfig(v *viper.Viper) (appConfig, error) {
	setDefaults(v)
	v.SetEnvPrefix("WTF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home, err := resolveHome(v)
	if err != nil {
		return appConfig{}, err
	}

	file := cfgFile
	if file == "" {
		file = filepath.Join(home, "config.yaml")
	}
	if _, err := os.Stat(file); err == nil {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return appConfig{}, fmt.Errorf("failed to read config %s: %w", file, err)
		}
		// The file may relocate the home; flags and env still win over it.
		if !useLocal && v.GetString("home") != "" {
			home = v.GetString("home")
		}
	} else if cfgFile != "" {
		return appConfig{}, fmt.Errorf("config file not found: %s", cfgFile)
	} else {
		file = ""
	}

	return appConfig{
		Home:       home,
		ConfigFile: file,
		Remote: remoteConfig{
			API:          v.GetString("remote.api"),
			Raw:          v.GetString("remote.raw"),
			Repo:         v.GetString("remote.repo"),
			Branch:       v.GetString("remote.branch"),
			Path:         v.GetString("remote.path"),
			Token:        v.GetString("remote.token"),
			ProbeTimeout: v.GetDuration("remote.probe_timeout"),
			Timeout:      v.GetDuration("remote.timeout"),
		},
		Sync: syncConfig{
			Auto:         v.GetBool("sync.auto"),
			DeletePolicy: v.GetString("sync.delete_policy"),
			AddPolicy:    v.GetString("sync.add_policy"),
		},
		Log: logConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
			Rotate: v.GetBool("log.rotate"),
		},
	}, nil
}

func resolveHome(v *viper.Viper) (string, error) {
	if useLocal {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return wtf.FindHome(wd)
	}
	if home := v.GetString("home"); home != "" {
		return home, nil
	}
	return wtf.DefaultHome(), nil
}

// durationText renders durations as "5s" rather than nanoseconds.
type durationText time.Duration

func (d durationText) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// configDump is the TOML view printed by `wtf config`.
type configDump struct {
	appConfig
	Timeouts struct {
		Probe    durationText `toml:"probe"`
		Transfer durationText `toml:"transfer"`
	} `toml:"timeouts"`
}

var showSecrets bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dump := configDump{appConfig: cfg}
		dump.Timeouts.Probe = durationText(cfg.Remote.ProbeTimeout)
		dump.Timeouts.Transfer = durationText(cfg.Remote.Timeout)
		if dump.Remote.Token != "" && !showSecrets {
			dump.Remote.Token = "********"
		}

		out := cmd.OutOrStdout()
		if cfg.ConfigFile != "" {
			fmt.Fprintf(out, "# loaded from %s\n", cfg.ConfigFile)
		}
		if err := toml.NewEncoder(out).Encode(dump); err != nil {
			fatal("Failed to encode configuration", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print the API token in clear")
}
