// Package vfsconfig wires vfs2dbd's cobra flags to a viper configuration
// store: a config file, environment variables prefixed VFS2DBD_, and CLI
// flags, in increasing order of precedence.
package vfsconfig

import (
	"fmt"
	"strings"

	"github.com/domelive/vfs2db/internal/pathutil"
	"github.com/domelive/vfs2db/internal/vfslog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Options controls how InitConfig locates and loads vfs2dbd.yaml.
type Options struct {
	// ConfigFile is an explicit path from --config; empty means "search".
	ConfigFile string

	// SearchPaths are directories searched for vfs2dbd.yaml when
	// ConfigFile is empty.
	SearchPaths []string
}

// DefaultOptions returns the standard search locations for vfs2dbd.yaml.
func DefaultOptions() Options {
	return Options{
		SearchPaths: []string{
			"/etc/vfs2dbd",
			"~/.vfs2dbd",
			".",
		},
	}
}

// InitConfig reads vfs2dbd.yaml (or the explicit --config path) and enables
// VFS2DBD_-prefixed environment variable overrides.
func InitConfig(opts Options) error {
	if opts.ConfigFile != "" {
		viper.SetConfigFile(pathutil.Expand(opts.ConfigFile))
	} else {
		viper.SetConfigName("vfs2dbd")
		viper.SetConfigType("yaml")
		for _, p := range opts.SearchPaths {
			viper.AddConfigPath(pathutil.Expand(p))
		}
	}

	viper.SetEnvPrefix("VFS2DBD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading vfs2dbd config: %w", err)
		}
	}

	return nil
}

// RegisterLogFlags registers the --log-output and --log-level flags shared
// by every vfs2dbd subcommand.
func RegisterLogFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log-output", "auto", "Log output destination (auto, stdout, journald)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	_ = viper.BindPFlag("log.output", cmd.PersistentFlags().Lookup("log-output"))
	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("log.output", "auto")
	viper.SetDefault("log.level", "info")
}

// RegisterConfigFlag registers the --config flag.
func RegisterConfigFlag(cmd *cobra.Command, cfgFile *string) {
	cmd.PersistentFlags().StringVar(cfgFile, "config", "", "config file (default: search /etc/vfs2dbd, ~/.vfs2dbd, .)")
}

// NewLogger builds a vfslog.Logger from the current viper state, prefixed
// with prefix (the daemon passes its binary name).
func NewLogger(prefix string) *vfslog.Logger {
	return vfslog.New(vfslog.Config{
		Output: vfslog.Output(viper.GetString("log.output")),
		Level:  viper.GetString("log.level"),
		Prefix: prefix,
	})
}

// DBPath returns the --db flag value, expanded for ~ and environment
// variables.
func DBPath() string {
	return pathutil.Expand(viper.GetString("db.path"))
}
