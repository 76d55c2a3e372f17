// Package core wires vfs2dbd's cobra command tree: a root command that
// carries shared flags and a mount subcommand that does the actual work.
package core

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/domelive/vfs2db/internal/vfsconfig"
	"github.com/domelive/vfs2db/internal/vfslog"
	"github.com/domelive/vfs2db/internal/vfsversion"
)

var (
	// VersionInfo holds build metadata. Version/GitCommit/BuildDate are
	// set via ldflags at build time.
	VersionInfo = vfsversion.New()

	log *vfslog.Logger

	cfgFile string
)

// Linker variables set via -ldflags "-X ...=...". Must default to literals.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "vfs2dbd",
	Short: "Mount a SQLite database as a FUSE filesystem",
	Long: `vfs2dbd exposes a SQLite database as a POSIX filesystem.

Tables appear as top-level directories, rows as rowid-named
subdirectories, and columns as files. Foreign-key columns appear as
symlinks to the row they reference.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command and translates a failed run into the
// matching process exit code.
func Execute() {
	VersionInfo.Version = Version
	VersionInfo.GitCommit = GitCommit
	VersionInfo.BuildDate = BuildDate

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 1
		if ec, ok := err.(*exitError); ok {
			code = ec.code
		}
		os.Exit(code)
	}
}

func init() {
	vfsconfig.RegisterConfigFlag(rootCmd, &cfgFile)
	vfsconfig.RegisterLogFlags(rootCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() error {
	opts := vfsconfig.DefaultOptions()
	opts.ConfigFile = cfgFile
	if err := vfsconfig.InitConfig(opts); err != nil {
		return err
	}
	log = vfsconfig.NewLogger("vfs2dbd")
	return nil
}

// exitError carries the process exit code a failed command should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func newExitError(code int, format string, args ...interface{}) *exitError {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(VersionInfo.Full())
		return nil
	},
}
