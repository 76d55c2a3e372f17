package core

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/hanwen/go-fuse/v2/fuse/nodefs"
	"github.com/hanwen/go-fuse/v2/fuse/pathfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/domelive/vfs2db/internal/dbwatch"
	"github.com/domelive/vfs2db/internal/pathutil"
	"github.com/domelive/vfs2db/internal/translator"
)

var (
	dbFlag      string
	fuseOptFlag []string
)

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Mount a database at the given mountpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMount(args[0])
	},
}

func init() {
	mountCmd.Flags().StringVar(&dbFlag, "db", "", "Path to the SQLite database file (required)")
	mountCmd.Flags().StringArrayVar(&fuseOptFlag, "fuse-opt", nil, "Raw mount option passed through to the FUSE layer (repeatable)")
	_ = viper.BindPFlag("db.path", mountCmd.Flags().Lookup("db"))
}

// runMount opens the database, builds the translator, and blocks serving
// the FUSE mount until a signal or an unmount request ends it.
func runMount(mountpoint string) error {
	dbPath := dbFlag
	if dbPath == "" {
		dbPath = viper.GetString("db.path")
	}
	if dbPath == "" {
		return newExitError(1, "vfs2dbd mount: --db is required")
	}
	dbPath = pathutil.Expand(dbPath)
	if !pathutil.IsRegularFile(dbPath) {
		return newExitError(2, "vfs2dbd mount: %s is not a regular file", dbPath)
	}

	log.Info("vfs2dbd starting", "version", VersionInfo.Version, "db", dbPath, "mountpoint", mountpoint)

	tr := translator.New(dbPath, log)
	if err := tr.Init(context.Background()); err != nil {
		return newExitError(2, "opening database %s: %v", dbPath, err)
	}

	watcher, err := dbwatch.Start(dbPath, log)
	if err != nil {
		log.Warn("database file watch disabled", "err", err)
	}

	pathFs := pathfs.NewPathNodeFs(tr, nil)
	connector := nodefs.NewFileSystemConnector(pathFs.Root(), nodefs.NewOptions())

	mountOpts := &fuse.MountOptions{
		FsName:  "vfs2db",
		Name:    "vfs2db",
		Options: fuseOptFlag,
	}
	server, err := fuse.NewServer(connector.RawFS(), mountpoint, mountOpts)
	if err != nil {
		_ = tr.Close()
		return newExitError(3, "mounting at %s: %v", mountpoint, err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Info("received signal, unmounting", "signal", sig)
		if err := server.Unmount(); err != nil {
			log.Error("unmount error", "err", err)
		}
	}()

	server.Serve()

	if watcher != nil {
		_ = watcher.Close()
	}
	if err := tr.Close(); err != nil {
		log.Error("closing database", "err", err)
	}
	log.Info("vfs2dbd stopped")
	return nil
}
