package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/diskshell"
	"github.com/brettbedarf/diskshell/config"
	"github.com/brettbedarf/diskshell/filesystem"
	"github.com/brettbedarf/diskshell/internal/util"
	"github.com/brettbedarf/diskshell/server"
	"github.com/brettbedarf/diskshell/shell"
	"github.com/brettbedarf/diskshell/store"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		storePath  string
		verbose    int
		mnt        string
		umount     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&storePath, "store", "", "Path to the store file (default \""+config.DefaultStorePath+"\")")
	flag.StringVar(&storePath, "s", "", "--store (shorthand)")
	flag.IntVar(&verbose, "verbose", 0, "Log verbosity level between 1 (error) and 5 (trace). Default is 2 (warn).")
	flag.IntVar(&verbose, "v", 0, "--verbose (shorthand)")
	flag.StringVar(&mnt, "mount", "", "Mount a read-only snapshot of the store at this path instead of starting the shell")
	flag.StringVar(&mnt, "m", "", "--mount (shorthand)")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the mount point first if needed before mounting again. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.Parse()

	cfg := config.NewDefaultConfig()
	if configPath != "" {
		override, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", configPath, err)
			os.Exit(1)
		}
		cfg.Merge(override)
	}
	// flags win over the config file
	cfg.Merge(&config.ConfigOverride{
		StorePath: nonZero(storePath),
		LogLvl:    nonZero(verbose),
	})

	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")
	logger.Info().Str("store", cfg.StorePath).Int("level", cfg.LogLvl).Msg("diskshell initializing")

	st, err := store.NewLocal(cfg.StorePath)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.StorePath).Msg("Invalid store path")
	}

	if mnt != "" {
		os.Exit(serve(cfg, st, mnt, umount))
	}

	fsys, err := filesystem.NewFS(cfg, st, nil)
	if err == nil {
		err = shell.New(fsys, os.Stdin, os.Stdout).Run()
	}
	os.Exit(exitCode(st, err))
}

// exitCode reports a fatal session error to the user and picks the exit status
func exitCode(st *store.Store, err error) int {
	logger := util.GetLogger("main")

	switch {
	case err == nil:
		return 0
	case errors.Is(err, diskshell.ErrStoreNotFound):
		if initErr := st.Init(); initErr != nil {
			logger.Error().Err(initErr).Str("store", st.Path()).Msg("Failed to create store")
			return 1
		}
		fmt.Printf("Program terminated: '%s' was not found. Attempted to create it, you can start the program again.\n", st.Path())
		return 0
	case errors.Is(err, diskshell.ErrInvalidKind), errors.Is(err, diskshell.ErrMalformedRecord):
		fmt.Printf("Program terminated: '%s' is corrupt (%v). Remove it to start over.\n", st.Path(), err)
	default:
		fmt.Printf("Program terminated: %v\n", err)
	}
	logger.Error().Err(err).Msg("Session ended with a fatal error")
	return 1
}

func serve(cfg *config.Config, st *store.Store, mnt string, umount bool) int {
	logger := util.GetLogger("main")

	// Try unmount if requested
	if umount { // send cli command
		cmd := exec.Command("fusermount", "-u", mnt)
		// we ignore error here if not already mounted
		cmd.Run() // nolint:errcheck
	}

	recs, err := st.Records()
	if err != nil {
		return exitCode(st, err)
	}
	srv, err := server.New(cfg, recs)
	if err != nil {
		return exitCode(st, err)
	}
	if err := srv.Serve(mnt); err != nil {
		logger.Error().Err(err).Str("mountpoint", mnt).Msg("Failed to mount filesystem")
		return 1
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	logger.Info().Str("mountpoint", mnt).Int("records", len(recs)).Msg("Snapshot mounted successfully")

	// Wait for termination signal
	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

	if err := srv.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
		return 1
	}
	logger.Info().Msg("Filesystem unmounted successfully")
	return 0
}

// nonZero returns nil for the zero value so unset flags don't override
func nonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return util.Pointer(v)
}
