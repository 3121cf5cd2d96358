package main

import (
	"context"
	"os"

	"github.com/archivelab/ptar"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	createMode     bool
	extractMode    bool
	fileMode       bool
	verbose        bool
	nThreads       int
	blockingFactor int
	xattrs         bool
	cfgFile        string
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "ptar -c|-x -f archive [roots...]",
		Short:                 "Parallel tar-compatible archiver",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.ArbitraryArgs,
		RunE:                  runRoot,
	}
	cmd.Flags().BoolVarP(&createMode, "create", "c", false, "create mode")
	cmd.Flags().BoolVarP(&extractMode, "extract", "x", false, "extract mode")
	cmd.Flags().BoolVarP(&fileMode, "file-mode", "f", false, "file-mode, required with -c or -x")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print one path per processed entry")
	cmd.Flags().IntVar(&nThreads, "nthreads", 24, "worker count")
	cmd.Flags().IntVar(&blockingFactor, "blocking-factor", 2000, "read/write chunk size, in units of 4096 bytes")
	cmd.Flags().BoolVar(&xattrs, "xattrs", false, "preserve extended attributes")
	cmd.Flags().StringVar(&cfgFile, "config", ptar.DefaultConfigPath(), "config file supplying nthreads/blocking-factor defaults")
	return cmd
}

// runRoot dispatches to Create or Extract. Per spec.md §6, `-c -f` and
// `-x -f` are the only valid mode combinations; anything else exits
// silently without action, matching the source behavior.
func runRoot(cmd *cobra.Command, args []string) error {
	if !fileMode || createMode == extractMode {
		return nil // InvalidArguments: exit silently
	}
	if len(args) < 1 {
		return nil
	}
	archive := args[0]
	roots := args[1:]

	cfg, err := ptar.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	effectiveThreads := nThreads
	if !cmd.Flags().Changed("nthreads") && cfg.NThreads > 0 {
		effectiveThreads = cfg.NThreads
	}
	effectiveBlockingFactor := blockingFactor
	if !cmd.Flags().Changed("blocking-factor") && cfg.BlockingFactor > 0 {
		effectiveBlockingFactor = cfg.BlockingFactor
	}

	if verbose {
		ptar.Log.SetOutput(os.Stdout)
		ptar.Log.SetLevel(logrus.InfoLevel)
		ptar.Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	ctx := context.Background()
	pb := ptar.NewProgressBar(archive)

	if createMode {
		return ptar.Create(ctx, archive, roots, ptar.CreateOptions{
			NThreads:       effectiveThreads,
			BlockingFactor: effectiveBlockingFactor,
			Verbose:        verbose,
			Xattrs:         xattrs,
			Progress:       pb,
		})
	}

	destDir := "."
	err = ptar.Extract(ctx, archive, destDir, ptar.ExtractOptions{
		NThreads:       effectiveThreads,
		BlockingFactor: effectiveBlockingFactor,
		Verbose:        verbose,
		Xattrs:         xattrs,
		Progress:       pb,
	})
	if _, ok := err.(ptar.NotAPtarArchive); ok {
		return ptar.FallbackToHostTar(archive, verbose)
	}
	return errors.Wrap(err, "extracting archive")
}
