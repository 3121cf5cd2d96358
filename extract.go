package ptar

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// Extract reads archivePath and materializes its contents under
// destDir. If the archive carries no ptar trailer, Extract returns
// NotAPtarArchive and performs no filesystem changes; callers wanting
// the documented fallback behavior (spec.md §4.I) should call
// FallbackToHostTar in that case.
//
// Extraction dispatches one task per offset across a pool of workers
// that read the archive independently; hard and symbolic links are
// staged as deferred records and applied serially, after every worker
// has joined, since hard-link targets must already exist on disk.
func Extract(ctx context.Context, archivePath, destDir string, opt ExtractOptions) error {
	if opt.NThreads <= 0 {
		opt.NThreads = 24
	}
	if opt.BlockingFactor <= 0 {
		opt.BlockingFactor = 2000
	}
	pb := opt.Progress
	if pb == nil {
		pb = NullProgressBar{}
	}

	f, offsets, err := openArchiveForExtract(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var xattrs map[string]map[string]string
	if opt.Xattrs {
		trailerLen := int64(8*len(offsets) + 16)
		xattrs, err = readXattrBlock(f, trailerLen)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(destDir, 0o777); err != nil {
		return errors.Wrapf(err, "creating destination directory %s", destDir)
	}

	tasks := tasksFromOffsets(offsets)
	pb.SetTotal(len(tasks))
	pb.Start()
	defer pb.Finish()

	links, err := runExtractWorkers(ctx, archivePath, destDir, tasks, opt.NThreads, opt.BlockingFactor, opt.Verbose, xattrs, pb)
	if err != nil {
		return err
	}
	return finalizeLinks(links)
}

// FallbackToHostTar replaces the current process image with the host
// tar binary extracting archivePath. It is the caller's responsibility
// to invoke this only after Extract has returned NotAPtarArchive.
func FallbackToHostTar(archivePath string, verbose bool) error {
	return execHostTar(archivePath, verbose)
}
