package ptar

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// CreateOptions configures Create.
type CreateOptions struct {
	// NThreads is the number of writer workers.
	NThreads int
	// BlockingFactor is the I/O chunk size, in units of 4096 bytes.
	BlockingFactor int
	// Verbose prints each processed entry's stored name to Log.
	Verbose bool
	// Xattrs, if set, additionally records each entry's extended
	// attributes in the optional §4.J extension block.
	Xattrs bool
	// Progress, if non-nil, receives per-entry completion updates.
	Progress ProgressBar
}

// Create builds a new ptar archive at outputPath from the given root
// paths: files, symlinks or directories to walk. It truncates or
// creates outputPath fresh, runs the single-threaded planner, then a
// pool of writer workers that seek-and-write disjoint byte ranges of
// the output in parallel, and finally appends the two zero blocks and
// the offset-index trailer.
//
// The first fatal error — from planning or from any writer — aborts
// the whole operation; a partially written output file is left behind
// for the caller to deal with, matching spec.md §7's "no cleanup"
// policy for create failures.
func Create(ctx context.Context, outputPath string, roots []string, opt CreateOptions) error {
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

	if err := os.RemoveAll(outputPath); err != nil {
		return errors.Wrapf(err, "removing existing output %s", outputPath)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrapf(err, "creating output %s", outputPath)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing freshly created output %s", outputPath)
	}

	result, err := plan(roots, opt.Xattrs)
	if err != nil {
		return err
	}

	pb.SetTotal(len(result.Items))
	pb.Start()
	defer pb.Finish()

	if err := runWriters(ctx, outputPath, result.Items, opt.NThreads, opt.BlockingFactor, opt.Verbose, pb); err != nil {
		return err
	}

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return errors.Wrapf(err, "reopening output %s to append trailer", outputPath)
	}
	defer out.Close()

	if opt.Xattrs {
		if xb := encodeXattrBlock(result.Xattrs); xb != nil {
			var zero [2 * blockSize]byte
			if _, err := out.Write(zero[:]); err != nil {
				return errors.Wrap(err, "writing end-of-archive zero blocks")
			}
			if _, err := out.Write(xb); err != nil {
				return errors.Wrap(err, "writing xattr extension block")
			}
			return writeTrailerNoZeros(out, result.Offsets)
		}
	}

	return writeTrailer(out, result.Offsets)
}
