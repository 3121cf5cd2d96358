package ptar

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// runWriters drains items across n goroutines managed by an errgroup:
// the first worker error cancels ctx, which the remaining workers and
// the feeder loop observe on their next operation. Each worker opens
// its own read-write handle to the output file; workers coordinate
// only through the disjoint byte ranges the planner already assigned,
// so no locking is required.
func runWriters(ctx context.Context, outputPath string, items []workItem, n int, blockingFactor int, verbose bool, pb ProgressBar) error {
	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan workItem, n)

	g.Go(func() error {
		defer close(queue)
		for _, it := range items {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case queue <- it:
			}
		}
		return nil
	})

	blockingBytes := int64(blockingFactor) * 4096
	for i := 0; i < n; i++ {
		g.Go(func() error {
			f, err := os.OpenFile(outputPath, os.O_RDWR, 0o666)
			if err != nil {
				return errors.Wrapf(err, "opening output %s for writing", outputPath)
			}
			defer f.Close()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case it, ok := <-queue:
					if !ok {
						return nil
					}
					if err := writeEntry(f, it, blockingBytes); err != nil {
						return err
					}
					if verbose {
						Log.Infof("%s", it.Entry.storedName())
					}
					pb.Add(1)
				}
			}
		})
	}
	return g.Wait()
}

// writeEntry seeks to the work item's offset and writes its header,
// then — for a regular file with no hard-link target — streams its
// content in blockingBytes-sized chunks followed by zero padding.
func writeEntry(f *os.File, it workItem, blockingBytes int64) error {
	hdr, err := encodeHeader(it.Entry)
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(hdr, it.Entry.Offset); err != nil {
		return errors.Wrapf(err, "writing header at offset %d", it.Entry.Offset)
	}

	if it.Entry.Kind != KindRegular {
		return nil
	}

	src, err := os.Open(it.SourcePath)
	if err != nil {
		return errors.Wrapf(err, "opening source file %s", it.SourcePath)
	}
	defer src.Close()

	contentOff := it.Entry.Offset + blockSize
	buf := make([]byte, blockingBytes)
	var written int64
	for written < it.Entry.Size {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := f.WriteAt(buf[:n], contentOff+written); werr != nil {
				return errors.Wrapf(werr, "writing content for %s", it.Entry.Path)
			}
			written += int64(n)
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			return errors.Wrapf(rerr, "reading source file %s", it.SourcePath)
		}
	}

	if padLen := pad(it.Entry.Size); padLen > 0 {
		zeros := make([]byte, padLen)
		if _, err := f.WriteAt(zeros, contentOff+it.Entry.Size); err != nil {
			return errors.Wrapf(err, "writing padding for %s", it.Entry.Path)
		}
	}
	return nil
}
