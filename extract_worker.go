package ptar

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func modTime(sec int64) time.Time { return time.Unix(sec, 0) }

// ExtractOptions configures Extract.
type ExtractOptions struct {
	// NThreads is the number of extract workers.
	NThreads int
	// BlockingFactor is the I/O chunk size, in units of 4096 bytes.
	BlockingFactor int
	// Verbose prints each processed entry's stored name to Log.
	Verbose bool
	// Xattrs, if set, restores extended attributes recorded in the
	// optional §4.J extension block, when present.
	Xattrs bool
	// Progress, if non-nil, receives per-entry completion updates.
	Progress ProgressBar
}

// runExtractWorkers materializes every task in destDir across n
// goroutines, each seeking independently into the archive. Directory
// and hard/symbolic-link entries that need the parent directory
// created first rely on idempotent, race-safe MkdirAll. Deferred link
// records from all workers are merged and returned for the caller to
// apply serially once every worker has joined.
func runExtractWorkers(ctx context.Context, archivePath, destDir string, tasks []extractTask, n int, blockingFactor int, verbose bool, xattrs map[string]map[string]string, pb ProgressBar) ([]deferredLink, error) {
	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan extractTask, n)

	g.Go(func() error {
		defer close(queue)
		for _, t := range tasks {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case queue <- t:
			}
		}
		return nil
	})

	var (
		mu    sync.Mutex
		links []deferredLink
	)
	blockingBytes := int64(blockingFactor) * 4096

	for i := 0; i < n; i++ {
		g.Go(func() error {
			f, err := os.Open(archivePath)
			if err != nil {
				return errors.Wrapf(err, "opening archive %s", archivePath)
			}
			defer f.Close()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case t, ok := <-queue:
					if !ok {
						return nil
					}
					link, err := extractTaskEntry(f, destDir, t, blockingBytes, verbose, xattrs)
					if err != nil {
						return err
					}
					if link != nil {
						mu.Lock()
						links = append(links, *link)
						mu.Unlock()
					}
					pb.Add(1)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return links, nil
}

// extractTaskEntry decodes the header at t.Offset and materializes it
// under destDir, returning a deferred link record for link-kind
// entries instead of creating them immediately. With verbose set, it
// logs the entry's stored name.
func extractTaskEntry(f *os.File, destDir string, t extractTask, blockingBytes int64, verbose bool, xattrs map[string]map[string]string) (*deferredLink, error) {
	hdr := make([]byte, blockSize)
	if _, err := f.ReadAt(hdr, t.Offset); err != nil {
		return nil, errors.Wrapf(err, "reading header at offset %d", t.Offset)
	}
	entry, err := decodeHeader(hdr, t.Offset)
	if err != nil {
		return nil, err
	}
	if verbose {
		Log.Infof("%s", entry.Path)
	}

	dst := filepath.Join(destDir, entry.Path)
	if err := os.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return nil, errors.Wrapf(err, "creating parent directory for %s", dst)
	}

	switch {
	case entry.Kind == KindDirectory || strings.HasSuffix(entry.Path, "/"):
		if err := os.MkdirAll(dst, 0o777); err != nil {
			return nil, errors.Wrapf(err, "creating directory %s", dst)
		}
		if err := os.Chmod(dst, os.FileMode(entry.Mode)); err != nil {
			return nil, errors.Wrapf(err, "chmod %s", dst)
		}
		if err := os.Chtimes(dst, modTime(entry.MTime), modTime(entry.MTime)); err != nil {
			return nil, errors.Wrapf(err, "chtimes %s", dst)
		}
		applyXattrs(dst, entry, xattrs)
		return nil, nil

	case entry.Kind == KindHardlink:
		return &deferredLink{
			Symbolic:   false,
			TargetPath: filepath.Join(destDir, entry.LinkTarget),
			LinkPath:   dst,
		}, nil

	case entry.Kind == KindSymlink:
		return &deferredLink{
			Symbolic:   true,
			TargetPath: entry.LinkTarget,
			LinkPath:   dst,
		}, nil

	default: // regular file
		if err := writeExtractedFile(f, dst, t.Offset, entry, blockingBytes); err != nil {
			return nil, err
		}
		applyXattrs(dst, entry, xattrs)
		return nil, nil
	}
}

func writeExtractedFile(f *os.File, dst string, offset int64, entry Entry, blockingBytes int64) error {
	if err := os.RemoveAll(dst); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "clearing existing path %s", dst)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return errors.Wrapf(err, "creating file %s", dst)
	}
	defer out.Close()

	remaining := entry.Size
	contentOff := offset + blockSize
	buf := make([]byte, blockingBytes)
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		rn, err := f.ReadAt(buf[:n], contentOff)
		if err != nil && err != io.EOF {
			return errors.Wrapf(err, "reading content for %s", dst)
		}
		if _, err := out.Write(buf[:rn]); err != nil {
			return errors.Wrapf(err, "writing content for %s", dst)
		}
		contentOff += int64(rn)
		remaining -= int64(rn)
	}
	if err := os.Chmod(dst, os.FileMode(entry.Mode)); err != nil {
		return errors.Wrapf(err, "chmod %s", dst)
	}
	return os.Chtimes(dst, modTime(entry.MTime), modTime(entry.MTime))
}
