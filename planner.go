package ptar

import (
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
)

// workItem is one entry's planning output, handed to exactly one
// writer worker.
type workItem struct {
	Entry      Entry
	SourcePath string
}

// planResult is the complete output of a planning pass: the work
// items in emission order (also their trailer order) and, if xattr
// preservation was requested, the per-path extended attributes
// collected along the way.
type planResult struct {
	Items   []workItem
	Offsets []int64
	Xattrs  []xattrRecord
}

// plan walks roots (files, symlinks or directories) and assigns each
// visited entry a disjoint byte offset in the output archive. Visiting
// order is depth-first and is also emission order: the order recorded
// in the trailer and the order standard tar readers will see.
//
// Any stat failure, name/link overflow or oversized file aborts
// planning entirely, matching the "whole archive creation aborts on
// first fatal error" policy.
func plan(roots []string, collectXattrs bool) (planResult, error) {
	p := &planner{
		links:         newLinkTable(),
		collectXattrs: collectXattrs,
	}
	for _, root := range roots {
		if err := p.walkRoot(root); err != nil {
			return planResult{}, err
		}
	}
	return planResult{Items: p.items, Offsets: p.offsets, Xattrs: p.xattrs}, nil
}

type planner struct {
	links         *linkTable
	offset        int64
	items         []workItem
	offsets       []int64
	xattrs        []xattrRecord
	collectXattrs bool
}

func (p *planner) walkRoot(root string) error {
	info, err := os.Lstat(root)
	if err != nil {
		return StatFailed{Path: root, Err: err}
	}
	if info.IsDir() {
		return p.walkDir(root, info)
	}
	return p.visit(root, info)
}

// walkDir performs a deterministic depth-first traversal of dir,
// visiting the directory itself first and then its children in
// name-sorted order, without ever changing the process's working
// directory.
func (p *planner) walkDir(dir string, info os.FileInfo) error {
	if err := p.visit(dir, info); err != nil {
		return err
	}
	// os.ReadDir already returns entries sorted by filename, which
	// gives us deterministic emission order for free.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return StatFailed{Path: dir, Err: err}
	}
	for _, de := range entries {
		child := filepath.Join(dir, de.Name())
		info, err := os.Lstat(child)
		if err != nil {
			return StatFailed{Path: child, Err: err}
		}
		if info.IsDir() {
			if err := p.walkDir(child, info); err != nil {
				return err
			}
			continue
		}
		if err := p.visit(child, info); err != nil {
			return err
		}
	}
	return nil
}

// visit stats one path, resolves its hard-link status via the link
// table, assigns it an offset, and appends it to the emission-ordered
// item list.
func (p *planner) visit(path string, info os.FileInfo) error {
	mode := info.Mode()
	entry := Entry{
		Path:  path,
		Mode:  uint32(info.Mode().Perm()),
		MTime: info.ModTime().Unix(),
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if ok {
		entry.UID = int(st.Uid)
		entry.GID = int(st.Gid)
	}

	var sourcePath string

	switch {
	case mode.IsDir():
		entry.Kind = KindDirectory
	case mode&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return StatFailed{Path: path, Err: err}
		}
		if len(target) > maxNameLen {
			return LinkTooLong{Target: target}
		}
		entry.Kind = KindSymlink
		entry.LinkTarget = target
	case mode.IsRegular():
		if ok {
			key := linkKey{dev: uint64(st.Dev), ino: uint64(st.Ino)}
			if first, isLink := p.links.firstSeenPath(key, path); isLink {
				entry.Kind = KindHardlink
				entry.LinkTarget = first
				break
			}
		}
		entry.Kind = KindRegular
		entry.Size = info.Size()
		if entry.Size >= maxSize {
			return SizeOverflow{Path: path, Size: entry.Size}
		}
		sourcePath = path
	default:
		return errors.Errorf("%s: unsupported file type, not a regular file, directory or symlink", path)
	}

	if len(entry.storedName()) > maxNameLen {
		return NameTooLong{Path: entry.storedName()}
	}

	entry.Offset = p.offset
	entry.SourcePath = sourcePath
	p.offset += entry.Span()

	if p.collectXattrs && (entry.Kind == KindRegular || entry.Kind == KindDirectory) {
		if rec, err := readXattrs(path); err != nil {
			return errors.Wrapf(err, "reading xattrs for %s", path)
		} else if len(rec.Attrs) > 0 {
			rec.Path = entry.storedName()
			p.xattrs = append(p.xattrs, rec)
		}
	}

	p.items = append(p.items, workItem{Entry: entry, SourcePath: sourcePath})
	p.offsets = append(p.offsets, entry.Offset)
	return nil
}
