package ptar

import (
	"os"

	"github.com/pkg/errors"
)

// deferredLink is produced by an extract worker for a hard or symbolic
// link entry. Creation is deferred because a hard link's target must
// already exist on disk, and extraction is otherwise unordered across
// workers.
type deferredLink struct {
	Symbolic   bool
	TargetPath string
	LinkPath   string
}

// finalizeLinks applies links serially, after all regular entries and
// directories have been materialized by the extract worker pool. Link
// target existence is guaranteed at this point.
func finalizeLinks(links []deferredLink) error {
	for _, l := range links {
		if err := os.RemoveAll(l.LinkPath); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing existing path before linking %s", l.LinkPath)
		}
		if l.Symbolic {
			if err := os.Symlink(l.TargetPath, l.LinkPath); err != nil {
				return errors.Wrapf(err, "creating symlink %s -> %s", l.LinkPath, l.TargetPath)
			}
			continue
		}
		if err := os.Link(l.TargetPath, l.LinkPath); err != nil {
			return errors.Wrapf(err, "creating hard link %s -> %s", l.LinkPath, l.TargetPath)
		}
	}
	return nil
}
