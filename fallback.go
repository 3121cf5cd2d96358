package ptar

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// execHostTar replaces the current process image with the host tar
// binary, extracting archive into the current directory. It never
// returns on success: the calling program's image is gone. This is
// used when the extract reader finds no ptar trailer.
func execHostTar(archive string, verbose bool) error {
	path, err := exec.LookPath("tar")
	if err != nil {
		return errors.Wrap(err, "locating host tar binary on PATH")
	}
	flags := "xf"
	if verbose {
		flags = "xfv"
	}
	argv := []string{"tar", flags, archive}
	return syscall.Exec(path, argv, os.Environ())
}
