package ptar

import (
	"os"

	"github.com/pkg/errors"
)

// extractTask is one offset to decode and materialize, handed to
// exactly one extract worker.
type extractTask struct {
	Offset int64
}

// openArchiveForExtract opens path and reads back its offset index. It
// returns NotAPtarArchive (unwrapped, so callers can type-assert it)
// if the trailer magic is absent.
func openArchiveForExtract(path string) (*os.File, []int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening archive %s", path)
	}
	offsets, err := readTrailer(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, offsets, nil
}

func tasksFromOffsets(offsets []int64) []extractTask {
	tasks := make([]extractTask, len(offsets))
	for i, off := range offsets {
		tasks[i] = extractTask{Offset: off}
	}
	return tasks
}
