package ptar

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// trailerMagic marks the end of a ptar archive's offset index. Its
// presence is the only thing distinguishing a ptar archive from a
// plain v7 tar file.
const trailerMagic = "!!PTAR!!"

// encodeTrailer renders the offset index: one big-endian u64 per
// offset in emission order, followed by a big-endian u64 count, then
// the magic cookie.
func encodeTrailer(offsets []int64) []byte {
	b := make([]byte, 0, 8*len(offsets)+16)
	var tmp [8]byte
	for _, off := range offsets {
		binary.BigEndian.PutUint64(tmp[:], uint64(off))
		b = append(b, tmp[:]...)
	}
	binary.BigEndian.PutUint64(tmp[:], uint64(len(offsets)))
	b = append(b, tmp[:]...)
	b = append(b, trailerMagic...)
	return b
}

// writeTrailer appends the two mandatory end-of-archive zero blocks
// and the offset-index trailer to w.
func writeTrailer(w io.Writer, offsets []int64) error {
	var zero [2 * blockSize]byte
	if _, err := w.Write(zero[:]); err != nil {
		return errors.Wrap(err, "writing end-of-archive zero blocks")
	}
	return writeTrailerNoZeros(w, offsets)
}

// writeTrailerNoZeros appends only the offset-index trailer, for
// callers that already wrote the two zero blocks themselves (e.g. to
// insert the §4.J xattr extension block in between).
func writeTrailerNoZeros(w io.Writer, offsets []int64) error {
	if _, err := w.Write(encodeTrailer(offsets)); err != nil {
		return errors.Wrap(err, "writing offset trailer")
	}
	return nil
}

// readTrailer seeks to the end of f, reads and validates the magic
// cookie, and returns the decoded offset index in emission order. It
// returns NotAPtarArchive if the magic is absent, in which case the
// caller should fall back to a host tar implementation.
func readTrailer(f *os.File) ([]int64, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "seeking to end of archive")
	}
	if size < 8 {
		return nil, NotAPtarArchive{}
	}

	magic := make([]byte, 8)
	if _, err := f.ReadAt(magic, size-8); err != nil {
		return nil, errors.Wrap(err, "reading trailer magic")
	}
	if string(magic) != trailerMagic {
		return nil, NotAPtarArchive{}
	}

	if size < 16 {
		return nil, NotAPtarArchive{}
	}
	countBuf := make([]byte, 8)
	if _, err := f.ReadAt(countBuf, size-16); err != nil {
		return nil, errors.Wrap(err, "reading trailer count")
	}
	count := binary.BigEndian.Uint64(countBuf)

	trailerLen := int64(8*count + 16)
	if trailerLen > size {
		return nil, errors.Errorf("trailer claims %d entries, larger than the archive itself", count)
	}

	offBuf := make([]byte, 8*count)
	if count > 0 {
		if _, err := f.ReadAt(offBuf, size-trailerLen); err != nil {
			return nil, errors.Wrap(err, "reading offset index")
		}
	}

	offsets := make([]int64, count)
	for i := range offsets {
		offsets[i] = int64(binary.BigEndian.Uint64(offBuf[8*i : 8*i+8]))
	}
	return offsets, nil
}
