package ptar

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// Field byte ranges within a 512-byte v7 tar header, per spec.
const (
	fieldName  = 0
	fieldNameEnd = 100

	fieldMode    = 100
	fieldModeEnd = 108

	fieldUID    = 108
	fieldUIDEnd = 116

	fieldGID    = 116
	fieldGIDEnd = 124

	fieldSize    = 124
	fieldSizeEnd = 136

	fieldMTime    = 136
	fieldMTimeEnd = 148

	fieldChecksum    = 148
	fieldChecksumEnd = 156

	fieldType = 156

	fieldLink    = 157
	fieldLinkEnd = 257
)

// encodeHeader renders a 512-byte v7 tar header for e. It fails if the
// stored name or link target overflow their fields, or the size is too
// large to represent.
func encodeHeader(e Entry) ([]byte, error) {
	name := e.storedName()
	if len(name) > maxNameLen {
		return nil, NameTooLong{Path: name}
	}
	if (e.Kind == KindHardlink || e.Kind == KindSymlink) && len(e.LinkTarget) > maxNameLen {
		return nil, LinkTooLong{Target: e.LinkTarget}
	}
	size := e.Size
	if e.Kind != KindRegular {
		size = 0
	}
	if size >= maxSize {
		return nil, SizeOverflow{Path: name, Size: size}
	}

	b := make([]byte, blockSize)
	copy(b[fieldName:fieldNameEnd], name)
	putOctalNul(b[fieldMode:fieldModeEnd], uint64(e.Mode&0o777), 7)
	putOctalNul(b[fieldUID:fieldUIDEnd], uint64(e.UID), 7)
	putOctalNul(b[fieldGID:fieldGIDEnd], uint64(e.GID), 7)
	putOctalNul(b[fieldSize:fieldSizeEnd], uint64(size), 11)
	putOctalNul(b[fieldMTime:fieldMTimeEnd], uint64(e.MTime), 11)
	b[fieldType] = byte(e.Kind)
	if e.Kind == KindHardlink || e.Kind == KindSymlink {
		copy(b[fieldLink:fieldLinkEnd], e.LinkTarget)
	}

	fillChecksum(b)
	return b, nil
}

// decodeHeader parses a 512-byte v7 tar header read from offset off in
// the archive. It validates the checksum and returns CorruptHeader on
// mismatch.
func decodeHeader(b []byte, off int64) (Entry, error) {
	if len(b) != blockSize {
		return Entry{}, errors.Errorf("short header block: %d bytes", len(b))
	}
	want := checksumOf(b)
	got, err := parseOctalNul(b[fieldChecksum:fieldChecksumEnd])
	if err != nil {
		return Entry{}, CorruptHeader{Offset: off}
	}
	if got != want {
		return Entry{}, CorruptHeader{Offset: off}
	}

	mode, err := parseOctalNul(b[fieldMode:fieldModeEnd])
	if err != nil {
		return Entry{}, errors.Wrapf(err, "decoding mode at offset %d", off)
	}
	uid, err := parseOctalNul(b[fieldUID:fieldUIDEnd])
	if err != nil {
		return Entry{}, errors.Wrapf(err, "decoding uid at offset %d", off)
	}
	gid, err := parseOctalNul(b[fieldGID:fieldGIDEnd])
	if err != nil {
		return Entry{}, errors.Wrapf(err, "decoding gid at offset %d", off)
	}
	size, err := parseOctalNul(b[fieldSize:fieldSizeEnd])
	if err != nil {
		return Entry{}, errors.Wrapf(err, "decoding size at offset %d", off)
	}
	mtime, err := parseOctalNul(b[fieldMTime:fieldMTimeEnd])
	if err != nil {
		return Entry{}, errors.Wrapf(err, "decoding mtime at offset %d", off)
	}

	name := cstr(b[fieldName:fieldNameEnd])
	typ := Kind(b[fieldType])
	link := cstr(b[fieldLink:fieldLinkEnd])

	return Entry{
		Path:       name,
		Mode:       uint32(mode),
		UID:        int(uid),
		GID:        int(gid),
		Size:       int64(size),
		MTime:      int64(mtime),
		Kind:       typ,
		LinkTarget: link,
		Offset:     off,
	}, nil
}

// fillChecksum computes and writes the checksum field per spec: fill
// the field with spaces, sum all 512 bytes unsigned, write
// "%06o\0 " back into the field.
func fillChecksum(b []byte) {
	for i := fieldChecksum; i < fieldChecksumEnd; i++ {
		b[i] = ' '
	}
	sum := checksumOf(b)
	s := fmt.Sprintf("%06o", sum)
	copy(b[fieldChecksum:], s)
	b[fieldChecksum+6] = 0
	b[fieldChecksum+7] = ' '
}

// checksumOf computes the checksum of b treating the checksum field as
// all ASCII spaces, regardless of what's actually stored there.
func checksumOf(b []byte) uint64 {
	var tmp [blockSize]byte
	copy(tmp[:], b)
	for i := fieldChecksum; i < fieldChecksumEnd; i++ {
		tmp[i] = ' '
	}
	var sum uint64
	for _, c := range tmp {
		sum += uint64(c)
	}
	return sum
}

// putOctalNul writes v as a width-digit NUL-terminated octal string
// into dst (which is width+1 bytes, e.g. 7 digits + NUL for mode).
func putOctalNul(dst []byte, v uint64, width int) {
	s := fmt.Sprintf("%0*o", width, v)
	copy(dst, s)
	dst[width] = 0
}

// parseOctalNul reads a NUL-terminated (or space-terminated) octal
// field back into a uint64.
func parseOctalNul(b []byte) (uint64, error) {
	end := bytes.IndexAny(b, "\x00 ")
	if end == -1 {
		end = len(b)
	}
	s := bytes.TrimSpace(b[:end])
	if len(s) == 0 {
		return 0, nil
	}
	var v uint64
	for _, c := range s {
		if c < '0' || c > '7' {
			return 0, errors.Errorf("invalid octal digit %q", c)
		}
		v = v*8 + uint64(c-'0')
	}
	return v, nil
}

// cstr trims a fixed-width field at its first NUL byte.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i != -1 {
		b = b[:i]
	}
	return string(b)
}
