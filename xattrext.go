package ptar

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/xattr"
)

// xattrMagic marks the optional extended-attribute side table. It is
// written immediately before the offsets trailer, so a reader that
// only understands the mandatory trailer (spec.md §4.B) never has to
// look this far back to find it.
const xattrMagic = "PTARXATT"

// xattrRecord is one entry's extended attributes, keyed by its stored
// archive path (matching Entry.storedName, including the trailing
// slash for directories).
type xattrRecord struct {
	Path  string
	Attrs map[string]string
}

// applyXattrs restores the extended attributes recorded for entry's
// stored path, if any were found in xattrs. A nil map (no extension
// block, or --xattrs not requested) is a silent no-op.
func applyXattrs(dst string, entry Entry, xattrs map[string]map[string]string) {
	if xattrs == nil {
		return
	}
	attrs, ok := xattrs[entry.storedName()]
	if !ok {
		return
	}
	for k, v := range attrs {
		if err := xattr.LSet(dst, k, []byte(v)); err != nil {
			Log.Warnf("restoring xattr %s on %s: %s", k, dst, err)
		}
	}
}

// readXattrs collects the extended attributes set on path. It never
// follows symlinks.
func readXattrs(path string) (xattrRecord, error) {
	rec := xattrRecord{Path: path}
	keys, err := xattr.LList(path)
	if err != nil {
		// Filesystems without xattr support return ENOTSUP; treat that
		// the same as "no attributes" rather than failing the archive.
		if errors.Is(err, xattr.ENOTSUP) {
			return rec, nil
		}
		return rec, err
	}
	for _, key := range keys {
		v, err := xattr.LGet(path, key)
		if err != nil {
			return rec, err
		}
		if rec.Attrs == nil {
			rec.Attrs = make(map[string]string)
		}
		rec.Attrs[key] = string(v)
	}
	return rec, nil
}

// encodeXattrBlock renders the extension block:
//
//	records ‖ u64_be(len(records bytes)) ‖ u64_be(count) ‖ magic
//
// Absent any records, it returns nil and the caller writes nothing.
func encodeXattrBlock(records []xattrRecord) []byte {
	if len(records) == 0 {
		return nil
	}
	var body []byte
	putString := func(s string) {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(len(s)))
		body = append(body, tmp[:]...)
		body = append(body, s...)
	}
	for _, rec := range records {
		putString(rec.Path)
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(rec.Attrs)))
		body = append(body, n[:]...)
		for k, v := range rec.Attrs {
			putString(k)
			putString(v)
		}
	}

	b := make([]byte, 0, len(body)+24)
	b = append(b, body...)
	var tail [16]byte
	binary.BigEndian.PutUint64(tail[0:8], uint64(len(body)))
	binary.BigEndian.PutUint64(tail[8:16], uint64(len(records)))
	b = append(b, tail[:]...)
	b = append(b, xattrMagic...)
	return b
}

// readXattrBlock looks for the extension block immediately preceding
// the offsets trailer (whose on-disk length is trailerLen bytes) and,
// if present, returns the decoded per-path attribute sets. Absence is
// not an error: a nil map is returned.
func readXattrBlock(f *os.File, trailerLen int64) (map[string]map[string]string, error) {
	archiveSize, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "seeking to end of archive")
	}
	magicAt := archiveSize - trailerLen - int64(len(xattrMagic))
	if magicAt < 16 {
		return nil, nil
	}
	magic := make([]byte, len(xattrMagic))
	if _, err := f.ReadAt(magic, magicAt); err != nil {
		return nil, errors.Wrap(err, "probing xattr block magic")
	}
	if string(magic) != xattrMagic {
		return nil, nil
	}

	tail := make([]byte, 16)
	if _, err := f.ReadAt(tail, magicAt-16); err != nil {
		return nil, errors.Wrap(err, "reading xattr block trailer")
	}
	bodyLen := int64(binary.BigEndian.Uint64(tail[0:8]))
	count := binary.BigEndian.Uint64(tail[8:16])

	bodyStart := magicAt - 16 - bodyLen
	if bodyStart < 0 {
		return nil, errors.New("corrupt xattr extension block")
	}
	body := make([]byte, bodyLen)
	if _, err := f.ReadAt(body, bodyStart); err != nil {
		return nil, errors.Wrap(err, "reading xattr block content")
	}

	result := make(map[string]map[string]string, count)
	pos := 0
	readString := func() (string, error) {
		if pos+4 > len(body) {
			return "", errors.New("truncated xattr extension block")
		}
		n := int(binary.BigEndian.Uint32(body[pos : pos+4]))
		pos += 4
		if pos+n > len(body) {
			return "", errors.New("truncated xattr extension block")
		}
		s := string(body[pos : pos+n])
		pos += n
		return s, nil
	}
	for i := uint64(0); i < count; i++ {
		path, err := readString()
		if err != nil {
			return nil, err
		}
		if pos+4 > len(body) {
			return nil, errors.New("truncated xattr extension block")
		}
		n := int(binary.BigEndian.Uint32(body[pos : pos+4]))
		pos += 4
		attrs := make(map[string]string, n)
		for j := 0; j < n; j++ {
			k, err := readString()
			if err != nil {
				return nil, err
			}
			v, err := readString()
			if err != nil {
				return nil, err
			}
			attrs[k] = v
		}
		result[path] = attrs
	}
	return result, nil
}
