package ptar

import (
	"bytes"
	"os"
	"testing"
)

func TestTrailerRoundTrip(t *testing.T) {
	offsets := []int64{0, 512, 2048, 1 << 20}

	f, err := os.CreateTemp(t.TempDir(), "trailer")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.Write(bytes.Repeat([]byte{0}, 512)); err != nil {
		t.Fatal(err)
	}
	if err := writeTrailer(f, offsets); err != nil {
		t.Fatal(err)
	}

	got, err := readTrailer(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(offsets) {
		t.Fatalf("expected %d offsets, got %d", len(offsets), len(got))
	}
	for i := range offsets {
		if got[i] != offsets[i] {
			t.Fatalf("offset %d: want %d, got %d", i, offsets[i], got[i])
		}
	}
}

func TestReadTrailerOnPlainFileReturnsNotAPtarArchive(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "plain")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Write(bytes.Repeat([]byte{0}, 1024)); err != nil {
		t.Fatal(err)
	}

	_, err = readTrailer(f)
	if _, ok := err.(NotAPtarArchive); !ok {
		t.Fatalf("expected NotAPtarArchive, got %v", err)
	}
}

func TestReadTrailerOnEmptyFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "empty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	_, err = readTrailer(f)
	if _, ok := err.(NotAPtarArchive); !ok {
		t.Fatalf("expected NotAPtarArchive, got %v", err)
	}
}
