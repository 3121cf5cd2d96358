package ptar

import "testing"

func TestLinkTableFirstSeen(t *testing.T) {
	lt := newLinkTable()
	key := linkKey{dev: 1, ino: 42}

	if _, isLink := lt.firstSeenPath(key, "a/first"); isLink {
		t.Fatal("first sighting should not be reported as a hard link")
	}
	path, isLink := lt.firstSeenPath(key, "b/second")
	if !isLink {
		t.Fatal("second sighting of the same key should be reported as a hard link")
	}
	if path != "a/first" {
		t.Fatalf("expected the original path %q, got %q", "a/first", path)
	}
}

func TestLinkTableDistinctKeysIndependent(t *testing.T) {
	lt := newLinkTable()
	if _, isLink := lt.firstSeenPath(linkKey{dev: 1, ino: 1}, "x"); isLink {
		t.Fatal("unexpected hard-link report for distinct key")
	}
	if _, isLink := lt.firstSeenPath(linkKey{dev: 1, ino: 2}, "y"); isLink {
		t.Fatal("unexpected hard-link report for distinct key")
	}
}
