package ptar

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlanWalksDepthFirstAndAssignsDisjointOffsets(t *testing.T) {
	root := t.TempDir()
	must(t, os.MkdirAll(filepath.Join(root, "tree", "sub"), 0o755))
	must(t, os.WriteFile(filepath.Join(root, "tree", "a.txt"), []byte("hello"), 0o644))
	must(t, os.WriteFile(filepath.Join(root, "tree", "sub", "b.txt"), []byte("world!!"), 0o644))
	must(t, os.Symlink("a.txt", filepath.Join(root, "tree", "link-to-a")))
	must(t, os.Link(filepath.Join(root, "tree", "a.txt"), filepath.Join(root, "tree", "hard-to-a")))

	chdir(t, root)
	res, err := plan([]string{"tree"}, false)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Items) == 0 {
		t.Fatal("expected planned items")
	}

	seen := map[int64]bool{}
	var prevOffset int64
	for i, it := range res.Items {
		if seen[it.Entry.Offset] {
			t.Fatalf("offset %d assigned to more than one entry", it.Entry.Offset)
		}
		seen[it.Entry.Offset] = true
		if i > 0 && it.Entry.Offset < prevOffset {
			t.Fatalf("offsets not monotonically increasing at item %d", i)
		}
		prevOffset = it.Entry.Offset
	}

	var foundHardlink, foundSymlink bool
	for _, it := range res.Items {
		switch {
		case it.Entry.Kind == KindHardlink:
			foundHardlink = true
			if it.Entry.LinkTarget == "" {
				t.Fatal("hardlink entry missing target")
			}
		case it.Entry.Kind == KindSymlink:
			foundSymlink = true
			if it.Entry.LinkTarget != "a.txt" {
				t.Fatalf("expected symlink target a.txt, got %q", it.Entry.LinkTarget)
			}
		}
	}
	if !foundHardlink {
		t.Fatal("expected a hardlink entry in the plan")
	}
	if !foundSymlink {
		t.Fatal("expected a symlink entry in the plan")
	}
}

func TestPlanStatFailureAborts(t *testing.T) {
	_, err := plan([]string{"/nonexistent/path/that/should/not/exist"}, false)
	if _, ok := err.(StatFailed); !ok {
		t.Fatalf("expected StatFailed, got %v", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// chdir switches the test process into dir and restores the previous
// working directory on cleanup, so planned roots can be short relative
// paths the way a real invocation from the command line would use.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(prev)
	})
}
