package pymend

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func makeCacheTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bot.py"), "print('hi')\n")
	writeFile(t, filepath.Join(root, "bot.pyc"), "bytecode")
	writeFile(t, filepath.Join(root, "pkg", "mod.pyc"), "bytecode")
	writeFile(t, filepath.Join(root, "pkg", "__pycache__", "mod.cpython-311.pyc"), "bytecode")
	writeFile(t, filepath.Join(root, "pkg", "__pycache__", "other.cpython-311.pyc"), "bytecode")
	writeFile(t, filepath.Join(root, "pkg", "sub", "__pycache__", "deep.pyc"), "bytecode")
	writeFile(t, filepath.Join(root, "data.json"), "{}")
	return root
}

func TestScanSweepTargets(t *testing.T) {
	root := makeCacheTree(t)

	targets, err := scanSweepTargets(root, nil)
	if err != nil {
		t.Fatalf("scanSweepTargets: %v", err)
	}

	// bot.pyc, pkg/mod.pyc, pkg/__pycache__, pkg/sub/__pycache__
	var files, dirs int
	for _, tg := range targets {
		if tg.IsDir {
			dirs++
		} else {
			files++
		}
	}
	if files != 2 || dirs != 2 {
		t.Fatalf("got %d files and %d dirs, want 2 and 2: %+v", files, dirs, targets)
	}

	// The walk must not descend into matched __pycache__ dirs.
	for _, tg := range targets {
		if filepath.Base(filepath.Dir(tg.Path)) == "__pycache__" {
			t.Errorf("descended into matched cache dir: %s", tg.Path)
		}
	}
}

func TestSweepDeleteRemovesEverything(t *testing.T) {
	root := makeCacheTree(t)

	targets, err := scanSweepTargets(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := sweepDelete(targets, true)
	if len(res.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", res.Failures)
	}
	if res.FilesRemoved != 2 || res.DirsRemoved != 2 {
		t.Fatalf("removed %d files / %d dirs, want 2 / 2", res.FilesRemoved, res.DirsRemoved)
	}
	if res.BytesFreed == 0 {
		t.Error("BytesFreed not accounted")
	}

	// Post-condition: nothing matching remains.
	left, err := scanSweepTargets(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Fatalf("entries left after sweep: %+v", left)
	}

	// Non-cache files survive.
	for _, keep := range []string{"bot.py", "data.json"} {
		if _, err := os.Stat(filepath.Join(root, keep)); err != nil {
			t.Errorf("%s was deleted: %v", keep, err)
		}
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	root := makeCacheTree(t)

	first, err := scanSweepTargets(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	sweepDelete(first, true)

	// Second pass over a clean tree: zero matches, no error.
	second, err := scanSweepTargets(root, nil)
	if err != nil {
		t.Fatalf("second scan errored: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second scan found %d entries, want 0", len(second))
	}
	res := sweepDelete(second, true)
	if len(res.Failures) != 0 || res.FilesRemoved != 0 || res.DirsRemoved != 0 {
		t.Fatalf("second sweep not a no-op: %+v", res)
	}
}

func TestScanSweepTargetsExtraPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "stale.pyo"), "x")
	writeFile(t, filepath.Join(root, "a", "keep.py"), "x")

	targets, err := scanSweepTargets(root, []string{"**/*.pyo"})
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 1 || filepath.Base(targets[0].Path) != "stale.pyo" {
		t.Fatalf("extra pattern match wrong: %+v", targets)
	}
}

func TestScanSweepTargetsBadPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f.txt"), "x")

	if _, err := scanSweepTargets(root, []string{"[bad"}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestScanSweepTargetsEmptyTree(t *testing.T) {
	targets, err := scanSweepTargets(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("empty tree must not error: %v", err)
	}
	if len(targets) != 0 {
		t.Fatalf("empty tree matched %d entries", len(targets))
	}
}
