package pymend

import (
	"strings"
	"testing"
)

func setTempLogDir(t *testing.T) {
	t.Helper()
	old := LogDir
	LogDir = t.TempDir()
	t.Cleanup(func() {
		LogDir = old
		runLogMu.Lock()
		runLogLines = nil
		runLogMu.Unlock()
	})
}

func TestRunLogRoundTrip(t *testing.T) {
	setTempLogDir(t)

	logRunStep("sweep", "dir=/srv/bot files=4 dirs=2 freed=2048 failures=0")
	logRunStep("reset", "removed=python-telegram-bot,telegram not-installed=(none) failed=(none) purge=ok")

	if err := flushRunLog(); err != nil {
		t.Fatalf("flushRunLog: %v", err)
	}

	names, err := listRunLogs()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 {
		t.Fatalf("got %d log files, want 1: %v", len(names), names)
	}

	lines, err := readRunLog(names[0])
	if err != nil {
		t.Fatalf("readRunLog: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "sweep") || !strings.Contains(lines[1], "purge=ok") {
		t.Errorf("unexpected log content: %v", lines)
	}
}

func TestFlushRunLogEmpty(t *testing.T) {
	setTempLogDir(t)

	if err := flushRunLog(); err != nil {
		t.Fatalf("empty flush errored: %v", err)
	}
	names, err := listRunLogs()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("empty run left a log file behind: %v", names)
	}
}

func TestPageRunLogPagerFallback(t *testing.T) {
	setTempLogDir(t)

	logRunStep("sweep", "dir=/srv/bot files=1 dirs=0 freed=128 failures=0")
	if err := flushRunLog(); err != nil {
		t.Fatal(err)
	}
	names, err := listRunLogs()
	if err != nil || len(names) != 1 {
		t.Fatalf("listRunLogs: %v %v", names, err)
	}

	// An unusable pager must fall back to plain output, not fail.
	t.Setenv("PAGER", "/does/not/exist/pager")
	if err := pageRunLog(names[0]); err != nil {
		t.Fatalf("fallback errored: %v", err)
	}
}

func TestListRunLogsMissingDir(t *testing.T) {
	old := LogDir
	LogDir = old + "-does-not-exist"
	defer func() { LogDir = old }()

	names, err := listRunLogs()
	if err != nil {
		t.Fatalf("missing LogDir must not error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("got %v", names)
	}
}
