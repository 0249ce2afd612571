package pymend

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunResetToleratesNotInstalled(t *testing.T) {
	dir := t.TempDir()
	stubScript(t, dir, "pip", pipEmptyEnvStub)
	t.Setenv("PATH", dir)
	pipOverride = ""

	execCtx := &Executor{Context: context.Background()}
	res := runReset([]string{"python-telegram-bot", "telegram"}, execCtx)

	if len(res.NotInstalled) != 2 {
		t.Fatalf("NotInstalled = %v, want both packages", res.NotInstalled)
	}
	if len(res.Removed) != 0 || len(res.Failed) != 0 {
		t.Errorf("Removed = %v, Failed = %v, want none", res.Removed, res.Failed)
	}
	if res.PurgeErr != nil {
		t.Errorf("empty-cache purge reported as failure: %v", res.PurgeErr)
	}
}

func TestRunResetReportsRealFailure(t *testing.T) {
	dir := t.TempDir()
	stubScript(t, dir, "pip", "#!/bin/sh\nif [ \"$1\" = uninstall ]; then echo 'ERROR: Exception: Permission denied' >&2; exit 1; fi\nexit 0\n")
	t.Setenv("PATH", dir)
	pipOverride = ""

	execCtx := &Executor{Context: context.Background()}
	res := runReset([]string{"telegram"}, execCtx)

	if len(res.Failed) != 1 || res.Failed[0] != "telegram" {
		t.Fatalf("Failed = %v, want [telegram]", res.Failed)
	}
	if len(res.NotInstalled) != 0 {
		t.Errorf("NotInstalled = %v, want none", res.NotInstalled)
	}
	if res.PurgeErr != nil {
		t.Errorf("purge errored: %v", res.PurgeErr)
	}
}

func TestResetStepErr(t *testing.T) {
	if err := resetStepErr(ResetResult{NotInstalled: []string{"telegram"}}); err != nil {
		t.Errorf("not-installed counted as a step failure: %v", err)
	}
	if err := resetStepErr(ResetResult{Failed: []string{"telegram"}}); err == nil {
		t.Error("uninstall failure not reflected in the step status")
	}
	if err := resetStepErr(ResetResult{PurgeErr: errors.New("disk full")}); err == nil {
		t.Error("purge failure not reflected in the step status")
	}
}

func TestResetSummary(t *testing.T) {
	res := ResetResult{
		Removed:      []string{"python-telegram-bot"},
		NotInstalled: []string{"telegram"},
	}
	s := resetSummary(res)
	for _, want := range []string{"removed=python-telegram-bot", "not-installed=telegram", "failed=(none)", "purge=ok"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary %q missing %q", s, want)
		}
	}

	res.PurgeErr = errors.New("disk full")
	if !strings.Contains(resetSummary(res), "purge=failed") {
		t.Error("failed purge not reflected in summary")
	}
}

func TestJoinOrNone(t *testing.T) {
	if got := joinOrNone(nil); got != "(none)" {
		t.Errorf("empty = %q", got)
	}
	if got := joinOrNone([]string{"a", "b"}); got != "a,b" {
		t.Errorf("got %q", got)
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		0:       "0 B",
		512:     "512 B",
		2048:    "2.0 KiB",
		1 << 20: "1.0 MiB",
	}
	for in, want := range cases {
		if got := humanBytes(in); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
