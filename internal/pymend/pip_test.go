package pymend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParsePipList(t *testing.T) {
	data := []byte(`[{"name": "python-telegram-bot", "version": "20.7"}, {"name": "httpx", "version": "0.25.2"}]`)

	pkgs, err := parsePipList(data)
	if err != nil {
		t.Fatalf("parsePipList: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("got %d packages, want 2", len(pkgs))
	}
	if pkgs[0].Name != "python-telegram-bot" || pkgs[0].Version != "20.7" {
		t.Errorf("first package = %+v", pkgs[0])
	}
}

func TestParsePipListMalformed(t *testing.T) {
	if _, err := parsePipList([]byte("WARNING: not json")); err == nil {
		t.Fatal("expected error for non-JSON output")
	}
}

func TestParsePipShowVersion(t *testing.T) {
	out := "Name: python-telegram-bot\nVersion: 20.7\nSummary: We have made you a wrapper\n"
	if got := parsePipShowVersion(out); got != "20.7" {
		t.Errorf("got %q, want 20.7", got)
	}
	if got := parsePipShowVersion("no version here"); got != "" {
		t.Errorf("got %q for missing version", got)
	}
}

func TestParsePinSpec(t *testing.T) {
	pkg, ver, err := parsePinSpec("python-telegram-bot==20.7")
	if err != nil {
		t.Fatal(err)
	}
	if pkg != "python-telegram-bot" || ver != "20.7" {
		t.Errorf("got %s / %s", pkg, ver)
	}

	for _, bad := range []string{"python-telegram-bot", "==20.7", "pkg==", "pkg=20.7"} {
		if _, _, err := parsePinSpec(bad); err == nil {
			t.Errorf("parsePinSpec(%q) accepted", bad)
		}
	}
}

// stubExecutable drops a fake binary into a fresh PATH dir.
func stubExecutable(t *testing.T, dir, name string) {
	t.Helper()
	stubScript(t, dir, name, "#!/bin/sh\nexit 0\n")
}

// stubScript drops a fake executable with the given body into dir.
func stubScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
}

// pipEmptyEnvStub behaves like pip on a machine where the target packages were
// never installed and the download cache is already empty.
const pipEmptyEnvStub = `#!/bin/sh
case "$1" in
uninstall)
	echo "WARNING: Skipping $3 as it is not installed."
	;;
cache)
	echo "WARNING: No matching packages" >&2
	exit 1
	;;
esac
exit 0
`

func TestPipUninstallMapsNotInstalled(t *testing.T) {
	dir := t.TempDir()
	stubScript(t, dir, "pip", pipEmptyEnvStub)
	t.Setenv("PATH", dir)
	pipOverride = ""

	execCtx := &Executor{Context: context.Background()}
	err := pipUninstall("telegram", execCtx)
	if !errors.Is(err, errPackageNotInstalled) {
		t.Fatalf("got %v, want errPackageNotInstalled", err)
	}
}

func TestPipUninstallRealFailure(t *testing.T) {
	dir := t.TempDir()
	stubScript(t, dir, "pip", "#!/bin/sh\necho 'ERROR: Exception: Permission denied' >&2\nexit 1\n")
	t.Setenv("PATH", dir)
	pipOverride = ""

	execCtx := &Executor{Context: context.Background()}
	err := pipUninstall("telegram", execCtx)
	if err == nil {
		t.Fatal("expected an error from the failing uninstall")
	}
	if errors.Is(err, errPackageNotInstalled) {
		t.Fatalf("genuine failure mapped to errPackageNotInstalled: %v", err)
	}
}

func TestPipCachePurgeEmptyCacheIsSuccess(t *testing.T) {
	dir := t.TempDir()
	stubScript(t, dir, "pip", pipEmptyEnvStub)
	t.Setenv("PATH", dir)
	pipOverride = ""

	execCtx := &Executor{Context: context.Background()}
	if err := pipCachePurge(execCtx); err != nil {
		t.Fatalf("empty cache must purge cleanly: %v", err)
	}
}

func TestResolvePipPrefersPipBinary(t *testing.T) {
	dir := t.TempDir()
	stubExecutable(t, dir, "pip")
	stubExecutable(t, dir, "python3")
	t.Setenv("PATH", dir)
	pipOverride = ""

	argv, err := resolvePip()
	if err != nil {
		t.Fatal(err)
	}
	if len(argv) != 1 || argv[0] != "pip" {
		t.Errorf("argv = %v, want [pip]", argv)
	}
}

func TestResolvePipFallsBackToPythonModule(t *testing.T) {
	dir := t.TempDir()
	stubExecutable(t, dir, "python3")
	t.Setenv("PATH", dir)
	pipOverride = ""

	argv, err := resolvePip()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"python3", "-m", "pip"}
	if len(argv) != 3 || argv[0] != want[0] || argv[1] != want[1] || argv[2] != want[2] {
		t.Errorf("argv = %v, want %v", argv, want)
	}
}

func TestResolvePipNothingOnPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	pipOverride = ""

	if _, err := resolvePip(); err == nil {
		t.Fatal("expected errPipNotFound with empty PATH")
	}
}

func TestResolvePipOverride(t *testing.T) {
	dir := t.TempDir()
	stubExecutable(t, dir, "pip3.11")
	t.Setenv("PATH", dir)

	pipOverride = "pip3.11"
	defer func() { pipOverride = "" }()

	argv, err := resolvePip()
	if err != nil {
		t.Fatal(err)
	}
	if len(argv) != 1 || argv[0] != "pip3.11" {
		t.Errorf("argv = %v", argv)
	}
}
