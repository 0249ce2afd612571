package pymend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// pipPackage is one entry of `pip list --format=json`.
type pipPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// resolvePip returns the argv prefix used to invoke pip. Order of preference:
// PYMEND_PIP override, a `pip` binary on PATH, then `python3 -m pip` and
// `python -m pip` as fallbacks.
func resolvePip() ([]string, error) {
	if pipOverride != "" {
		if _, err := exec.LookPath(pipOverride); err != nil {
			return nil, fmt.Errorf("PYMEND_PIP=%s: %w", pipOverride, errPipNotFound)
		}
		return []string{pipOverride}, nil
	}
	if _, err := exec.LookPath("pip"); err == nil {
		return []string{"pip"}, nil
	}
	for _, py := range []string{"python3", "python"} {
		if _, err := exec.LookPath(py); err == nil {
			return []string{py, "-m", "pip"}, nil
		}
	}
	return nil, errPipNotFound
}

// pipCommand builds an *exec.Cmd for a pip subcommand.
func pipCommand(ctx context.Context, sub ...string) (*exec.Cmd, error) {
	prefix, err := resolvePip()
	if err != nil {
		return nil, err
	}
	argv := append(prefix, sub...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	return cmd, nil
}

// pipUninstall removes one package without confirmation. A package that is not
// installed is reported and mapped to errPackageNotInstalled so callers can
// tolerate it; any other pip failure is returned as-is.
func pipUninstall(pkgName string, execCtx *Executor) error {
	cmd, err := pipCommand(execCtx.Context, "uninstall", "-y", pkgName)
	if err != nil {
		return err
	}

	// Tee pip's output so its own diagnostics stay visible while we inspect
	// them for the not-installed case.
	var buf bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &buf)
	cmd.Stderr = io.MultiWriter(os.Stderr, &buf)

	runErr := execCtx.Run(cmd)
	out := strings.ToLower(buf.String())
	if strings.Contains(out, "not installed") || strings.Contains(out, "skipping "+strings.ToLower(pkgName)) {
		return fmt.Errorf("%s: %w", pkgName, errPackageNotInstalled)
	}
	return runErr
}

// pipCachePurge discards pip's download cache. An already-empty cache makes
// some pip versions exit non-zero; that is mapped to success.
func pipCachePurge(execCtx *Executor) error {
	cmd, err := pipCommand(execCtx.Context, "cache", "purge")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &buf)
	cmd.Stderr = io.MultiWriter(os.Stderr, &buf)

	runErr := execCtx.Run(cmd)
	if runErr != nil && strings.Contains(strings.ToLower(buf.String()), "no matching packages") {
		return nil
	}
	return runErr
}

// pipInstallPinned force-reinstalls pkg at exactly version, bypassing the
// download cache. Failures (network, unknown version) propagate unchanged;
// there is no retry and no rollback.
func pipInstallPinned(pkgName, version string, execCtx *Executor) error {
	spec := fmt.Sprintf("%s==%s", pkgName, version)
	cmd, err := pipCommand(execCtx.Context, "install", "--no-cache-dir", "--force-reinstall", spec)
	if err != nil {
		return err
	}
	return execCtx.Run(cmd)
}

// pipInstalledVersion returns the installed version of pkgName via `pip show`,
// or errPackageNotInstalled.
func pipInstalledVersion(execCtx *Executor, pkgName string) (string, error) {
	cmd, err := pipCommand(execCtx.Context, "show", pkgName)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	if err := execCtx.Run(cmd); err != nil {
		return "", fmt.Errorf("%s: %w", pkgName, errPackageNotInstalled)
	}
	ver := parsePipShowVersion(out.String())
	if ver == "" {
		return "", fmt.Errorf("%s: %w", pkgName, errPackageNotInstalled)
	}
	return ver, nil
}

func parsePipShowVersion(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// pipListInstalled returns all installed packages.
func pipListInstalled(execCtx *Executor) ([]pipPackage, error) {
	cmd, err := pipCommand(execCtx.Context, "list", "--format=json", "--disable-pip-version-check")
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	if err := execCtx.Run(cmd); err != nil {
		return nil, fmt.Errorf("pip list failed: %w", err)
	}
	return parsePipList(out.Bytes())
}

func parsePipList(data []byte) ([]pipPackage, error) {
	var pkgs []pipPackage
	if err := json.Unmarshal(data, &pkgs); err != nil {
		return nil, fmt.Errorf("cannot parse pip list output: %w", err)
	}
	return pkgs, nil
}

// pipVersionBanner returns the one-line `pip --version` output.
func pipVersionBanner(execCtx *Executor) (string, error) {
	cmd, err := pipCommand(execCtx.Context, "--version")
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	if err := execCtx.Run(cmd); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}
