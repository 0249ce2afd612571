package pymend

import (
	"flag"
	"fmt"
	"strings"
)

// parsePinSpec splits "pkg==version" into its parts. A bare package name is
// rejected; the whole point of reinstall is the exact pin.
func parsePinSpec(spec string) (pkg, version string, err error) {
	parts := strings.SplitN(spec, "==", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid pin %q, expected pkg==version", spec)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// runReinstall force-reinstalls the pinned package, bypassing the cache.
func runReinstall(pkg, version string, execCtx *Executor) error {
	colArrow.Print("-> ")
	colSuccess.Printf("Reinstalling %s==%s (forced, no cache)\n", pkg, version)

	// Block the first Ctrl+C while pip rewrites site-packages.
	isCriticalAtomic.Store(1)
	defer isCriticalAtomic.Store(0)

	if err := pipInstallPinned(pkg, version, execCtx); err != nil {
		return fmt.Errorf("failed to reinstall %s==%s: %w", pkg, version, err)
	}
	colArrow.Print("-> ")
	colSuccess.Printf("%s==%s installed.\n", pkg, version)
	return nil
}

func handleReinstallCommand(args []string, cfg *Config, execCtx *Executor) error {
	reinstallCmd := flag.NewFlagSet("reinstall", flag.ExitOnError)
	if err := reinstallCmd.Parse(args); err != nil {
		return err // Should not happen with flag.ExitOnError
	}

	pkg, version := cfg.Package, cfg.Version
	if reinstallCmd.NArg() > 0 {
		var err error
		pkg, version, err = parsePinSpec(reinstallCmd.Arg(0))
		if err != nil {
			return err
		}
	}

	err := runReinstall(pkg, version, execCtx)
	if err != nil {
		logRunStep("reinstall", fmt.Sprintf("pin=%s==%s status=failed", pkg, version))
		return err
	}
	logRunStep("reinstall", fmt.Sprintf("pin=%s==%s status=ok", pkg, version))
	return nil
}
