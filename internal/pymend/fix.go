package pymend

import (
	"flag"
	"fmt"
	"os"
)

// handleFixCommand runs the full repair sequence: sweep, reset, reinstall.
// The steps run strictly in order, one at a time. A failed step is reported
// and the sequence continues; only the reinstall outcome decides the exit
// status, since that is the step that leaves the environment usable.
func handleFixCommand(args []string, cfg *Config) error {
	fixCmd := flag.NewFlagSet("fix", flag.ExitOnError)
	yes := fixCmd.Bool("y", false, "Do not ask for confirmation.")
	dir := fixCmd.String("dir", "", "Directory to sweep (default: current directory).")

	if err := fixCmd.Parse(args); err != nil {
		return err // Should not happen with flag.ExitOnError
	}

	target := *dir
	if target == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}
		target = cwd
	}

	if !*yes {
		ok := askForConfirmation(colArrow,
			"Sweep bytecode caches under %s, uninstall %v, purge the pip cache and reinstall %s==%s?",
			target, cfg.RemoveList, cfg.Package, cfg.Version)
		if !ok {
			colArrow.Print("-> ")
			colSuccess.Println("Fix canceled.")
			return nil
		}
	}

	type stepStatus struct {
		name string
		err  error
	}
	var steps []stepStatus

	// Step 1: cache sweep
	colArrow.Print("-> ")
	colSuccess.Println("Step 1/3: sweeping bytecode caches")
	sweepRes, sweepErr := runSweep(target, cfg, true, false, false)
	steps = append(steps, stepStatus{"sweep", sweepErr})

	// Step 2: environment reset
	colArrow.Print("-> ")
	colSuccess.Println("Step 2/3: resetting package environment")
	resetRes := runReset(cfg.RemoveList, RootExec)
	steps = append(steps, stepStatus{"reset", resetStepErr(resetRes)})

	// Step 3: pinned reinstall
	colArrow.Print("-> ")
	colSuccess.Println("Step 3/3: reinstalling pinned package")
	reinstallErr := runReinstall(cfg.Package, cfg.Version, RootExec)
	steps = append(steps, stepStatus{"reinstall", reinstallErr})

	// Per-step summary instead of silently masking partial failures.
	fmt.Println()
	colArrow.Print("-> ")
	colSuccess.Println("Fix summary")
	for _, s := range steps {
		if s.err != nil {
			cPrintf(colError, "  %-9s failed: %v\n", s.name, s.err)
		} else {
			cPrintf(colInfo, "  %-9s ok\n", s.name)
		}
	}

	logRunStep("fix", fmt.Sprintf("dir=%s swept-files=%d swept-dirs=%d %s reinstall-ok=%t",
		target, sweepRes.FilesRemoved, sweepRes.DirsRemoved, resetSummary(resetRes), reinstallErr == nil))

	if reinstallErr != nil {
		return fmt.Errorf("environment repair incomplete: %w", reinstallErr)
	}
	return nil
}
