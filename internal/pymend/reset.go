package pymend

import (
	"errors"
	"flag"
	"fmt"
)

// ResetResult summarizes an environment reset for the run log.
type ResetResult struct {
	Removed      []string
	NotInstalled []string
	Failed       []string
	PurgeErr     error
}

// runReset uninstalls the target packages and then purges pip's download
// cache. A package that is not installed is tolerated; the purge always runs.
func runReset(pkgs []string, execCtx *Executor) ResetResult {
	var res ResetResult

	for _, pkg := range pkgs {
		colArrow.Print("-> ")
		colSuccess.Printf("Uninstalling %s\n", pkg)
		err := pipUninstall(pkg, execCtx)
		switch {
		case err == nil:
			res.Removed = append(res.Removed, pkg)
		case errors.Is(err, errPackageNotInstalled):
			cPrintf(colWarn, "Package %s is not installed, skipping.\n", pkg)
			res.NotInstalled = append(res.NotInstalled, pkg)
		default:
			cPrintf(colError, "Failed to uninstall %s: %v\n", pkg, err)
			res.Failed = append(res.Failed, pkg)
		}
	}

	colArrow.Print("-> ")
	colSuccess.Println("Purging pip download cache")
	if err := pipCachePurge(execCtx); err != nil {
		cPrintf(colError, "Cache purge failed: %v\n", err)
		res.PurgeErr = err
	}
	return res
}

func handleResetCommand(args []string, cfg *Config, execCtx *Executor) error {
	resetCmd := flag.NewFlagSet("reset", flag.ExitOnError)
	yes := resetCmd.Bool("y", false, "Do not ask for confirmation.")

	if err := resetCmd.Parse(args); err != nil {
		return err // Should not happen with flag.ExitOnError
	}

	pkgs := resetCmd.Args()
	if len(pkgs) == 0 {
		pkgs = cfg.RemoveList
	}

	if !*yes {
		if !askForConfirmation(colArrow, "Uninstall %v and purge the pip cache?", pkgs) {
			colArrow.Print("-> ")
			colSuccess.Println("Reset canceled.")
			return nil
		}
	}

	res := runReset(pkgs, execCtx)
	logRunStep("reset", resetSummary(res))

	// Failures of individual uninstalls are tolerated; a failed purge is the
	// only condition that fails the command.
	return res.PurgeErr
}

// resetStepErr condenses a reset outcome into a single error for step
// reporting. Not-installed packages are tolerated and never count as failures.
func resetStepErr(res ResetResult) error {
	if len(res.Failed) > 0 {
		if res.PurgeErr != nil {
			return fmt.Errorf("failed to uninstall %s; cache purge: %v", joinOrNone(res.Failed), res.PurgeErr)
		}
		return fmt.Errorf("failed to uninstall %s", joinOrNone(res.Failed))
	}
	return res.PurgeErr
}

func resetSummary(res ResetResult) string {
	s := "removed=" + joinOrNone(res.Removed) +
		" not-installed=" + joinOrNone(res.NotInstalled) +
		" failed=" + joinOrNone(res.Failed)
	if res.PurgeErr != nil {
		return s + " purge=failed"
	}
	return s + " purge=ok"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	out := items[0]
	for _, it := range items[1:] {
		out += "," + it
	}
	return out
}
