package pymend

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
)

// sweepTarget is one filesystem entry scheduled for deletion.
type sweepTarget struct {
	Path  string
	IsDir bool
	Size  int64 // bytes reclaimed by deleting this entry (recursive for dirs)
}

// SweepResult summarizes a sweep run for reporting and the run log.
type SweepResult struct {
	FilesRemoved int
	DirsRemoved  int
	BytesFreed   int64
	Failures     []string
}

// scanSweepTargets walks root and collects bytecode caches: files matching
// *.pyc, directories named __pycache__ (taken whole, so the walk does not
// descend into them), plus any extra doublestar patterns from the config.
// Zero matches is not an error.
func scanSweepTargets(root string, extras []string) ([]sweepTarget, error) {
	var targets []sweepTarget

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal; the underlying
			// tool semantics tolerate partial visibility.
			debugf("sweep: skipping %s: %v\n", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() && d.Name() == "__pycache__" {
			targets = append(targets, sweepTarget{Path: path, IsDir: true, Size: dirSize(path)})
			return fs.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".pyc") {
			targets = append(targets, sweepTarget{Path: path, Size: entrySize(d)})
			return nil
		}

		for _, pat := range extras {
			ok, matchErr := doublestar.Match(pat, rel)
			if matchErr != nil {
				return fmt.Errorf("invalid sweep pattern %q: %w", pat, matchErr)
			}
			if ok {
				t := sweepTarget{Path: path, IsDir: d.IsDir()}
				if t.IsDir {
					t.Size = dirSize(path)
				} else {
					t.Size = entrySize(d)
				}
				targets = append(targets, t)
				if t.IsDir {
					return fs.SkipDir
				}
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return targets, nil
}

func entrySize(d fs.DirEntry) int64 {
	if info, err := d.Info(); err == nil {
		return info.Size()
	}
	return 0
}

func dirSize(path string) int64 {
	var total int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// sweepDelete removes the given targets. Individual failures are recorded and
// reported but do not abort the rest of the sweep.
func sweepDelete(targets []sweepTarget, quiet bool) SweepResult {
	var res SweepResult

	var bar *progressbar.ProgressBar
	if !quiet && len(targets) > 1 {
		bar = progressbar.NewOptions(len(targets),
			progressbar.OptionSetDescription("sweeping"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, t := range targets {
		var err error
		if t.IsDir {
			err = os.RemoveAll(t.Path)
		} else {
			err = os.Remove(t.Path)
		}
		if bar != nil {
			bar.Add(1)
		}
		if err != nil && !os.IsNotExist(err) {
			res.Failures = append(res.Failures, fmt.Sprintf("%s: %v", t.Path, err))
			continue
		}
		if t.IsDir {
			res.DirsRemoved++
		} else {
			res.FilesRemoved++
		}
		res.BytesFreed += t.Size
	}
	return res
}

// runSweep is the shared entry used by both the sweep command and 'fix'.
func runSweep(dir string, cfg *Config, yes, interactive, dryRun bool) (SweepResult, error) {
	targets, err := scanSweepTargets(dir, cfg.SweepExtras)
	if err != nil {
		return SweepResult{}, err
	}

	if len(targets) == 0 {
		colArrow.Print("-> ")
		colSuccess.Println("No bytecode caches found. Nothing to do.")
		return SweepResult{}, nil
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Found %d cache entr%s under %s (%s)\n",
		len(targets), plural(len(targets), "y", "ies"), dir, humanBytes(totalSize(targets)))

	if dryRun {
		for _, t := range targets {
			suffix := ""
			if t.IsDir {
				suffix = "/"
			}
			fmt.Printf("  would remove %s%s\n", t.Path, suffix)
		}
		return SweepResult{}, nil
	}

	if interactive {
		for i, t := range targets {
			suffix := ""
			if t.IsDir {
				suffix = "/"
			}
			fmt.Printf("%d) %s%s (%s)\n", i+1, t.Path, suffix, humanBytes(t.Size))
		}
		indices, ok := AskForSelection("Select entries to delete [a/n/1,2,-3]:", len(targets))
		if !ok {
			colArrow.Print("-> ")
			colSuccess.Println("Sweep canceled.")
			return SweepResult{}, nil
		}
		selected := make([]sweepTarget, 0, len(indices))
		for _, idx := range indices {
			selected = append(selected, targets[idx])
		}
		targets = selected
	} else if !yes {
		if !askForConfirmation(colArrow, "Delete %d cache entr%s?", len(targets), plural(len(targets), "y", "ies")) {
			colArrow.Print("-> ")
			colSuccess.Println("Sweep canceled.")
			return SweepResult{}, nil
		}
	}

	res := sweepDelete(targets, false)
	for _, f := range res.Failures {
		cPrintf(colWarn, "sweep: %s\n", f)
	}
	colArrow.Print("-> ")
	colSuccess.Printf("Removed %d files and %d directories, freed %s.\n",
		res.FilesRemoved, res.DirsRemoved, humanBytes(res.BytesFreed))
	return res, nil
}

func totalSize(targets []sweepTarget) int64 {
	var total int64
	for _, t := range targets {
		total += t.Size
	}
	return total
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func handleSweepCommand(args []string, cfg *Config) error {
	sweepCmd := flag.NewFlagSet("sweep", flag.ExitOnError)
	dir := sweepCmd.String("dir", "", "Directory to sweep (default: current directory).")
	yes := sweepCmd.Bool("y", false, "Do not ask for confirmation.")
	interactive := sweepCmd.Bool("i", false, "Interactively select which entries to delete.")
	dryRun := sweepCmd.Bool("dry-run", false, "List matching entries without deleting.")

	if err := sweepCmd.Parse(args); err != nil {
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
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", target)
	}

	res, err := runSweep(target, cfg, *yes, *interactive, *dryRun)
	if err != nil {
		return err
	}
	logRunStep("sweep", fmt.Sprintf("dir=%s files=%d dirs=%d freed=%d failures=%d",
		target, res.FilesRemoved, res.DirsRemoved, res.BytesFreed, len(res.Failures)))
	return nil
}
