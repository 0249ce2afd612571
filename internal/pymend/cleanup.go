package pymend

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pruneDir deletes files in dir matching keepSuffix-filtered entries beyond
// the newest keep entries. Returns how many were removed.
func pruneDir(dir string, suffixes []string, keep int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, suf := range suffixes {
			if strings.HasSuffix(e.Name(), suf) {
				names = append(names, e.Name())
				break
			}
		}
	}
	// Timestamped names sort chronologically; newest last.
	sort.Strings(names)

	if len(names) <= keep {
		return 0, nil
	}
	removed := 0
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			cPrintf(colWarn, "cleanup: %s: %v\n", name, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func handleCleanupCommand(args []string, cfg *Config) error {
	cleanupCmd := flag.NewFlagSet("cleanup", flag.ExitOnError)
	cleanBackups := cleanupCmd.Bool("backups", false, "Remove old backup archives (keeps the newest 3).")
	cleanLogs := cleanupCmd.Bool("logs", false, "Remove old run logs (keeps the newest 10).")
	cleanAll := cleanupCmd.Bool("all", false, "backups and logs.")

	if err := cleanupCmd.Parse(args); err != nil {
		return err // Should not happen with flag.ExitOnError
	}

	// If no flags are provided, show help and exit
	if !*cleanBackups && !*cleanLogs && !*cleanAll {
		fmt.Println("Usage: pymend cleanup [flag]")
		fmt.Println("You must specify what to clean up. Use one of the following flags:")
		cleanupCmd.PrintDefaults()
		return nil
	}

	if *cleanAll {
		*cleanBackups = true
		*cleanLogs = true
	}

	if *cleanBackups {
		colArrow.Print("-> ")
		cPrintf(colWarn, "Pruning old backup archives in %s.\n", BackupDir)
		if askForConfirmation(colArrow, "Are you sure you want to proceed?") {
			n, err := pruneDir(BackupDir, []string{".tar.zst", ".tar.gz"}, 3)
			if err != nil {
				return fmt.Errorf("failed to prune backups: %w", err)
			}
			colArrow.Print("-> ")
			colSuccess.Printf("Removed %d old backup archive%s.\n", n, plural(n, "", "s"))
		} else {
			colArrow.Print("-> ")
			colSuccess.Println("Cleanup of backups canceled.")
		}
	}

	if *cleanLogs {
		colArrow.Print("-> ")
		cPrintf(colWarn, "Pruning old run logs in %s.\n", LogDir)
		if askForConfirmation(colArrow, "Are you sure you want to proceed?") {
			n, err := pruneDir(LogDir, []string{".log.xz"}, 10)
			if err != nil {
				return fmt.Errorf("failed to prune run logs: %w", err)
			}
			colArrow.Print("-> ")
			colSuccess.Printf("Removed %d old run log%s.\n", n, plural(n, "", "s"))
		} else {
			colArrow.Print("-> ")
			colSuccess.Println("Cleanup of run logs canceled.")
		}
	}

	return nil
}
