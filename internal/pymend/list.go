package pymend

import (
	"fmt"
	"sort"
	"strings"
)

// handleListCommand prints installed pip packages, optionally filtered by a
// case-insensitive substring. Long listings go through the scrollable pager.
func handleListCommand(args []string, cfg *Config, execCtx *Executor) error {
	var filter string
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}

	pkgs, err := pipListInstalled(execCtx)
	if err != nil {
		return err
	}

	var lines []string
	for _, p := range pkgs {
		if filter != "" && !strings.Contains(strings.ToLower(p.Name), filter) {
			continue
		}
		marker := ""
		if strings.EqualFold(p.Name, cfg.Package) {
			if p.Version == cfg.Version {
				marker = "  (pinned)"
			} else {
				marker = fmt.Sprintf("  (pin is %s)", cfg.Version)
			}
		}
		lines = append(lines, fmt.Sprintf("%-40s %s%s", p.Name, p.Version, marker))
	}

	if len(lines) == 0 {
		if filter != "" {
			fmt.Printf("No installed packages match %q.\n", filter)
		} else {
			fmt.Println("No packages installed.")
		}
		return nil
	}

	sort.Strings(lines)
	return RunPager("Installed packages", lines)
}
