package pymend

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ulikunitz/xz"
)

// Every mutating command appends step records here; Main flushes them to an
// xz-compressed log file under LogDir when the process exits.
var (
	runLogMu    sync.Mutex
	runLogLines []string
	runLogStart = time.Now()
)

func logRunStep(step, summary string) {
	runLogMu.Lock()
	defer runLogMu.Unlock()
	runLogLines = append(runLogLines,
		fmt.Sprintf("%s %s %s", time.Now().Format(time.RFC3339), step, summary))
}

// flushRunLog writes the collected step records as logs/run-<stamp>.log.xz.
// A run that recorded nothing leaves no file behind.
func flushRunLog() error {
	runLogMu.Lock()
	defer runLogMu.Unlock()
	if len(runLogLines) == 0 {
		return nil
	}

	if err := os.MkdirAll(LogDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	name := fmt.Sprintf("run-%s.log.xz", runLogStart.Format("20060102-150405"))
	path := filepath.Join(LogDir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create run log: %w", err)
	}
	defer f.Close()

	xw, err := xz.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	for _, line := range runLogLines {
		if _, err := io.WriteString(xw, line+"\n"); err != nil {
			xw.Close()
			return err
		}
	}
	return xw.Close()
}

// listRunLogs returns the log file names under LogDir, newest first.
func listRunLogs() ([]string, error) {
	entries, err := os.ReadDir(LogDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".log.xz") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// readRunLog decompresses one log file into lines.
func readRunLog(name string) ([]string, error) {
	f, err := os.Open(filepath.Join(LogDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	data, err := io.ReadAll(xr)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return lines, nil
}

// pageRunLog pipes one decompressed log through $PAGER, falling back to plain
// stdout when no pager works.
func pageRunLog(name string) error {
	f, err := os.Open(filepath.Join(LogDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}

	pager := os.Getenv("PAGER")
	var args []string
	if pager == "" {
		pager = "less"
		args = []string{"-r"}
	} else if pager == "less" {
		args = []string{"-r"}
	}

	cmd := exec.Command(pager, args...)
	cmd.Stdin = xr
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		// Fallback to plain stdout if pager fails
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}
		xr, err = xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create xz reader: %w", err)
		}
		_, err = io.Copy(os.Stdout, xr)
		return err
	}
	return nil
}

func handleLogCommand(args []string) error {
	logCmd := flag.NewFlagSet("log", flag.ExitOnError)
	tui := logCmd.Bool("tui", false, "Browse all run logs in the TUI viewer.")

	if err := logCmd.Parse(args); err != nil {
		return err // Should not happen with flag.ExitOnError
	}

	if *tui {
		return runLogTUI()
	}

	names, err := listRunLogs()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No run logs recorded yet.")
		return nil
	}

	target := names[0]
	if logCmd.NArg() > 0 {
		want := logCmd.Arg(0)
		found := false
		for _, n := range names {
			if n == want || strings.TrimSuffix(n, ".log.xz") == want {
				target, found = n, true
				break
			}
		}
		if !found {
			return fmt.Errorf("no run log named %s", want)
		}
	}
	return pageRunLog(target)
}
