package pymend

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
)

// printHelp prints the commands table
func printHelp() {
	// General Usage Header
	colSuccess.Println("Usage: pymend <command> [arguments]")
	colSuccess.Println("Run 'pymend <command>' for advanced options")
	fmt.Println()
	color.Info.Println("Available Commands:")

	type cmdInfo struct {
		Cmd  string
		Args string
		Desc string
	}
	cmds := []cmdInfo{
		{"version, --version", "", "Version information"},
		{"fix", "[-y] [-dir D]", "Full repair: sweep caches, reset environment, reinstall pin"},
		{"sweep, s", "[-dir D] [-y] [-i] [-dry-run]", "Delete *.pyc files and __pycache__ directories"},
		{"reset", "[-y] [pkg...]", "Uninstall target packages and purge the pip cache"},
		{"reinstall", "[pkg==ver]", "Force-reinstall the pinned package, bypassing the cache"},
		{"doctor, d", "", "Check python/pip availability and pin status"},
		{"list, ls", "[filter]", "List installed pip packages, optionally filter by name"},
		{"backup", "[-upload] [-name N]", "Archive the configured data files"},
		{"restore", "[-remote] [-dir D] <archive>", "Verify and unpack a backup archive"},
		{"cleanup", "[options]", "Prune old backups and run logs"},
		{"log", "[-tui] [run-id]", "Show run logs (pager or TUI viewer)"},
		{"settings", "", "Manage pymend configuration interactively"},
	}

	// --- Dynamic Padding Logic ---
	// 1. Find the longest usage string to calculate the ideal width for the first column.
	maxLen := 0
	for _, c := range cmds {
		length := len(c.Cmd) + len(c.Args)
		if c.Args != "" {
			length++ // Account for the space
		}
		if length > maxLen {
			maxLen = length
		}
	}
	columnWidth := maxLen + 4

	// 2. Print the formatted list with calculated padding.
	for _, c := range cmds {
		var usageString string
		if c.Args != "" {
			usageString = fmt.Sprintf("  %s %s", c.Cmd, c.Args)
		} else {
			usageString = fmt.Sprintf("  %s", c.Cmd)
		}

		fmt.Print("  ") // Indent
		color.Bold.Print(c.Cmd)
		if c.Args != "" {
			fmt.Print(" ")
			color.Cyan.Print(c.Args)
		}

		pad := columnWidth - len(usageString)
		if pad < 1 {
			pad = 1
		}
		fmt.Print(strings.Repeat(" ", pad))

		color.Info.Println(c.Desc)
	}

	fmt.Println()
}

// mutatingCommands take the run lock and leave a run log behind.
var mutatingCommands = map[string]bool{
	"fix": true, "sweep": true, "s": true, "reset": true,
	"reinstall": true, "backup": true, "restore": true,
}

// Main is the CLI entrypoint for cmd/pymend.
func Main() {
	// 1. CONTEXT AND SIGNAL SETUP
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. SIGNAL CHANNEL SETUP
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// 3. SIGNAL HANDLING GOROUTINE
	go func() {
		for {
			select {
			case sig := <-sigs:
				if isCriticalAtomic.Load() == 1 {
					// --- CRITICAL PHASE: Block 1st signal, force exit on 2nd ---
					colArrow.Print("\n-> ")
					colError.Printf("Critical operation in progress (reinstall). Press Ctrl+C AGAIN to force exit NOW.\n")

					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						colError.Printf("Forced immediate exit.")
						os.Exit(130) // Common exit code for SIGINT
					case <-time.After(5 * time.Second):
						continue
					case <-ctx.Done():
						return
					}
				} else {
					// --- NON-CRITICAL PHASE: Graceful Cancellation ---
					colArrow.Print("\n-> ")
					color.Danger.Printf("Received %v. Cancelling process gracefully\n", sig)
					cancel()

					// Give the command a moment to die and flush its buffers
					time.Sleep(100 * time.Millisecond)

					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						color.Danger.Printf("Second interrupt received. Forcing immediate exit.")
						os.Exit(130)
					case <-time.After(2 * time.Second):
						colArrow.Print("\n-> ")
						color.Danger.Printf("Graceful shutdown timeout. Exiting.")
						os.Exit(0)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// 4. MAIN LOGIC EXECUTION
	if ctx.Err() != nil {
		return
	}

	if len(os.Args) < 2 {
		printHelp()
		return
	}

	configPath := ConfigFile
	if root := os.Getenv("PYMEND_ROOT"); root != "" {
		configPath = filepath.Join(root, "etc", "pymend.conf")
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config %s: %v\n", configPath, err)
	}
	initConfig(cfg)

	// 5. CHECK IF ROOT PRIVILEGES ARE NEEDED
	if needsRootPrivileges(os.Args[1:], cfg) {
		if err := authenticateOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
			os.Exit(1)
		}
	}

	// 6. INITIALIZE EXECUTORS
	UserExec = &Executor{
		Context:         ctx,
		ShouldRunAsRoot: false,
	}
	RootExec = &Executor{
		Context:         ctx,
		ShouldRunAsRoot: needsRootPrivileges(os.Args[1:], cfg),
	}

	// 7. RUN LOCK AND RUN LOG for mutating commands
	if mutatingCommands[os.Args[1]] {
		release, err := acquireRunLock()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer release()
		defer func() {
			if err := flushRunLog(); err != nil {
				debugf("failed to write run log: %v\n", err)
			}
		}()
	}

	// 8. MAIN LOGIC
	switch os.Args[1] {
	case "fix":
		if err := handleFixCommand(os.Args[2:], cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Fix failed: %v\n", err)
			flushRunLog()
			os.Exit(1)
		}

	case "sweep", "s":
		if err := handleSweepCommand(os.Args[2:], cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
			flushRunLog()
			os.Exit(1)
		}

	case "reset":
		if err := handleResetCommand(os.Args[2:], cfg, RootExec); err != nil {
			fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
			flushRunLog()
			os.Exit(1)
		}

	case "reinstall":
		if err := handleReinstallCommand(os.Args[2:], cfg, RootExec); err != nil {
			fmt.Fprintf(os.Stderr, "Reinstall failed: %v\n", err)
			flushRunLog()
			os.Exit(1)
		}

	case "doctor", "d":
		if err := handleDoctorCommand(cfg, UserExec); err != nil {
			fmt.Fprintf(os.Stderr, "Doctor failed: %v\n", err)
			os.Exit(1)
		}

	case "list", "ls":
		if err := handleListCommand(os.Args[2:], cfg, UserExec); err != nil {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}

	case "backup":
		if err := handleBackupCommand(os.Args[2:], cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Backup failed: %v\n", err)
			flushRunLog()
			os.Exit(1)
		}

	case "restore":
		if err := handleRestoreCommand(os.Args[2:], cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Restore failed: %v\n", err)
			flushRunLog()
			os.Exit(1)
		}

	case "cleanup":
		if err := handleCleanupCommand(os.Args[2:], cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
			os.Exit(1)
		}

	case "log":
		if err := handleLogCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Log command failed: %v\n", err)
			os.Exit(1)
		}

	case "settings":
		if err := handleSettingsCommand(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Settings command failed: %v\n", err)
			os.Exit(1)
		}

	case "version", "--version":
		colNote.Printf("pymend %s (%s) built %s\n", version, arch, buildDate)

	case "help", "-h", "--help":
		printHelp()

	default:
		fmt.Println("Unknown command:", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}
