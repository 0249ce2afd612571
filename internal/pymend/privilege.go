package pymend

import (
	"fmt"
	"os"
	"os/exec"
	"time"
)

// needsRootPrivileges checks if any of the requested operations require root.
// Only operations that touch the system site-packages or /var/lib/pymend do.
func needsRootPrivileges(args []string, cfg *Config) bool {
	if len(args) < 1 {
		return false
	}
	if os.Geteuid() == 0 {
		return false
	}
	// Virtualenv installs never need escalation.
	if os.Getenv("VIRTUAL_ENV") != "" {
		return false
	}
	if cfg != nil && cfg.Values["PYMEND_SUDO"] != "1" {
		return false
	}

	rootCommands := map[string]bool{
		"fix":       true,
		"reset":     true,
		"reinstall": true,
	}
	return rootCommands[args[0]]
}

// authenticateOnce performs a single authentication check at program start
func authenticateOnce() error {
	if os.Geteuid() == 0 {
		return nil // Already root
	}

	cmd := exec.Command("sudo", "-v")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sudo authentication failed: %w", err)
	}

	// Start keep-alive goroutine for sudo
	go func() {
		ticker := time.NewTicker(4 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			exec.Command("sudo", "-nv").Run()
		}
	}()

	colArrow.Print("-> ")
	colSuccess.Println("Authenticated via sudo")
	return nil
}
