package pymend

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
)

// handleSettingsCommand provides an interactive menu to adjust pymend settings
func handleSettingsCommand(cfg *Config) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println()
		colArrow.Print("-> ")
		colSuccess.Println("Pymend Settings")
		fmt.Println("--------------------------------")

		fmt.Printf("1) Pinned package: [%s]\n", color.Note.Sprint(cfg.Package))
		fmt.Printf("2) Pinned version: [%s]\n", color.Note.Sprint(cfg.Version))
		fmt.Printf("3) Reset removal list: [%s]\n", color.Note.Sprint(strings.Join(cfg.RemoveList, " ")))
		fmt.Printf("4) Extra sweep patterns: [%s]\n", color.Note.Sprint(strings.Join(cfg.SweepExtras, ",")))

		fmt.Printf("5) Toggle Compression: [%s]\n", color.Note.Sprint(compressMode))

		debugStatus := "Disabled"
		if Debug {
			debugStatus = "Enabled"
		}
		fmt.Printf("6) Toggle Debug Mode: [%s]\n", color.Note.Sprint(debugStatus))

		fmt.Println("q) Quit")
		fmt.Println("--------------------------------")
		fmt.Print("Choice: ")

		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)

		if choice == "q" {
			break
		}

		switch choice {
		case "1":
			fmt.Print("New pinned package name: ")
			val, _ := reader.ReadString('\n')
			val = strings.TrimSpace(val)
			if val == "" {
				colWarn.Println("Invalid package name.")
				continue
			}
			if err := setConfigValue(cfg, "PYMEND_PACKAGE", val); err != nil {
				colError.Printf("Error: %v\n", err)
			} else {
				colSuccess.Println("Pinned package updated successfully.")
			}

		case "2":
			fmt.Print("New pinned version: ")
			val, _ := reader.ReadString('\n')
			val = strings.TrimSpace(val)
			if val == "" {
				colWarn.Println("Invalid version.")
				continue
			}
			if err := setConfigValue(cfg, "PYMEND_VERSION", val); err != nil {
				colError.Printf("Error: %v\n", err)
			} else {
				colSuccess.Println("Pinned version updated successfully.")
			}

		case "3":
			fmt.Print("Packages to remove on reset (space-separated): ")
			val, _ := reader.ReadString('\n')
			val = strings.TrimSpace(val)
			if val == "" {
				colWarn.Println("Removal list unchanged.")
				continue
			}
			if err := setConfigValue(cfg, "PYMEND_REMOVE", val); err != nil {
				colError.Printf("Error: %v\n", err)
			} else {
				colSuccess.Println("Removal list updated successfully.")
			}

		case "4":
			fmt.Print("Extra sweep patterns (comma-separated doublestar globs, empty to clear): ")
			val, _ := reader.ReadString('\n')
			val = strings.TrimSpace(val)
			if err := setConfigValue(cfg, "PYMEND_SWEEP_PATTERNS", val); err != nil {
				colError.Printf("Error: %v\n", err)
			} else {
				colSuccess.Println("Sweep patterns updated successfully.")
			}

		case "5":
			newValue := "zstd"
			if compressMode == "zstd" {
				newValue = "gzip"
			}
			if err := setConfigValue(cfg, "PYMEND_COMPRESS", newValue); err != nil {
				colError.Printf("Error: %v\n", err)
			} else {
				colSuccess.Println("Compression mode updated successfully.")
			}

		case "6":
			newValue := "0"
			if !Debug {
				newValue = "1"
			}
			if err := setConfigValue(cfg, "PYMEND_DEBUG", newValue); err != nil {
				colError.Printf("Error: %v\n", err)
			} else {
				colSuccess.Println("Debug mode updated successfully.")
			}

		default:
			colWarn.Println("Invalid choice.")
		}
	}

	return nil
}
