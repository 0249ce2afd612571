package pymend

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
)

// doctorCheck is one row of the doctor report.
type doctorCheck struct {
	Name   string
	OK     bool
	Detail string
}

// interpreterVersion returns the `--version` banner of the first python
// interpreter found on PATH.
func interpreterVersion(execCtx *Executor) (string, error) {
	for _, py := range []string{"python3", "python"} {
		if _, err := exec.LookPath(py); err != nil {
			continue
		}
		cmd := exec.CommandContext(execCtx.Context, py, "--version")
		var out bytes.Buffer
		// Older interpreters print the banner on stderr.
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := execCtx.Run(cmd); err != nil {
			return "", err
		}
		return strings.TrimSpace(out.String()), nil
	}
	return "", errors.New("no python interpreter on PATH")
}

// runDoctorChecks gathers the environment report rows.
func runDoctorChecks(cfg *Config, execCtx *Executor) []doctorCheck {
	var checks []doctorCheck

	if banner, err := interpreterVersion(execCtx); err != nil {
		checks = append(checks, doctorCheck{"python", false, err.Error()})
	} else {
		checks = append(checks, doctorCheck{"python", true, banner})
	}

	if banner, err := pipVersionBanner(execCtx); err != nil {
		checks = append(checks, doctorCheck{"pip", false, err.Error()})
	} else {
		checks = append(checks, doctorCheck{"pip", true, banner})
	}

	pin := cfg.Package + "==" + cfg.Version
	installed, err := pipInstalledVersion(execCtx, cfg.Package)
	switch {
	case errors.Is(err, errPipNotFound):
		checks = append(checks, doctorCheck{"pin", false, "cannot query: " + err.Error()})
	case errors.Is(err, errPackageNotInstalled):
		checks = append(checks, doctorCheck{"pin", false, cfg.Package + " is not installed (want " + pin + ")"})
	case err != nil:
		checks = append(checks, doctorCheck{"pin", false, err.Error()})
	case installed != cfg.Version:
		checks = append(checks, doctorCheck{"pin", false,
			cfg.Package + " " + installed + " installed, pin is " + cfg.Version})
	default:
		checks = append(checks, doctorCheck{"pin", true, pin})
	}

	return checks
}

func printDoctorReport(checks []doctorCheck) bool {
	healthy := true
	for _, c := range checks {
		mark := "ok"
		printer := colorPrinter(colInfo)
		if !c.OK {
			mark = "FAIL"
			printer = colError
			healthy = false
		}
		cPrintf(printer, "  %-8s %-4s %s\n", c.Name, mark, c.Detail)
	}
	return healthy
}

func handleDoctorCommand(cfg *Config, execCtx *Executor) error {
	colArrow.Print("-> ")
	colSuccess.Println("Checking Python environment")

	checks := runDoctorChecks(cfg, execCtx)
	if printDoctorReport(checks) {
		colArrow.Print("-> ")
		colSuccess.Println("Environment looks healthy.")
		return nil
	}
	colArrow.Print("-> ")
	cPrintln(colWarn, "Environment needs attention. Run 'pymend fix' to repair it.")
	return nil
}
