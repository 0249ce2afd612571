package pymend

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config struct
type Config struct {
	Values map[string]string

	// Derived fields, filled in by initConfig.
	Package     string   // pinned package name
	Version     string   // pinned version
	RemoveList  []string // packages removed by 'reset'
	DataFiles   []string // files covered by 'backup'
	SweepExtras []string // extra doublestar patterns for 'sweep'
}

// Load /etc/pymend.conf and apply defaults
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	// Attempt to read the file
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	// Merge PYMEND_* env overrides
	mergeEnvOverrides(cfg)

	// Ensure TMPDIR has a default
	if tmp := cfg.Values["TMPDIR"]; tmp == "" {
		cfg.Values["TMPDIR"] = "/tmp"
	}

	return cfg, nil
}

// Merge PYMEND_* env overrides
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PYMEND_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}
}

// splitList splits a comma- or whitespace-separated config value.
func splitList(val string) []string {
	fields := strings.FieldsFunc(val, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func initConfig(cfg *Config) {
	rootDir = cfg.Values["PYMEND_ROOT"]
	if rootDir == "" {
		rootDir = "/"
	}

	tmpDir = cfg.Values["TMPDIR"]
	if tmpDir == "" {
		tmpDir = "/tmp"
	}

	Debug = cfg.Values["PYMEND_DEBUG"] == "1"

	cfg.Package = cfg.Values["PYMEND_PACKAGE"]
	if cfg.Package == "" {
		cfg.Package = "python-telegram-bot"
	}
	cfg.Version = cfg.Values["PYMEND_VERSION"]
	if cfg.Version == "" {
		cfg.Version = "20.7"
	}

	cfg.RemoveList = splitList(cfg.Values["PYMEND_REMOVE"])
	if len(cfg.RemoveList) == 0 {
		cfg.RemoveList = []string{"python-telegram-bot", "telegram"}
	}

	cfg.DataFiles = splitList(cfg.Values["PYMEND_DATA_FILES"])
	if len(cfg.DataFiles) == 0 {
		cfg.DataFiles = []string{"clan_data.json"}
	}

	cfg.SweepExtras = splitList(cfg.Values["PYMEND_SWEEP_PATTERNS"])

	pipOverride = cfg.Values["PYMEND_PIP"]

	compressMode = cfg.Values["PYMEND_COMPRESS"]
	if compressMode != "gzip" {
		compressMode = "zstd"
	}

	StateDir = cfg.Values["PYMEND_STATE_DIR"]
	if StateDir == "" {
		StateDir = filepath.Join(rootDir, "var", "lib", "pymend")
		if os.Geteuid() != 0 && rootDir == "/" {
			// Unprivileged runs keep state under the user cache instead.
			if ucd, err := os.UserCacheDir(); err == nil {
				StateDir = filepath.Join(ucd, "pymend")
			}
		}
	}
	BackupDir = filepath.Join(StateDir, "backups")
	LogDir = filepath.Join(StateDir, "logs")
	LockFile = filepath.Join(StateDir, "pymend.lock")
}

// setConfigValue persists a single KEY=VALUE into the config file, replacing an
// existing line for the key, then re-derives runtime state.
func setConfigValue(cfg *Config, key, value string) error {
	path := ConfigFile
	if root := os.Getenv("PYMEND_ROOT"); root != "" {
		path = filepath.Join(root, "etc", "pymend.conf")
	}

	var lines []string
	replaced := false
	if data, err := os.ReadFile(path); err == nil {
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, key+"=") || strings.HasPrefix(trimmed, key+" ") {
				lines = append(lines, fmt.Sprintf("%s=%s", key, value))
				replaced = true
				continue
			}
			lines = append(lines, line)
		}
	}
	if !replaced {
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	cfg.Values[key] = value
	initConfig(cfg)
	return nil
}
