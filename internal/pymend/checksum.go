package pymend

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"lukechampine.com/blake3"
)

// hashFile returns the BLAKE3 hex digest (32-byte output) of the file at path.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// hashString returns the BLAKE3 hex digest of s.
func hashString(s string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(s))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// writeChecksumEntry appends "digest  filename" to the backup checksum
// manifest, replacing an existing entry for the same filename.
func writeChecksumEntry(manifestPath, filename, digest string) error {
	existing := make(map[string]string)
	var order []string

	if f, err := os.Open(manifestPath); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) < 2 {
				continue
			}
			name := strings.Join(fields[1:], " ")
			if _, seen := existing[name]; !seen {
				order = append(order, name)
			}
			existing[name] = fields[0]
		}
		f.Close()
	}

	if _, seen := existing[filename]; !seen {
		order = append(order, filename)
	}
	existing[filename] = digest

	var b strings.Builder
	for _, name := range order {
		fmt.Fprintf(&b, "%s  %s\n", existing[name], name)
	}
	return os.WriteFile(manifestPath, []byte(b.String()), 0o644)
}

// verifyChecksumEntry checks the archive against its manifest entry. A missing
// entry is an error: a backup without a recorded digest cannot be trusted.
func verifyChecksumEntry(manifestPath, filename, archivePath string) error {
	f, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("cannot open checksum manifest: %w", err)
	}
	defer f.Close()

	var want string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && strings.Join(fields[1:], " ") == filename {
			want = fields[0]
			break
		}
	}
	if want == "" {
		return fmt.Errorf("no checksum recorded for %s", filename)
	}

	got, err := hashFile(archivePath)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("checksum mismatch for %s: recorded %s, got %s", filename, want, got)
	}
	return nil
}
