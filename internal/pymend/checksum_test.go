package pymend

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashStringStable(t *testing.T) {
	a := hashString("clan_data.json")
	b := hashString("clan_data.json")
	if a != b {
		t.Errorf("hash not deterministic: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("32-byte digest should hex-encode to 64 chars, got %d", len(a))
	}
	if a == hashString("clan_data.json ") {
		t.Error("different inputs collided")
	}
}

func TestHashFileMatchesHashString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := hashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != hashString("payload") {
		t.Errorf("file and string digests differ: %s vs %s", got, hashString("payload"))
	}
}

func TestChecksumManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "checksums")
	archive := filepath.Join(dir, "backup-1.tar.zst")
	if err := os.WriteFile(archive, []byte("archive bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	digest, err := hashFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeChecksumEntry(manifest, filepath.Base(archive), digest); err != nil {
		t.Fatal(err)
	}
	if err := verifyChecksumEntry(manifest, filepath.Base(archive), archive); err != nil {
		t.Errorf("verification failed on untouched archive: %v", err)
	}

	// Corrupt the archive: verification must fail.
	if err := os.WriteFile(archive, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := verifyChecksumEntry(manifest, filepath.Base(archive), archive); err == nil {
		t.Error("tampered archive passed verification")
	}
}

func TestChecksumEntryReplaced(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "checksums")

	if err := writeChecksumEntry(manifest, "a.tar.zst", hashString("v1")); err != nil {
		t.Fatal(err)
	}
	if err := writeChecksumEntry(manifest, "b.tar.zst", hashString("other")); err != nil {
		t.Fatal(err)
	}
	if err := writeChecksumEntry(manifest, "a.tar.zst", hashString("v2")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if n := countOccurrences(string(data), "a.tar.zst"); n != 1 {
		t.Errorf("entry duplicated %d times:\n%s", n, data)
	}
}

func TestVerifyChecksumEntryMissing(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "checksums")
	if err := os.WriteFile(manifest, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := verifyChecksumEntry(manifest, "ghost.tar.zst", manifest); err == nil {
		t.Error("missing manifest entry must fail verification")
	}
}
