package pymend

import (
	"archive/tar"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/schollz/progressbar/v3"
)

const checksumManifest = "checksums"

// archiveExt returns the archive suffix for the configured compression mode.
func archiveExt() string {
	if compressMode == "gzip" {
		return ".tar.gz"
	}
	return ".tar.zst"
}

// newCompressor wraps w with the configured compressor.
func newCompressor(w io.Writer) (io.WriteCloser, error) {
	if compressMode == "gzip" {
		return pgzip.NewWriter(w), nil
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	return zw, nil
}

// newDecompressor wraps r with the decompressor matching the archive name.
func newDecompressor(name string, r io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".tar.gz"):
		zr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return zr, nil
	case strings.HasSuffix(name, ".tar.zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unrecognized archive format: %s", name)
	}
}

// createBackupArchive tars the given files into destPath. Files are stored
// under their base names; the backup target is a flat set of data files, not
// a tree.
func createBackupArchive(files []string, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", destPath, err)
	}
	defer out.Close()

	zw, err := newCompressor(out)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)

	var total int64
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			total += info.Size()
		}
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription("archiving"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)

	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return fmt.Errorf("cannot stat %s: %w", f, err)
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.Base(f)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		src, err := os.Open(f)
		if err != nil {
			return err
		}
		if _, err := io.Copy(io.MultiWriter(tw, bar), src); err != nil {
			src.Close()
			return fmt.Errorf("failed to archive %s: %w", f, err)
		}
		src.Close()
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return zw.Close()
}

// extractBackupArchive unpacks archivePath into destDir, refusing entries
// that would escape it.
func extractBackupArchive(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := newDecompressor(archivePath, f)
	if err != nil {
		return err
	}
	defer zr.Close()

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return err
	}

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("corrupt archive %s: %w", archivePath, err)
		}

		target := filepath.Join(absDest, hdr.Name)
		if !strings.HasPrefix(target, absDest+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode())
			if err != nil {
				return err
			}
			if _, err := io.Copy(dst, tr); err != nil {
				dst.Close()
				return err
			}
			dst.Close()
		default:
			debugf("restore: skipping entry %s (type %c)\n", hdr.Name, hdr.Typeflag)
		}
	}
}

func handleBackupCommand(args []string, cfg *Config) error {
	backupCmd := flag.NewFlagSet("backup", flag.ExitOnError)
	upload := backupCmd.Bool("upload", false, "Upload the archive to the configured bucket.")
	name := backupCmd.String("name", "", "Archive name (default: backup-<timestamp>).")

	if err := backupCmd.Parse(args); err != nil {
		return err // Should not happen with flag.ExitOnError
	}

	var files []string
	for _, f := range cfg.DataFiles {
		if _, err := os.Stat(f); err != nil {
			cPrintf(colWarn, "Data file %s not found, skipping.\n", f)
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return fmt.Errorf("none of the configured data files exist: %v", cfg.DataFiles)
	}

	if err := os.MkdirAll(BackupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	base := *name
	if base == "" {
		base = "backup-" + time.Now().Format("20060102-150405")
	}
	archiveName := base + archiveExt()
	archivePath := filepath.Join(BackupDir, archiveName)

	colArrow.Print("-> ")
	colSuccess.Printf("Backing up %d file%s to %s\n", len(files), plural(len(files), "", "s"), archivePath)

	if err := createBackupArchive(files, archivePath); err != nil {
		return err
	}

	digest, err := hashFile(archivePath)
	if err != nil {
		return err
	}
	manifestPath := filepath.Join(BackupDir, checksumManifest)
	if err := writeChecksumEntry(manifestPath, archiveName, digest); err != nil {
		return fmt.Errorf("failed to record checksum: %w", err)
	}
	debugf("backup %s b3 %s\n", archiveName, digest)

	logRunStep("backup", fmt.Sprintf("archive=%s files=%d", archiveName, len(files)))

	if *upload {
		client, err := NewBucketClient(cfg)
		if err != nil {
			return err
		}
		colArrow.Print("-> ")
		colSuccess.Printf("Uploading %s\n", archiveName)
		data, err := os.ReadFile(archivePath)
		if err != nil {
			return err
		}
		if err := client.UploadFile(client.ctx, "backups/"+archiveName, data); err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		if err := client.UploadFile(client.ctx, "backups/"+archiveName+".b3", []byte(digest+"  "+archiveName+"\n")); err != nil {
			return fmt.Errorf("checksum upload failed: %w", err)
		}
	}

	colArrow.Print("-> ")
	colSuccess.Println("Backup complete.")
	return nil
}

func handleRestoreCommand(args []string, cfg *Config) error {
	restoreCmd := flag.NewFlagSet("restore", flag.ExitOnError)
	remote := restoreCmd.Bool("remote", false, "Fetch the archive from the configured bucket first.")
	destDir := restoreCmd.String("dir", ".", "Directory to restore into.")

	if err := restoreCmd.Parse(args); err != nil {
		return err // Should not happen with flag.ExitOnError
	}
	if restoreCmd.NArg() < 1 {
		return fmt.Errorf("usage: pymend restore [-remote] [-dir D] <archive>")
	}
	archiveName := restoreCmd.Arg(0)
	archivePath := filepath.Join(BackupDir, archiveName)

	if *remote {
		client, err := NewBucketClient(cfg)
		if err != nil {
			return err
		}
		colArrow.Print("-> ")
		colSuccess.Printf("Fetching %s from bucket\n", archiveName)
		data, err := client.DownloadFile(client.ctx, "backups/"+archiveName)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		if err := os.MkdirAll(BackupDir, 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(archivePath, data, 0o644); err != nil {
			return err
		}
		// The recorded digest comes from the bucket, not from the bytes we
		// just wrote, so the verification below still means something.
		sumData, err := client.DownloadFile(client.ctx, "backups/"+archiveName+".b3")
		if err != nil {
			return fmt.Errorf("checksum download failed: %w", err)
		}
		fields := strings.Fields(string(sumData))
		if len(fields) < 1 {
			return fmt.Errorf("malformed remote checksum for %s", archiveName)
		}
		if err := writeChecksumEntry(filepath.Join(BackupDir, checksumManifest), archiveName, fields[0]); err != nil {
			return err
		}
	}

	if _, err := os.Stat(archivePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", archiveName, errBackupNotFound)
		}
		return err
	}

	if err := verifyChecksumEntry(filepath.Join(BackupDir, checksumManifest), archiveName, archivePath); err != nil {
		return err
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Restoring %s into %s\n", archiveName, *destDir)
	if err := extractBackupArchive(archivePath, *destDir); err != nil {
		return err
	}

	logRunStep("restore", fmt.Sprintf("archive=%s dir=%s", archiveName, *destDir))
	colArrow.Print("-> ")
	colSuccess.Println("Restore complete.")
	return nil
}
