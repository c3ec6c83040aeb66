package gateways

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
)

// maxExtractedFileSize caps each extracted entry to guard against decompression bombs
const maxExtractedFileSize = 1 << 30

// SDKDownloader fetches and unpacks Android SDK archives
type SDKDownloader struct {
	httpClient *retryablehttp.Client
	logger     interfaces.Logger
}

// NewSDKDownloader creates a new SDK downloader
func NewSDKDownloader(logger interfaces.Logger) *SDKDownloader {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 30 * time.Second
	client.HTTPClient.Timeout = 30 * time.Minute // The SDK is large
	client.Logger = nil

	return &SDKDownloader{httpClient: client, logger: logger}
}

// FetchAndExtract downloads archive, verifies it when a checksum is known and
// unpacks it into target
func (d *SDKDownloader) FetchAndExtract(ctx context.Context, archive entities.SDKArchive, target string) error {
	if err := os.MkdirAll(target, 0750); err != nil {
		return fmt.Errorf("failed to create SDK directory: %w", err)
	}

	tmp, err := os.CreateTemp(target, ".sdk-download-*")
	if err != nil {
		return fmt.Errorf("failed to create download file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	//nolint:errcheck // Best-effort removal of the downloaded archive
	defer os.Remove(tmpPath)

	d.logger.Info("Downloading Android SDK", interfaces.F("url", archive.URL))
	if err := d.downloadFile(ctx, archive.URL, tmpPath); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if archive.SHA256 != "" {
		if err := verifyChecksum(tmpPath, archive.SHA256); err != nil {
			return err
		}
	}

	d.logger.Info("Extracting Android SDK", interfaces.F("target", target))
	switch archive.Format {
	case entities.ArchiveZip:
		err = extractZip(tmpPath, target)
	case entities.ArchiveTarGz:
		err = d.extractTarGz(tmpPath, target)
	default:
		err = fmt.Errorf("unsupported archive format %q", archive.Format)
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	return nil
}

// downloadFile downloads a file from URL to destination
func (d *SDKDownloader) downloadFile(ctx context.Context, url, dest string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "forgedroid/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	//nolint:gosec // G304: dest is a temp file we just created
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	//nolint:errcheck // Defer close on file being written
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	d.logger.Debug("Download complete", interfaces.F("bytes", written))
	return nil
}

// verifyChecksum compares a file's SHA256 against expectedSum (hex, any case)
func verifyChecksum(filePath, expectedSum string) error {
	//nolint:gosec // G304: filePath is the archive just downloaded
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	actualSum := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actualSum, strings.TrimSpace(expectedSum)) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedSum, actualSum)
	}
	return nil
}

// safeJoin joins name under destDir, rejecting entries that escape it
func safeJoin(destDir, name string) (string, error) {
	//nolint:gosec // G305: Path traversal validated below
	target := filepath.Join(destDir, name)
	cleanDest := filepath.Clean(destDir)
	if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", name)
	}
	return target, nil
}

// writeEntry writes r to target. An entry larger than limit is an error and
// the partial file is removed.
func writeEntry(target string, r io.Reader, mode os.FileMode, limit int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	//nolint:gosec // G304: target validated by safeJoin
	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0600)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(outFile, io.LimitReader(r, limit+1))
	if err != nil {
		_ = outFile.Close()
		_ = os.Remove(target)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if written > limit {
		_ = os.Remove(target)
		return fmt.Errorf("archive entry %s exceeds %d bytes", filepath.Base(target), limit)
	}
	return nil
}

// extractZip extracts a .zip file to destination directory
func extractZip(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	//nolint:errcheck // Defer close on read-only archive
	defer zr.Close()

	for _, f := range zr.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		err = writeEntry(target, rc, f.Mode(), maxExtractedFileSize)
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extractTarGz extracts a .tar.gz file to destination directory
func (d *SDKDownloader) extractTarGz(tarPath, destDir string) error {
	//nolint:gosec // G304: tarPath is the archive just downloaded
	file, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("failed to open tar.gz: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	//nolint:errcheck // Defer close on gzip reader
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	// Symlinks are created after regular files so their targets exist
	type symlinkInfo struct {
		target   string
		linkname string
	}
	var symlinks []symlinkInfo

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read error: %w", err)
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			//nolint:gosec // G115: Integer overflow from tar header mode is acceptable
			if err := writeEntry(target, tr, os.FileMode(header.Mode), maxExtractedFileSize); err != nil {
				return err
			}
		case tar.TypeSymlink:
			symlinks = append(symlinks, symlinkInfo{target: target, linkname: header.Linkname})
		default:
			d.logger.Warn("Ignoring unsupported archive entry",
				interfaces.F("type", string(header.Typeflag)),
				interfaces.F("name", header.Name))
		}
	}

	for _, link := range symlinks {
		if err := os.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return fmt.Errorf("failed to create directory for symlink: %w", err)
		}
		if err := os.Symlink(link.linkname, link.target); err != nil {
			d.logger.Warn("Failed to create symlink",
				interfaces.F("link", link.target),
				interfaces.F("target", link.linkname),
				interfaces.F("error", err))
		}
	}
	return nil
}
