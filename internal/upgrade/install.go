package upgrade

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/natefinch/atomic"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/checksum"
)

// DownloadName is the transient file written to the Downloads directory.
const DownloadName = "tmgr_new"

// DownloadMode is applied to the downloaded binary (rwxr-x--x).
const DownloadMode os.FileMode = 0o751

// DownloadDir returns the per-user Downloads directory.
func DownloadDir() (string, error) {
	dir := xdg.UserDirs.Download
	if dir == "" {
		return "", apperr.New(layer, KindNoFileStructure, "Unable to determine download directory")
	}
	return dir, nil
}

// download fetches url into the Downloads directory and returns the file
// path and the SHA-256 digest of its content.
func (u *Upgrader) download(ctx context.Context, url string) (string, string, error) {
	dir := u.opts.DownloadDir
	if dir == "" {
		d, err := DownloadDir()
		if err != nil {
			return "", "", err
		}
		dir = d
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", apperr.Wrap(layer, KindBinaryDownloadFail, err)
	}
	req.Header.Set("User-Agent", u.opts.UserAgent)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", "", apperr.Wrap(layer, KindBinaryDownloadFail, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", apperr.Newf(layer, KindBinaryDownloadFail, "GET %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", apperr.Wrapf(layer, KindBinaryDownloadFail, err, "read %s", url)
	}
	if len(data) == 0 {
		return "", "", apperr.New(layer, KindCorruptedBinaryDownload, "downloaded executable is empty")
	}

	path := filepath.Join(dir, DownloadName)
	if err := writeExecutable(path, data); err != nil {
		return "", "", err
	}
	digest := checksum.Sum(data)
	u.logger.Info("upgrade: downloaded",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
		slog.String("sha256", digest))
	return path, digest, nil
}

// writeExecutable writes data to path and marks it executable. The file is
// closed before returning.
func writeExecutable(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.Wrap(layer, KindCreateFileFail, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return apperr.Wrap(layer, KindCreateFileFail, err)
	}
	if err := f.Chmod(DownloadMode); err != nil {
		f.Close()
		return apperr.Wrap(layer, KindCreateFileFail, err)
	}
	if err := f.Close(); err != nil {
		return apperr.Wrap(layer, KindCreateFileFail, err)
	}
	return nil
}

// DeleteExistingBinary removes the running executable from disk. Platforms
// that lock open executables fail here.
func DeleteExistingBinary(path string) error {
	if err := os.Remove(path); err != nil {
		return apperr.Wrap(layer, KindUnableToDeleteBinary, err)
	}
	return nil
}

// verifyInstalled checks that the file at path has the expected digest.
func verifyInstalled(path, digest string) error {
	got, err := checksum.File(path)
	if err != nil {
		return apperr.Wrap(layer, KindUnableToMoveBinary, err)
	}
	if got != digest {
		return apperr.Newf(layer, KindCorruptedBinaryDownload, "installed binary digest %s does not match download %s", got, digest)
	}
	return nil
}

// MoveNewBinary renames the downloaded binary onto the install path.
func MoveNewBinary(downloaded, installPath string) error {
	if err := atomic.ReplaceFile(downloaded, installPath); err != nil {
		return apperr.Wrap(layer, KindUnableToMoveBinary, err)
	}
	return nil
}
