// Package filex keeps document photos in a local media directory until they
// are uploaded.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const fileScheme = "file://"

// EnsureSubDir creates dirName under the current working directory when it
// is relative, or as-is when absolute, and returns the absolute path.
func EnsureSubDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ImportMedia copies src into dir under a fresh name (keeping the extension)
// and returns the absolute path of the copy.
func ImportMedia(dir, src string) (string, error) {
	in, err := os.Open(LocalPath(src))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	dst := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(src)))
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}

	return dst, nil
}

// LocalPath strips an optional file:// scheme from ref.
func LocalPath(ref string) string {
	return strings.TrimPrefix(ref, fileScheme)
}

// ReadMedia loads the bytes behind a local media reference.
func ReadMedia(ref string) ([]byte, error) {
	b, err := os.ReadFile(LocalPath(ref))
	if err != nil {
		return nil, fmt.Errorf("read media: %w", err)
	}
	return b, nil
}
