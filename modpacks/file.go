package modpacks

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FileDescriptor describes one downloadable artifact of a Version.
type FileDescriptor struct {
	ID         int64
	Name       string
	Path       string // directory relative to the install root
	URL        string
	Checksums  map[string]string // hash type -> hex digest
	Size       int64             // bytes; negative when unknown
	ClientOnly bool
	Optional   bool
	Type       string
	Updated    string
	Version    string
}

// Result describes a finished transfer.
type Result struct {
	Path    string
	Bytes   int64
	Skipped bool // an existing file of the expected size was kept
}

// NewSyntheticFile builds a descriptor that is not part of any manifest, such
// as a modloader installer or the version.json self-record. Its size is unknown.
func NewSyntheticFile(name, dir, rawURL, fileType string) FileDescriptor {
	return FileDescriptor{
		ID:   -1,
		Name: name,
		Path: dir,
		URL:  rawURL,
		Size: -1,
		Type: fileType,
	}
}

// Destination returns where the file belongs under root. Paths that would
// escape root are rejected.
func (f FileDescriptor) Destination(root string) (string, error) {
	if f.Name == "" || strings.ContainsAny(f.Name, `/\`) {
		return "", fmt.Errorf("invalid file name '%s'", f.Name)
	}
	root = filepath.Clean(root)
	dest := filepath.Join(root, filepath.FromSlash(f.Path), f.Name)
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file '%s' with path '%s' escapes install root", f.Name, f.Path)
	}
	return dest, nil
}

// Prepare ensures the destination's parent directory exists.
func (f FileDescriptor) Prepare(dest string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create target directory '%s': %w", dir, err)
	}
	return nil
}

// Download fetches the file to dest. Without overwrite, an existing file
// whose size matches Size is kept and nothing is requested. With verify, every
// supported checksum of the descriptor must match before the file is moved
// into place. The final path never holds a partial download.
func (f FileDescriptor) Download(ctx context.Context, hc Doer, dest string, overwrite, verify bool) (Result, error) {
	if !overwrite && f.Size >= 0 {
		if info, err := os.Stat(dest); err == nil && info.Mode().IsRegular() && info.Size() == f.Size {
			return Result{Path: dest, Bytes: info.Size(), Skipped: true}, nil
		}
	}

	n, err := f.fetch(ctx, hc, dest, verify)
	if err != nil {
		return Result{}, &TransferError{File: f.Name, Cause: err}
	}
	return Result{Path: dest, Bytes: n}, nil
}

func (f FileDescriptor) fetch(ctx context.Context, hc Doer, dest string, verify bool) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to start download from %s: %w", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download from %s failed: status %d", f.URL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	var hashers map[string]hash.Hash
	var w io.Writer = tmp
	if verify {
		hashers = f.hashers()
		if len(hashers) > 0 {
			writers := []io.Writer{tmp}
			for _, h := range hashers {
				writers = append(writers, h)
			}
			w = io.MultiWriter(writers...)
		}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to write downloaded content: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("failed to flush downloaded content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temporary file: %w", err)
	}

	for hashType, h := range hashers {
		got := hex.EncodeToString(h.Sum(nil))
		if want := f.Checksums[hashType]; !strings.EqualFold(got, want) {
			return 0, fmt.Errorf("%s mismatch: expected %s, got %s", hashType, want, got)
		}
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return 0, fmt.Errorf("failed to move download into place: %w", err)
	}
	keep = true
	return n, nil
}

// hashers returns a hash for every checksum type that can be verified.
func (f FileDescriptor) hashers() map[string]hash.Hash {
	hashers := make(map[string]hash.Hash, len(f.Checksums))
	for hashType, digest := range f.Checksums {
		if digest == "" {
			continue
		}
		if h := newHash(hashType); h != nil {
			hashers[hashType] = h
		}
	}
	return hashers
}

func newHash(hashType string) hash.Hash {
	switch strings.ToLower(hashType) {
	case "sha1":
		return sha1.New()
	case "sha256":
		return sha256.New()
	case "sha512":
		return sha512.New()
	case "md5":
		return md5.New()
	}
	return nil
}
