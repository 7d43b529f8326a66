package modpacks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// echo -n "hello world" | sha1sum
const helloSHA1 = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"

func newFileServer(t *testing.T, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.jar" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDestination(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name    string
		file    FileDescriptor
		want    string
		wantErr bool
	}{
		{"relative dir", FileDescriptor{Name: "a.jar", Path: "./mods/"}, filepath.Join(root, "mods", "a.jar"), false},
		{"root dir", FileDescriptor{Name: "a.jar", Path: ""}, filepath.Join(root, "a.jar"), false},
		{"nested", FileDescriptor{Name: "c.cfg", Path: "config/sub"}, filepath.Join(root, "config", "sub", "c.cfg"), false},
		{"escapes root", FileDescriptor{Name: "a.jar", Path: "../../etc"}, "", true},
		{"name with separator", FileDescriptor{Name: "../a.jar", Path: "mods"}, "", true},
		{"empty name", FileDescriptor{Name: "", Path: "mods"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.file.Destination(root)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Destination() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Destination() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPrepareCreatesParent(t *testing.T) {
	root := t.TempDir()
	f := FileDescriptor{Name: "a.jar", Path: "mods/deep"}
	dest, err := f.Destination(root)
	if err != nil {
		t.Fatalf("Destination failed: %v", err)
	}
	if err := f.Prepare(dest); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(dest)); err != nil || !info.IsDir() {
		t.Fatalf("Expected directory %s to exist", filepath.Dir(dest))
	}
}

func TestDownloadSkipsMatchingFile(t *testing.T) {
	srv, hits := newFileServer(t, "hello world")
	dest := filepath.Join(t.TempDir(), "a.jar")
	if err := os.WriteFile(dest, []byte("12345678901"), 0644); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	f := FileDescriptor{Name: "a.jar", URL: srv.URL + "/a.jar", Size: 11}
	res, err := f.Download(context.Background(), srv.Client(), dest, false, true)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !res.Skipped {
		t.Error("Expected download to be skipped")
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no request, got %d", hits.Load())
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "12345678901" {
		t.Error("Existing file must be kept")
	}
}

func TestDownloadReplacesMismatchedFile(t *testing.T) {
	tests := []struct {
		name      string
		seed      string
		size      int64
		overwrite bool
	}{
		{"size differs", "short", 11, false},
		{"overwrite forced", "12345678901", 11, true},
		{"unknown size", "12345678901", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := newFileServer(t, "hello world")
			dest := filepath.Join(t.TempDir(), "a.jar")
			if err := os.WriteFile(dest, []byte(tt.seed), 0644); err != nil {
				t.Fatalf("Failed to seed file: %v", err)
			}

			f := FileDescriptor{Name: "a.jar", URL: srv.URL + "/a.jar", Size: tt.size}
			res, err := f.Download(context.Background(), srv.Client(), dest, tt.overwrite, false)
			if err != nil {
				t.Fatalf("Download failed: %v", err)
			}
			if res.Skipped || res.Bytes != 11 {
				t.Errorf("Unexpected result %+v", res)
			}
			if hits.Load() != 1 {
				t.Errorf("Expected 1 request, got %d", hits.Load())
			}
			data, _ := os.ReadFile(dest)
			if string(data) != "hello world" {
				t.Errorf("Unexpected content %q", data)
			}
		})
	}
}

func TestDownloadVerifiesChecksum(t *testing.T) {
	srv, _ := newFileServer(t, "hello world")

	t.Run("match", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "a.jar")
		f := FileDescriptor{Name: "a.jar", URL: srv.URL + "/a.jar", Size: 11, Checksums: map[string]string{"sha1": strings.ToUpper(helloSHA1)}}
		if _, err := f.Download(context.Background(), srv.Client(), dest, false, true); err != nil {
			t.Fatalf("Download failed: %v", err)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "a.jar")
		f := FileDescriptor{Name: "a.jar", URL: srv.URL + "/a.jar", Size: 11, Checksums: map[string]string{"sha1": "deadbeef"}}
		_, err := f.Download(context.Background(), srv.Client(), dest, false, true)

		var terr *TransferError
		if !errors.As(err, &terr) {
			t.Fatalf("Expected TransferError, got %v", err)
		}
		if terr.File != "a.jar" {
			t.Errorf("Unexpected file %s", terr.File)
		}
		assertEmptyDir(t, dir)
	})

	t.Run("mismatch ignored without verify", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "a.jar")
		f := FileDescriptor{Name: "a.jar", URL: srv.URL + "/a.jar", Size: 11, Checksums: map[string]string{"sha1": "deadbeef"}}
		if _, err := f.Download(context.Background(), srv.Client(), dest, false, false); err != nil {
			t.Fatalf("Download failed: %v", err)
		}
	})

	t.Run("unknown hash type", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "a.jar")
		f := FileDescriptor{Name: "a.jar", URL: srv.URL + "/a.jar", Size: 11, Checksums: map[string]string{"murmur2": "1"}}
		if _, err := f.Download(context.Background(), srv.Client(), dest, false, true); err != nil {
			t.Fatalf("Download failed: %v", err)
		}
	})
}

func TestDownloadFailureLeavesNothing(t *testing.T) {
	srv, _ := newFileServer(t, "hello world")
	dir := t.TempDir()
	dest := filepath.Join(dir, "missing.jar")

	f := FileDescriptor{Name: "missing.jar", URL: srv.URL + "/missing.jar", Size: 11}
	_, err := f.Download(context.Background(), srv.Client(), dest, false, true)

	var terr *TransferError
	if !errors.As(err, &terr) {
		t.Fatalf("Expected TransferError, got %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestNewSyntheticFile(t *testing.T) {
	f := NewSyntheticFile("version.json", "", "https://api.example.test/public/modpack/1/2", "modpack")
	if f.Size >= 0 {
		t.Errorf("Expected unknown size, got %d", f.Size)
	}
	if f.ClientOnly {
		t.Error("Synthetic files are server files")
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected no files, found %v", names)
	}
}
