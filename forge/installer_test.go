package forge

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// writeFakeJava creates a shell script standing in for java. It records its
// arguments and, when jar is set, creates that file in the working directory.
func writeFakeJava(t *testing.T, jar string, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake java requires a POSIX shell")
	}
	script := "#!/bin/sh\necho \"$@\" > args.txt\n"
	if jar != "" {
		script += "touch '" + jar + "'\n"
	}
	script += "exit " + strconv.Itoa(exitCode) + "\n"

	path := filepath.Join(t.TempDir(), "java")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write fake java: %v", err)
	}
	return path
}

func seedInstaller(t *testing.T, dir string) string {
	t.Helper()
	artifact := filepath.Join(dir, "forge-1.12.2-14.23.5.2847-installer.jar")
	if err := os.WriteFile(artifact, []byte("jar"), 0644); err != nil {
		t.Fatalf("Failed to seed installer: %v", err)
	}
	if err := os.WriteFile(artifact+".log", []byte("log"), 0644); err != nil {
		t.Fatalf("Failed to seed installer log: %v", err)
	}
	return artifact
}

func TestInstallerRunVerified(t *testing.T) {
	java := writeFakeJava(t, "forge-1.12.2-14.23.5.2847.jar", 0)
	dir := t.TempDir()
	artifact := seedInstaller(t, dir)

	var stdout bytes.Buffer
	inst := &Installer{Java: java, Stdout: &stdout, Stderr: &stdout, Stdin: strings.NewReader("")}
	out, err := inst.Run(context.Background(), artifact, dir, "1.12.2", "14.23.5.2847")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !out.Success || len(out.Verified) != 1 {
		t.Errorf("Unexpected outcome %+v", out)
	}
	for _, gone := range []string{artifact, artifact + ".log"} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", gone)
		}
	}

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	if err != nil {
		t.Fatalf("Installer did not run in target dir: %v", err)
	}
	want := "-jar " + artifact + " --installServer " + dir
	if strings.TrimSpace(string(args)) != want {
		t.Errorf("Args = %q, want %q", strings.TrimSpace(string(args)), want)
	}
}

func TestInstallerRunExitCodeIgnoredWhenJarPresent(t *testing.T) {
	java := writeFakeJava(t, "forge-1.12.2-14.23.5.2847-universal.jar", 1)
	dir := t.TempDir()
	artifact := seedInstaller(t, dir)

	inst := &Installer{Java: java, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	out, err := inst.Run(context.Background(), artifact, dir, "1.12.2", "14.23.5.2847")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !out.Success || out.ExitErr == nil {
		t.Errorf("Expected success with recorded exit error, got %+v", out)
	}
}

func TestInstallerRunNotVerified(t *testing.T) {
	java := writeFakeJava(t, "", 0)
	dir := t.TempDir()
	artifact := seedInstaller(t, dir)

	inst := &Installer{Java: java, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	out, err := inst.Run(context.Background(), artifact, dir, "1.12.2", "14.23.5.2847")
	if !errors.Is(err, ErrInstallerFailed) {
		t.Fatalf("Expected ErrInstallerFailed, got %v", err)
	}
	if out.Success {
		t.Error("Outcome must not be successful")
	}
	for _, kept := range []string{artifact, artifact + ".log"} {
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("Expected %s to be kept: %v", kept, err)
		}
	}
}

func TestInstallerRunRelativePaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake java requires a POSIX shell")
	}
	// Only succeeds when the jar in $2 is readable and $4 is the working directory.
	script := "#!/bin/sh\n[ -f \"$2\" ] || exit 3\n[ \"$4\" = \"$(pwd -P)\" ] || exit 4\ntouch forge-1.12.2-1.jar\n"
	java := filepath.Join(t.TempDir(), "java")
	if err := os.WriteFile(java, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write fake java: %v", err)
	}

	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	server := filepath.Join(base, "server")
	if err := os.Mkdir(server, 0755); err != nil {
		t.Fatalf("Failed to create server dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(server, "forge-1.12.2-1-installer.jar"), []byte("jar"), 0644); err != nil {
		t.Fatalf("Failed to seed installer: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(base); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	inst := &Installer{Java: java, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	out, err := inst.Run(context.Background(), filepath.Join("server", "forge-1.12.2-1-installer.jar"), "server", "1.12.2", "1")
	if err != nil {
		t.Fatalf("Run failed: %v (exit %v)", err, out.ExitErr)
	}
	if !out.Success {
		t.Errorf("Expected verified install, got %+v", out)
	}
	if _, err := os.Stat(filepath.Join(server, "forge-1.12.2-1.jar")); err != nil {
		t.Errorf("Server jar not created in target dir: %v", err)
	}
}

func TestInstallerRunMissingJava(t *testing.T) {
	dir := t.TempDir()
	artifact := seedInstaller(t, dir)

	inst := &Installer{Java: filepath.Join(dir, "no-such-java"), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	out, err := inst.Run(context.Background(), artifact, dir, "1.12.2", "1")
	if !errors.Is(err, ErrInstallerFailed) {
		t.Fatalf("Expected ErrInstallerFailed, got %v", err)
	}
	if out.ExitErr == nil {
		t.Error("Expected exec error to be recorded")
	}
}

func TestLaunchJar(t *testing.T) {
	tests := []struct {
		name    string
		present []string
		want    string
	}{
		{"nothing installed", nil, "forge-1.12.2-1.jar"},
		{"plain only", []string{"forge-1.12.2-1.jar"}, "forge-1.12.2-1.jar"},
		{"universal only", []string{"forge-1.12.2-1-universal.jar"}, "forge-1.12.2-1-universal.jar"},
		{"both prefers universal", []string{"forge-1.12.2-1.jar", "forge-1.12.2-1-universal.jar"}, "forge-1.12.2-1-universal.jar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, p := range tt.present {
				if err := os.WriteFile(filepath.Join(dir, p), nil, 0644); err != nil {
					t.Fatalf("Failed to create %s: %v", p, err)
				}
			}
			if got := LaunchJar(dir, "1.12.2", "1"); got != tt.want {
				t.Errorf("LaunchJar() = %s, want %s", got, tt.want)
			}
		})
	}
}
