package forge

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// Installer runs a downloaded Forge installer against a server directory.
type Installer struct {
	Java   string // java executable; "java" when empty
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// Outcome describes an installer run.
type Outcome struct {
	Success  bool
	Verified []string // server jars found after the run
	ExitErr  error    // error from the java process, if any
}

// ServerJars returns the jar names a successful install of game and loader
// leaves in the server directory, plain first.
func ServerJars(game, loader string) []string {
	return []string{
		fmt.Sprintf("forge-%s-%s.jar", game, loader),
		fmt.Sprintf("forge-%s-%s-universal.jar", game, loader),
	}
}

// Run executes `java -jar artifactPath --installServer targetDir` in targetDir
// and checks that a server jar appeared. The exit code alone does not decide
// success. On success the installer and its log are removed; otherwise they
// are kept and ErrInstallerFailed is returned.
func (i *Installer) Run(ctx context.Context, artifactPath, targetDir, game, loader string) (Outcome, error) {
	java := i.Java
	if java == "" {
		java = "java"
	}

	// The child runs inside targetDir, so relative paths would resolve twice.
	artifactPath, err := filepath.Abs(artifactPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to resolve installer path: %w", err)
	}
	targetDir, err = filepath.Abs(targetDir)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to resolve target directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, java, "-jar", artifactPath, "--installServer", targetDir)
	cmd.Dir = targetDir
	cmd.Stdout = orDefault(i.Stdout, os.Stdout)
	cmd.Stderr = orDefault(i.Stderr, os.Stderr)
	if i.Stdin != nil {
		cmd.Stdin = i.Stdin
	} else {
		cmd.Stdin = os.Stdin
	}

	var out Outcome
	out.ExitErr = cmd.Run()

	for _, jar := range ServerJars(game, loader) {
		if fileExists(filepath.Join(targetDir, jar)) {
			out.Verified = append(out.Verified, jar)
		}
	}

	if len(out.Verified) == 0 {
		if out.ExitErr != nil {
			return out, fmt.Errorf("%w: %v", ErrInstallerFailed, out.ExitErr)
		}
		return out, ErrInstallerFailed
	}

	out.Success = true
	for _, leftover := range []string{artifactPath, artifactPath + ".log"} {
		if err := os.Remove(leftover); err != nil && !os.IsNotExist(err) {
			return out, fmt.Errorf("failed to remove installer leftover '%s': %w", leftover, err)
		}
	}
	return out, nil
}

func orDefault(w io.Writer, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}

// LaunchJar picks the jar the start scripts should launch: the universal jar
// if present, then the plain jar, falling back to the plain name when the
// install could not be verified.
func LaunchJar(targetDir, game, loader string) string {
	jars := ServerJars(game, loader)
	plain, universal := jars[0], jars[1]
	if fileExists(filepath.Join(targetDir, universal)) {
		return universal
	}
	return plain
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
