package scripts

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestWriteStartScripts(t *testing.T) {
	dir := t.TempDir()
	s := Settings{Java: "java", MinRAM: 4096, RecommendedRAM: 6144, ServerJar: "forge-1.12.2-14.23.5.2847.jar"}

	written, err := WriteStartScripts(dir, s)
	if err != nil {
		t.Fatalf("WriteStartScripts failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("Expected 2 scripts written, got %v", written)
	}

	sh, err := os.ReadFile(filepath.Join(dir, "start.sh"))
	if err != nil {
		t.Fatalf("Failed to read start.sh: %v", err)
	}
	want := "-server -XX:+UseG1GC -XX:+UnlockExperimentalVMOptions -Xmx6144M -Xms4096M -jar forge-1.12.2-14.23.5.2847.jar nogui"
	if !strings.Contains(string(sh), want) {
		t.Errorf("start.sh is missing launch line %q:\n%s", want, sh)
	}
	if !strings.Contains(string(sh), EULAURL) || !strings.Contains(string(sh), "eula=true") {
		t.Error("start.sh is missing the EULA check")
	}
	if bytes.Contains(sh, []byte("\r\n")) {
		t.Error("start.sh must use LF line endings")
	}

	bat, err := os.ReadFile(filepath.Join(dir, "start.bat"))
	if err != nil {
		t.Fatalf("Failed to read start.bat: %v", err)
	}
	if !strings.Contains(string(bat), want) {
		t.Errorf("start.bat is missing launch line %q", want)
	}
	if strings.Count(string(bat), "\n") != strings.Count(string(bat), "\r\n") {
		t.Error("start.bat must use CRLF line endings")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, "start.sh"))
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm()&0100 == 0 {
			t.Errorf("start.sh must be executable, mode %v", info.Mode())
		}
	}
}

func TestWriteStartScriptsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s := Settings{MinRAM: 2048, RecommendedRAM: 4096, ServerJar: "server.jar"}

	if _, err := WriteStartScripts(dir, s); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	first := readAll(t, dir)

	written, err := WriteStartScripts(dir, s)
	if err != nil {
		t.Fatalf("Second write failed: %v", err)
	}
	if len(written) != 0 {
		t.Errorf("Second call must write nothing, wrote %v", written)
	}
	second := readAll(t, dir)
	for name, content := range first {
		if !bytes.Equal(content, second[name]) {
			t.Errorf("%s changed between calls", name)
		}
	}
}

func TestWriteStartScriptsKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	custom := []byte("#!/bin/sh\necho custom\n")
	if err := os.WriteFile(filepath.Join(dir, "start.sh"), custom, 0755); err != nil {
		t.Fatalf("Failed to seed start.sh: %v", err)
	}

	written, err := WriteStartScripts(dir, Settings{ServerJar: "server.jar"})
	if err != nil {
		t.Fatalf("WriteStartScripts failed: %v", err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != "start.bat" {
		t.Errorf("Expected only start.bat to be written, got %v", written)
	}
	got, _ := os.ReadFile(filepath.Join(dir, "start.sh"))
	if !bytes.Equal(got, custom) {
		t.Error("Existing start.sh was overwritten")
	}
}

func TestSettingsDefaults(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     string
	}{
		{"missing ram", Settings{ServerJar: "s.jar"}, "-Xmx4096M -Xms3072M"},
		{"recommended below minimum", Settings{MinRAM: 8192, RecommendedRAM: 4096, ServerJar: "s.jar"}, "-Xmx8192M -Xms8192M"},
		{"extra args", Settings{MinRAM: 1024, RecommendedRAM: 2048, ServerJar: "s.jar", ExtraArgs: []string{"-Dfml.queryResult=confirm"}}, "-Xmx2048M -Xms1024M -Dfml.queryResult=confirm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.settings.data()
			if d.Java != "java" {
				t.Errorf("Expected default java, got %s", d.Java)
			}
			if !strings.HasSuffix(d.JVMArgs, tt.want) {
				t.Errorf("JVMArgs = %q, want suffix %q", d.JVMArgs, tt.want)
			}
		})
	}
}

func TestWriteStartScriptsRequiresJar(t *testing.T) {
	if _, err := WriteStartScripts(t.TempDir(), Settings{}); err == nil {
		t.Error("Expected error without a server jar")
	}
}

func readAll(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	out := map[string][]byte{}
	for _, name := range []string{"start.sh", "start.bat"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		out[name] = b
	}
	return out
}
