package scripts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const (
	// EULAURL is shown when the server directory has not accepted the EULA yet.
	EULAURL = "https://account.mojang.com/documents/minecraft_eula"

	DefaultMinRAM         = 3072
	DefaultRecommendedRAM = 4096
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Settings configures the generated start scripts.
type Settings struct {
	Java           string // java executable; "java" when empty
	MinRAM         int    // MB, -Xms
	RecommendedRAM int    // MB, -Xmx
	ServerJar      string
	ExtraArgs      []string // extra JVM arguments placed before -jar
}

type script struct {
	name     string
	template string
	mode     os.FileMode
	crlf     bool
}

var startScripts = []script{
	{name: "start.sh", template: "start.sh.tmpl", mode: 0755},
	{name: "start.bat", template: "start.bat.tmpl", mode: 0644, crlf: true},
}

type templateData struct {
	EULAURL   string
	Java      string
	JVMArgs   string
	ServerJar string
}

func (s Settings) data() templateData {
	java := s.Java
	if java == "" {
		java = "java"
	}
	minRAM, recRAM := s.MinRAM, s.RecommendedRAM
	if minRAM <= 0 {
		minRAM = DefaultMinRAM
	}
	if recRAM <= 0 {
		recRAM = DefaultRecommendedRAM
	}
	if recRAM < minRAM {
		recRAM = minRAM
	}

	args := []string{
		"-server",
		"-XX:+UseG1GC",
		"-XX:+UnlockExperimentalVMOptions",
		fmt.Sprintf("-Xmx%dM", recRAM),
		fmt.Sprintf("-Xms%dM", minRAM),
	}
	args = append(args, s.ExtraArgs...)

	return templateData{
		EULAURL:   EULAURL,
		Java:      java,
		JVMArgs:   strings.Join(args, " "),
		ServerJar: s.ServerJar,
	}
}

// WriteStartScripts renders start.sh and start.bat into targetDir. Scripts
// that already exist are left untouched; written lists the files created by
// this call.
func WriteStartScripts(targetDir string, s Settings) (written []string, err error) {
	if s.ServerJar == "" {
		return nil, errors.New("server jar is required")
	}
	data := s.data()

	for _, sc := range startScripts {
		content, err := render(sc, data)
		if err != nil {
			return written, err
		}

		path := filepath.Join(targetDir, sc.name)
		created, err := createExclusive(path, content, sc.mode)
		if err != nil {
			return written, err
		}
		if created {
			written = append(written, path)
		}
	}
	return written, nil
}

func render(sc script, data templateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, sc.template, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", sc.name, err)
	}
	if !sc.crlf {
		return buf.Bytes(), nil
	}
	return []byte(strings.ReplaceAll(buf.String(), "\n", "\r\n")), nil
}

// createExclusive writes content to a new file. It reports false without
// error when the file already exists.
func createExclusive(path string, content []byte, mode os.FileMode) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		_ = os.Remove(path)
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return false, fmt.Errorf("failed to close %s: %w", path, err)
	}
	// The umask may have stripped the execute bit.
	if err := os.Chmod(path, mode); err != nil {
		return true, fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	return true, nil
}
