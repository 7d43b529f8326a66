package install

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"modpack-server-installer/forge"
	"modpack-server-installer/modpacks"
	"modpack-server-installer/scripts"

	"go.uber.org/zap"
)

// ErrModloaderUnsupported means the version needs a modloader this installer
// cannot set up. Its files are still installed.
var ErrModloaderUnsupported = errors.New("modloader not supported")

const versionFile = "version.json"

// upgradeDirs hold pack content that must not survive an upgrade. They are
// removed before downloading over an existing install.
var upgradeDirs = []string{"mods", "coremods", "instmods", "config", "resources", "scripts"}

// VersionLinker gives the API location of a version manifest.
type VersionLinker interface {
	VersionURL(packID, versionID int64) string
}

// ArtifactLocator finds the modloader installer for a game version.
type ArtifactLocator interface {
	FindInstallerURL(ctx context.Context, game, loader string) (string, error)
}

// ModloaderInstaller runs a downloaded modloader installer.
type ModloaderInstaller interface {
	Run(ctx context.Context, artifactPath, targetDir, game, loader string) (forge.Outcome, error)
}

// Recorder stores the outcome of a run.
type Recorder interface {
	Record(ctx context.Context, r Record) error
}

// Record is what a Recorder receives once a run has finished.
type Record struct {
	Pack       *modpacks.Pack
	Version    *modpacks.Version
	InstallDir string
	Report     Report
	StartedAt  time.Time
	FinishedAt time.Time
}

// Report describes a finished run. Only failures before the first download
// are returned as errors from Run; everything else ends up here.
type Report struct {
	Summary      Summary
	ModloaderErr error // ErrModloaderUnsupported or forge.ErrArtifactNotFound
	Installer    forge.Outcome
	InstallerErr error
	ServerJar    string
	Scripts      []string
	ScriptsErr   error
	Cleaned      []string // directories removed before downloading
	CleanErr     error
}

// Pipeline installs one resolved version into InstallDir.
type Pipeline struct {
	Client       VersionLinker
	Locator      ArtifactLocator
	Installer    ModloaderInstaller
	Orchestrator *Orchestrator
	Recorder     Recorder // optional
	Log          *zap.SugaredLogger
	Scripts      bool // write start scripts
	// Clean removes upgradeDirs even when InstallDir holds no previous
	// install. An existing version.json always triggers the cleanup.
	Clean      bool
	InstallDir string
	Java       string
	JVMArgs    []string // extra JVM arguments for the start scripts
}

// Run downloads the version's files, runs the modloader installer when one
// is needed and writes start scripts.
func (p *Pipeline) Run(ctx context.Context, pack *modpacks.Pack, version *modpacks.Version) (Report, error) {
	var report Report
	if pack == nil || version == nil {
		return report, errors.New("pack and version are required")
	}
	if p.InstallDir == "" {
		return report, errors.New("install directory is required")
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.With(zap.Int64("pack_id", pack.ID), zap.Int64("version_id", version.ID))
	started := time.Now()

	files := make([]modpacks.FileDescriptor, 0, len(version.Files)+2)
	files = append(files, version.Files...)

	var installer *modpacks.FileDescriptor
	switch {
	case version.ModloaderType == "":
	case version.IsForge():
		artifactURL, err := p.Locator.FindInstallerURL(ctx, version.GameVersion, version.ModloaderVersion)
		if err != nil {
			report.ModloaderErr = err
			log.Warnw("No Forge installer found, continuing without modloader", zap.Error(err))
			break
		}
		f := modpacks.NewSyntheticFile(artifactName(artifactURL), "", artifactURL, "modloader")
		installer = &f
		files = append(files, f)
	default:
		report.ModloaderErr = fmt.Errorf("%w: %s", ErrModloaderUnsupported, version.ModloaderType)
		log.Warnw("Modloader is not supported, continuing without it", zap.String("modloader", version.ModloaderType))
	}

	if p.Client != nil {
		files = append(files, modpacks.NewSyntheticFile(versionFile, "", p.Client.VersionURL(pack.ID, version.ID), "modpack"))
	}

	if p.Clean || fileExists(filepath.Join(p.InstallDir, versionFile)) {
		report.Cleaned, report.CleanErr = cleanInstall(p.InstallDir)
		if report.CleanErr != nil {
			log.Errorw("Failed to remove old pack content", zap.Error(report.CleanErr))
		} else if len(report.Cleaned) > 0 {
			log.Infow("Removed old pack content", zap.Strings("dirs", report.Cleaned))
		}
	}

	log.Infof("Installing %s %s (%s) to %s", pack.Name, version.Name, version.Channel, p.InstallDir)
	report.Summary = p.Orchestrator.InstallFiles(ctx, files, p.InstallDir)
	log.Infof("Downloaded %d of %d files, %d failed", report.Summary.Succeeded, report.Summary.Attempted, report.Summary.Failed)

	if installer != nil {
		p.runInstaller(ctx, log, &report, *installer, version)
	}

	report.ServerJar = serverJar(p.InstallDir, version)
	if p.Scripts {
		written, err := scripts.WriteStartScripts(p.InstallDir, scripts.Settings{
			Java:           p.Java,
			MinRAM:         version.MinimumRAM,
			RecommendedRAM: version.RecommendedRAM,
			ServerJar:      report.ServerJar,
			ExtraArgs:      p.JVMArgs,
		})
		report.Scripts = written
		if err != nil {
			report.ScriptsErr = err
			log.Errorw("Failed to write start scripts", zap.Error(err))
		}
	}

	if p.Recorder != nil {
		rec := Record{
			Pack:       pack,
			Version:    version,
			InstallDir: p.InstallDir,
			Report:     report,
			StartedAt:  started,
			FinishedAt: time.Now(),
		}
		if err := p.Recorder.Record(ctx, rec); err != nil {
			log.Warnw("Failed to record install", zap.Error(err))
		}
	}
	return report, nil
}

func (p *Pipeline) runInstaller(ctx context.Context, log *zap.SugaredLogger, report *Report, artifact modpacks.FileDescriptor, version *modpacks.Version) {
	var artifactPath string
	for _, r := range report.Summary.Results {
		if r.File.URL == artifact.URL && r.File.Type == artifact.Type {
			if r.Err != nil {
				report.InstallerErr = fmt.Errorf("%w: installer download failed: %v", forge.ErrInstallerFailed, r.Err)
				log.Errorw("Forge installer was not downloaded, skipping install", zap.Error(r.Err))
				return
			}
			artifactPath = r.Path
		}
	}
	if artifactPath == "" {
		report.InstallerErr = fmt.Errorf("%w: installer was not downloaded", forge.ErrInstallerFailed)
		return
	}
	if !strings.HasSuffix(strings.ToLower(artifactPath), ".jar") {
		report.InstallerErr = fmt.Errorf("%w: %s is not an executable installer", forge.ErrInstallerFailed, path.Base(artifactPath))
		log.Warnw("Forge artifact is not a jar, not running it", zap.String("artifact", artifactPath))
		return
	}

	log.Infof("Running Forge installer %s", path.Base(artifactPath))
	out, err := p.Installer.Run(ctx, artifactPath, p.InstallDir, version.GameVersion, version.ModloaderVersion)
	report.Installer = out
	if err != nil {
		report.InstallerErr = err
		log.Errorw("Forge install could not be verified; installer files are kept", zap.Error(err))
		return
	}
	log.Infow("Forge installed", zap.Strings("jars", out.Verified))
}

// cleanInstall removes the upgradeDirs that exist in dir and returns their
// names. It stops at the first directory that cannot be removed.
func cleanInstall(dir string) ([]string, error) {
	var removed []string
	for _, name := range upgradeDirs {
		target := filepath.Join(dir, name)
		if _, err := os.Lstat(target); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			return removed, fmt.Errorf("failed to remove '%s': %w", target, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// artifactName is the last path element of an artifact URL.
func artifactName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(rawURL)
}

// serverJar names the jar the start scripts launch.
func serverJar(dir string, v *modpacks.Version) string {
	switch {
	case v.IsForge():
		return forge.LaunchJar(dir, v.GameVersion, v.ModloaderVersion)
	case strings.EqualFold(v.ModloaderType, "fabric"):
		return fmt.Sprintf("fabric-%s-%s-server-launch.jar", v.GameVersion, v.ModloaderVersion)
	default:
		return fmt.Sprintf("minecraft_server.%s.jar", v.GameVersion)
	}
}
