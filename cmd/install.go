package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modpack-server-installer/config"
	"modpack-server-installer/forge"
	"modpack-server-installer/install"
	"modpack-server-installer/logger"
	"modpack-server-installer/modpacks"
	"modpack-server-installer/ui"
)

// maxVersionChoices bounds the version picker to the newest entries.
const maxVersionChoices = 9

func runInstall(cmd *cobra.Command, args []string) error {
	executable, _ := os.Executable()
	req, err := parseArgs(args, executable)
	if errors.Is(err, errShowHelp) && interactive() {
		req, err = promptSearch()
	}
	if err != nil {
		return err
	}
	if req.isSearch() {
		if err := validateTerm(req.Term); err != nil {
			return err
		}
	}

	cfg, client, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	ctx := resolveContext(cmd.Context())
	prompts := !cfg.Auto && interactive()

	var pack *modpacks.Pack
	var version *modpacks.Version
	if req.isSearch() {
		pack, err = searchPack(ctx, client, cfg, req.Term, prompts)
		if err != nil {
			return err
		}
	} else {
		if err := withSpinner(fmt.Sprintf("Resolving modpack %d...", req.PackID), func() error {
			pack, err = client.GetPack(ctx, req.PackID)
			return err
		}); err != nil {
			return err
		}
	}

	version, err = selectVersion(pack, req.VersionID, cfg, prompts && req.isSearch())
	if err != nil {
		return err
	}

	fmt.Printf("%s %s %s (%s)\n", ui.Banner(pack.Name), version.Name, ui.Channel(version.Channel), describeTargets(version))

	if req.FromFilename && !cfg.Auto && !interactive() {
		return errors.New("refusing to install from the executable name without a terminal; pass --auto")
	}
	if needsConfirmation(req, cfg, prompts) {
		ok, err := confirm(fmt.Sprintf("Install %s %s to %s?", pack.Name, version.Name, cfg.InstallPath))
		if err != nil {
			return err
		}
		if !ok {
			return errCancelled
		}
	}

	checkMemory(version)

	report, err := newPipeline(cfg, client).Run(ctx, pack, version)
	if err != nil {
		return err
	}
	printReport(report)

	if cfg.Strict && report.Summary.Failed > 0 {
		return withCode(exitStrict, fmt.Errorf("%d of %d files failed to download", report.Summary.Failed, report.Summary.Attempted))
	}
	return nil
}

func newPipeline(cfg config.Config, client *modpacks.Client) *install.Pipeline {
	p := &install.Pipeline{
		Client:       client,
		Locator:      forge.NewLocator(client.HTTPClient, cfg.ForgeRepoURL),
		Installer:    &forge.Installer{Java: cfg.JavaPath},
		Orchestrator: install.NewOrchestrator(client.HTTPClient, cfg.Threads, cfg.Overwrite, cfg.Verify, logger.Log),
		Log:          logger.Log,
		Scripts:      !cfg.NoScript,
		Clean:        cfg.Clean,
		InstallDir:   cfg.InstallPath,
		Java:         cfg.JavaPath,
		JVMArgs:      strings.Fields(cfg.JVMArgs),
	}
	if ledger := openLedger(cfg); ledger != nil {
		p.Recorder = ledger
	}
	return p
}

// selectVersion picks the version to install. --latest overrides an
// explicit id, an explicit id comes next and a bare pack id means the latest
// release. The picker is only shown when browse is set (search results on a
// terminal).
func selectVersion(pack *modpacks.Pack, versionID int64, cfg config.Config, browse bool) (*modpacks.Version, error) {
	if cfg.Latest {
		return pack.Latest()
	}
	if versionID != 0 {
		return pack.Find(versionID)
	}
	if !browse {
		return pack.Latest()
	}
	if len(pack.Versions) == 0 {
		return nil, fmt.Errorf("%w: pack %d has no versions", modpacks.ErrVersionNotFound, pack.ID)
	}

	versions := pack.Versions
	if len(versions) > maxVersionChoices {
		versions = versions[:maxVersionChoices]
	}
	choices := make([]choice, len(versions))
	for i, v := range versions {
		choices[i] = choice{
			Title:  v.Name,
			Tag:    v.Channel,
			Color:  ui.ChannelColor(v.Channel),
			Detail: describeTargets(&v),
		}
	}
	i, err := pick(fmt.Sprintf("Choose a version of %s", pack.Name), choices)
	if err != nil {
		return nil, err
	}
	return &pack.Versions[i], nil
}

// needsConfirmation reports whether the user must approve the install.
// Search results and ids taken from the executable name were never typed
// as an explicit choice.
func needsConfirmation(req request, cfg config.Config, prompts bool) bool {
	if req.isSearch() {
		return prompts
	}
	return req.FromFilename && !cfg.Auto
}

func describeTargets(v *modpacks.Version) string {
	s := "Minecraft " + v.GameVersion
	if v.ModloaderType != "" {
		s += fmt.Sprintf(", %s %s", v.ModloaderType, v.ModloaderVersion)
	}
	return s
}

func printReport(r install.Report) {
	s := r.Summary
	logger.Log.Infof("Finished. %d of %d files installed (%d already present), %d failed.", s.Succeeded, s.Attempted, s.Skipped, s.Failed)
	for _, err := range s.Failures {
		logger.Log.Warnw("File failed", zap.Error(err))
	}
	switch {
	case errors.Is(r.ModloaderErr, forge.ErrArtifactNotFound):
		logger.Log.Warn("No Forge installer was found; install Forge manually before starting the server.")
	case r.ModloaderErr != nil:
		logger.Log.Warnw("Modloader was not installed", zap.Error(r.ModloaderErr))
	}
	if r.InstallerErr != nil {
		logger.Log.Warnw("Forge install could not be verified", zap.Error(r.InstallerErr))
	}
	if r.CleanErr != nil {
		logger.Log.Warnw("Old pack content was not fully removed", zap.Error(r.CleanErr))
	}
	if r.ScriptsErr != nil {
		logger.Log.Warnw("Start scripts were not written", zap.Error(r.ScriptsErr))
	}
	for _, path := range r.Scripts {
		logger.Log.Infof("Wrote %s", path)
	}
}

// resolveContext returns ctx or a background context for commands run
// without ExecuteContext, as in tests.
func resolveContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
