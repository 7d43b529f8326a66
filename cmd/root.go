package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"modpack-server-installer/logger"
)

// rootCmd installs a modpack server; see runInstall.
var rootCmd = &cobra.Command{
	Use:   "serverinstall [<packId> [<versionId>] | <search term>]",
	Short: "Installs a modpacks.ch modpack as a Minecraft server",
	Long: `Resolves a modpack version from the modpacks.ch catalog, downloads every
server file, runs the Forge installer when the pack needs it and writes
start scripts.

Without arguments the pack and version are read from the executable name,
e.g. serverinstall_47_101. A non-numeric argument searches the catalog.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInstall,
}

// flagKeys binds command line flags to configuration keys.
var flagKeys = map[string]string{
	"path":     "INSTALL_PATH",
	"auto":     "AUTO",
	"noscript": "NO_SCRIPT",
	"latest":   "LATEST",
	"threads":  "THREADS",
	"verify":   "VERIFY",
	"force":    "OVERWRITE",
	"strict":   "STRICT",
	"java":     "JAVA_PATH",
	"clean":    "CLEAN",
	"jvm-args": "JVM_ARGS",
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("path", "", "Directory to install the server into (must exist; default current directory)")
	flags.String("config", ".", "Directory containing an optional .env file")
	flags.String("java", "", "Java executable used for the Forge installer and start scripts")
	flags.Bool("auto", false, "Never prompt; pick the latest release and skip confirmations")
	flags.Bool("noscript", false, "Do not write start.sh and start.bat")
	flags.Bool("latest", false, "Install the latest release, ignoring any version id given")
	flags.Int("threads", 0, "Concurrent downloads (default twice the CPU count)")
	flags.Bool("verify", true, "Verify file checksums while downloading")
	flags.BoolP("force", "f", false, "Download files even if they already exist with the right size")
	flags.Bool("strict", false, "Exit non-zero when any file fails to download")
	flags.Bool("clean", false, "Remove mods, config and other pack directories before installing (always done over an existing install)")
	flags.String("jvm-args", "", "Extra JVM arguments written into the start scripts")

	for flag, key := range flagKeys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			logger.Log.Warnw("Unable to bind flag", zap.String("flag", flag), zap.Error(err))
		}
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, errShowHelp) {
		_ = rootCmd.Help()
		return exitOK
	}
	if err != nil {
		logger.Log.Errorw("Install failed", zap.Error(err))
	}
	return exitCodeFor(err)
}
