package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAPIBaseURL   = "https://api.modpacks.ch/"
	DefaultForgeRepoURL = "https://dist.creeper.host/versions/net/minecraftforge/forge/"
	DefaultUserAgent    = "modpack-server-installer/dev"
	DefaultJavaPath     = "java"
	DefaultSearchLimit  = 8

	// DatabaseFile is created inside the install path.
	DatabaseFile = "serverinstall.db"
)

// ErrInstallPathMissing is returned when the requested install path does not exist.
var ErrInstallPathMissing = errors.New("install path does not exist")

// Config holds all configuration for the installer.
// Values are loaded by Viper from a .env file, environment variables and
// command line flags bound by the cmd package.
type Config struct {
	InstallPath  string        `mapstructure:"INSTALL_PATH"`
	APIBaseURL   string        `mapstructure:"API_BASE_URL"`
	ForgeRepoURL string        `mapstructure:"FORGE_REPO_URL"`
	UserAgent    string        `mapstructure:"USERAGENT"`
	Threads      int           `mapstructure:"THREADS"`
	JavaPath     string        `mapstructure:"JAVA_PATH"`
	Verify       bool          `mapstructure:"VERIFY"`
	Overwrite    bool          `mapstructure:"OVERWRITE"`
	NoScript     bool          `mapstructure:"NO_SCRIPT"`
	Auto         bool          `mapstructure:"AUTO"`
	Latest       bool          `mapstructure:"LATEST"`
	Strict       bool          `mapstructure:"STRICT"`
	Clean        bool          `mapstructure:"CLEAN"`
	JVMArgs      string        `mapstructure:"JVM_ARGS"` // extra JVM arguments for the start scripts
	HTTPTimeout  time.Duration `mapstructure:"HTTP_TIMEOUT"` // 0 keeps the http.Client default (no timeout)
	SearchLimit  int           `mapstructure:"SEARCH_LIMIT"`
	DatabasePath string        `mapstructure:"-"` // Not from env, derived
}

// keys lists every setting bound to an environment variable of the same name.
var keys = []string{
	"INSTALL_PATH",
	"API_BASE_URL",
	"FORGE_REPO_URL",
	"USERAGENT",
	"THREADS",
	"JAVA_PATH",
	"VERIFY",
	"OVERWRITE",
	"NO_SCRIPT",
	"AUTO",
	"LATEST",
	"STRICT",
	"CLEAN",
	"JVM_ARGS",
	"HTTP_TIMEOUT",
	"SEARCH_LIMIT",
}

// DefaultThreads is the download pool size when THREADS is unset.
func DefaultThreads() int {
	return runtime.GOMAXPROCS(0) * 2
}

// LoadConfig reads configuration from an optional .env file in path and the
// environment, then applies defaults and validates the install path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Debug("Config file (.env) not found, relying on environment variables and flags.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()
	for _, key := range keys {
		if err := viper.BindEnv(key, key); err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", err)
		}
	}
	viper.SetDefault("VERIFY", true)

	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// processConfigDefaults fills every unset value with its default.
func processConfigDefaults(config *Config) {
	if config.InstallPath == "" {
		config.InstallPath = "."
	}
	if config.APIBaseURL == "" {
		config.APIBaseURL = DefaultAPIBaseURL
	}
	if config.ForgeRepoURL == "" {
		config.ForgeRepoURL = DefaultForgeRepoURL
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Threads <= 0 {
		config.Threads = DefaultThreads()
	}
	if config.JavaPath == "" {
		config.JavaPath = DefaultJavaPath
	}
	if config.SearchLimit <= 0 {
		config.SearchLimit = DefaultSearchLimit
	}
}

// validateAndEnsureDirectories resolves the install path to an absolute
// directory and derives the ledger location inside it. The install path is
// never created here; a missing path is ErrInstallPathMissing.
func validateAndEnsureDirectories(config *Config) error {
	if config.InstallPath == "" {
		return fmt.Errorf("INSTALL_PATH is required")
	}

	abs, err := filepath.Abs(config.InstallPath)
	if err != nil {
		return fmt.Errorf("failed to resolve install path '%s': %w", config.InstallPath, err)
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: '%s'", ErrInstallPathMissing, abs)
	} else if err != nil {
		return fmt.Errorf("failed to check install path '%s': %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("install path '%s' is not a directory", abs)
	}

	config.InstallPath = abs
	config.DatabasePath = filepath.Join(abs, DatabaseFile)
	return nil
}
