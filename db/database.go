package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"modpack-server-installer/install"
	"modpack-server-installer/logger"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDatabase opens the SQLite ledger at dbPath and migrates models.
func InitDatabase(dbPath string) (*gorm.DB, error) {
	// Configure GORM logger
	newLogger := gormlogger.New(
		zap.NewStdLog(logger.ZapLogger), // GORM warnings go through the installer log
		gormlogger.Config{
			SlowThreshold:             time.Second,     // Slow SQL threshold
			LogLevel:                  gormlogger.Warn, // Log level (Warn, Error, Info)
			IgnoreRecordNotFoundError: true,            // Ignore ErrRecordNotFound error
			ParameterizedQueries:      true,            // Keep paths out of the log
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := conn.AutoMigrate(&Install{}, &InstalledFile{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return conn, nil
}

// Ledger stores the history of installer runs. It is never read to decide
// what to download.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(conn *gorm.DB) *Ledger {
	return &Ledger{db: conn}
}

// Record stores a finished run and the outcome of every file.
func (l *Ledger) Record(ctx context.Context, r install.Record) error {
	entry := toInstall(r)
	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to save install to database: %w", err)
	}
	return nil
}

// History returns the latest runs for installDir, newest first. limit <= 0
// returns every run.
func (l *Ledger) History(ctx context.Context, installDir string, limit int) ([]Install, error) {
	var installs []Install
	q := l.db.WithContext(ctx).Where("install_dir = ?", installDir).Order("started_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&installs).Error; err != nil {
		return nil, fmt.Errorf("failed to load install history: %w", err)
	}
	return installs, nil
}

// Files returns the file outcomes of one run.
func (l *Ledger) Files(ctx context.Context, installID uint) ([]InstalledFile, error) {
	var files []InstalledFile
	if err := l.db.WithContext(ctx).Where("install_id = ?", installID).Order("id").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to load installed files: %w", err)
	}
	return files, nil
}

func toInstall(r install.Record) Install {
	rep := r.Report
	entry := Install{
		InstallDir:     r.InstallDir,
		Attempted:      rep.Summary.Attempted,
		Succeeded:      rep.Summary.Succeeded,
		Failed:         rep.Summary.Failed,
		Skipped:        rep.Summary.Skipped,
		ModloaderError: errString(rep.ModloaderErr),
		InstallerOK:    rep.Installer.Success,
		InstallerError: errString(rep.InstallerErr),
		ServerJar:      rep.ServerJar,
		Scripts:        strings.Join(rep.Scripts, ","),
		Cleaned:        strings.Join(rep.Cleaned, ","),
		CleanError:     errString(rep.CleanErr),
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
	if r.Pack != nil {
		entry.PackID = r.Pack.ID
		entry.PackName = r.Pack.Name
	}
	if v := r.Version; v != nil {
		entry.VersionID = v.ID
		entry.VersionName = v.Name
		entry.Channel = v.Channel
		entry.GameVersion = v.GameVersion
		entry.ModloaderType = v.ModloaderType
		entry.ModloaderVersion = v.ModloaderVersion
	}

	for _, res := range rep.Summary.Results {
		entry.Files = append(entry.Files, InstalledFile{
			FileID:  res.File.ID,
			Name:    res.File.Name,
			Path:    res.Path,
			Type:    res.File.Type,
			Bytes:   res.Bytes,
			Skipped: res.Skipped,
			Error:   errString(res.Err),
		})
	}
	return entry
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
