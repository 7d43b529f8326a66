package db

import (
	"time"

	"gorm.io/gorm"
)

// Install is one installer run against an install directory.
type Install struct {
	gorm.Model
	InstallDir       string `gorm:"index"` // absolute server directory
	PackID           int64  `gorm:"index"`
	PackName         string
	VersionID        int64
	VersionName      string
	Channel          string // Release, Beta, Alpha
	GameVersion      string
	ModloaderType    string
	ModloaderVersion string
	Attempted        int
	Succeeded        int
	Failed           int
	Skipped          int
	ModloaderError   string
	InstallerOK      bool
	InstallerError   string
	ServerJar        string
	Scripts          string // comma separated paths written this run
	Cleaned          string // comma separated directories removed before downloading
	CleanError       string
	StartedAt        time.Time
	FinishedAt       time.Time
	Files            []InstalledFile
}

// InstalledFile is the outcome of a single file of an Install.
type InstalledFile struct {
	gorm.Model
	InstallID uint  `gorm:"index"` // References Install.ID
	FileID    int64 // catalog file id, -1 for generated files
	Name      string
	Path      string // Where the file was written
	Type      string
	Bytes     int64
	Skipped   bool
	Error     string
}
