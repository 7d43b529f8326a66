package modpacks

import (
	"fmt"
	"strings"
)

// Pack is a modpack with every version that resolved successfully, newest first.
type Pack struct {
	ID          int64
	Name        string
	Synopsis    string
	Description string
	Versions    []Version
}

// Version is one installable release of a Pack.
type Version struct {
	ID               int64
	PackID           int64
	Name             string
	Channel          string // "Release", "Beta", "Alpha", ...
	ModloaderType    string // e.g. "forge"; empty when the version has no modloader target
	ModloaderVersion string
	GameVersion      string
	MinimumRAM       int // MB
	RecommendedRAM   int // MB
	Files            []FileDescriptor
}

// ChannelRelease is the channel "latest" selection looks for.
const ChannelRelease = "Release"

// Latest returns the newest version on the Release channel.
func (p *Pack) Latest() (*Version, error) {
	for i := range p.Versions {
		if p.Versions[i].Channel == ChannelRelease {
			return &p.Versions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: pack %d has no %s version", ErrVersionNotFound, p.ID, ChannelRelease)
}

// Find returns the version with the given id.
func (p *Pack) Find(versionID int64) (*Version, error) {
	for i := range p.Versions {
		if p.Versions[i].ID == versionID {
			return &p.Versions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: pack %d has no version %d", ErrVersionNotFound, p.ID, versionID)
}

// ServerFiles returns the files a server install needs.
func (v *Version) ServerFiles() []FileDescriptor {
	files := make([]FileDescriptor, 0, len(v.Files))
	for _, f := range v.Files {
		if !f.ClientOnly {
			files = append(files, f)
		}
	}
	return files
}

// IsForge reports whether the version's modloader is Forge.
func (v *Version) IsForge() bool {
	return strings.EqualFold(v.ModloaderType, "forge")
}

// --- Structs for API Responses ---
// Required fields are pointers so absence can be told apart from zero values.

type apiStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s apiStatus) apiError() error {
	if strings.EqualFold(s.Status, "error") {
		if s.Message == "" {
			return fmt.Errorf("%w: api returned an error", ErrManifestUnavailable)
		}
		return fmt.Errorf("%w: %s", ErrManifestUnavailable, s.Message)
	}
	return nil
}

type statusCarrier interface {
	apiError() error
}

type packResponse struct {
	apiStatus
	ID          int64             `json:"id"`
	Name        *string           `json:"name"`
	Synopsis    string            `json:"synopsis"`
	Description string            `json:"description"`
	Versions    *[]packVersionRef `json:"versions"`
}

type packVersionRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (r *packResponse) validate() error {
	if r.Name == nil {
		return fmt.Errorf("%w: pack is missing 'name'", ErrManifestMalformed)
	}
	if r.Versions == nil {
		return fmt.Errorf("%w: pack is missing 'versions'", ErrManifestMalformed)
	}
	return nil
}

type versionResponse struct {
	apiStatus
	ID      int64        `json:"id"`
	Parent  int64        `json:"parent"`
	Name    *string      `json:"name"`
	Type    *string      `json:"type"`
	Specs   apiSpecs     `json:"specs"`
	Targets *[]apiTarget `json:"targets"`
	Files   *[]apiFile   `json:"files"`
}

type apiSpecs struct {
	Minimum     int `json:"minimum"`
	Recommended int `json:"recommended"`
}

type apiTarget struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"` // "game" or "modloader"
}

type apiFile struct {
	ID         int64  `json:"id"`
	Version    string `json:"version"`
	Path       string `json:"path"`
	URL        string `json:"url"`
	SHA1       string `json:"sha1"`
	Size       int64  `json:"size"`
	ClientOnly bool   `json:"clientonly"`
	ServerOnly bool   `json:"serveronly"`
	Optional   bool   `json:"optional"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Updated    int64  `json:"updated"`
}

func (r *versionResponse) validate() error {
	switch {
	case r.Name == nil:
		return fmt.Errorf("%w: version is missing 'name'", ErrManifestMalformed)
	case r.Type == nil:
		return fmt.Errorf("%w: version is missing 'type'", ErrManifestMalformed)
	case r.Targets == nil:
		return fmt.Errorf("%w: version is missing 'targets'", ErrManifestMalformed)
	case r.Files == nil:
		return fmt.Errorf("%w: version is missing 'files'", ErrManifestMalformed)
	}
	for i, f := range *r.Files {
		if f.Name == "" || f.URL == "" {
			return fmt.Errorf("%w: file #%d (id %d) is missing 'name' or 'url'", ErrManifestMalformed, i, f.ID)
		}
	}
	return nil
}

func (r *versionResponse) toVersion(packID, versionID int64) Version {
	v := Version{
		ID:             versionID,
		PackID:         packID,
		Name:           *r.Name,
		Channel:        *r.Type,
		MinimumRAM:     r.Specs.Minimum,
		RecommendedRAM: r.Specs.Recommended,
	}
	if r.ID != 0 {
		v.ID = r.ID
	}
	for _, t := range *r.Targets {
		switch t.Type {
		case "game":
			v.GameVersion = t.Version
		case "modloader":
			v.ModloaderType = t.Name
			v.ModloaderVersion = t.Version
		}
	}
	v.Files = make([]FileDescriptor, 0, len(*r.Files))
	for _, f := range *r.Files {
		v.Files = append(v.Files, f.toDescriptor())
	}
	return v
}

func (f apiFile) toDescriptor() FileDescriptor {
	d := FileDescriptor{
		ID:         f.ID,
		Name:       f.Name,
		Path:       f.Path,
		URL:        f.URL,
		Size:       f.Size,
		ClientOnly: f.ClientOnly,
		Optional:   f.Optional,
		Type:       f.Type,
		Version:    f.Version,
	}
	if f.Updated != 0 {
		d.Updated = fmt.Sprintf("%d", f.Updated)
	}
	if f.SHA1 != "" {
		d.Checksums = map[string]string{"sha1": f.SHA1}
	}
	return d
}

type searchResponse struct {
	apiStatus
	Packs *[]int64 `json:"packs"`
}
