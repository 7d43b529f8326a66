package forge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"modpack-server-installer/config"
)

var (
	// ErrArtifactNotFound means no installer candidate exists in the repository.
	ErrArtifactNotFound = errors.New("forge installer artifact not found")
	// ErrInstallerFailed means the installer ran but the server jar did not appear.
	ErrInstallerFailed = errors.New("forge installer did not produce a server jar")
)

// Doer is the part of *http.Client used for probing.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Locator finds Forge installer artifacts in a maven-style repository.
type Locator struct {
	hc   Doer
	repo string
}

// NewLocator returns a Locator for repo. An empty repo uses the default
// mirror.
func NewLocator(hc Doer, repo string) *Locator {
	if repo == "" {
		repo = config.DefaultForgeRepoURL
	}
	if !strings.HasSuffix(repo, "/") {
		repo += "/"
	}
	return &Locator{hc: hc, repo: repo}
}

// Candidates lists the installer locations for a game and loader version in
// the order they are tried.
func Candidates(repo, game, loader string) []string {
	if !strings.HasSuffix(repo, "/") {
		repo += "/"
	}
	gl := game + "-" + loader
	return []string{
		fmt.Sprintf("%s%s/forge-%s-installer.jar", repo, gl, gl),
		fmt.Sprintf("%s%s-%s/forge-%s-%s-installer.jar", repo, gl, game, gl, game),
		fmt.Sprintf("%s%s/forge-%s-installer.zip", repo, gl, gl),
	}
}

// FindInstallerURL probes each candidate in turn and returns the first one
// that exists. Later candidates are not probed once one is found.
func (l *Locator) FindInstallerURL(ctx context.Context, game, loader string) (string, error) {
	for _, candidate := range Candidates(l.repo, game, loader) {
		ok, err := l.exists(ctx, candidate)
		if err != nil && ctx.Err() != nil {
			return "", ctx.Err()
		}
		if ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %s-%s in %s", ErrArtifactNotFound, game, loader, l.repo)
}

// exists reports whether a HEAD request answers 200 with a known length.
func (l *Locator) exists(ctx context.Context, rawURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := l.hc.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK && resp.ContentLength >= 0, nil
}
