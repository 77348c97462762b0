package upgrade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/starford/tmgr/internal/apperr"
)

// DefaultAPIURL is the GitHub REST API root.
const DefaultAPIURL = "https://api.github.com"

// Release is the subset of the GitHub "latest release" response tmgr reads.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	BrowserDownloadURL string `json:"browser_download_url"`
}

// LatestReleaseURL builds the release feed URL for owner/repo.
func LatestReleaseURL(apiURL, owner, repo string) string {
	return fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimRight(apiURL, "/"), owner, repo)
}

// Plan is the outcome of discovery and comparison.
type Plan struct {
	Current     *semver.Version
	Latest      *semver.Version
	DownloadURL string
}

// NeedsUpdate reports whether the latest release is newer than the
// running binary.
func (p Plan) NeedsUpdate() bool {
	return p.Latest.GreaterThan(p.Current)
}

func (u *Upgrader) discover(ctx context.Context) (Release, error) {
	url := LatestReleaseURL(u.opts.APIURL, u.opts.Owner, u.opts.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Release{}, apperr.Wrap(layer, KindRepoCheckFail, err)
	}
	req.Header.Set("User-Agent", u.opts.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.client.Do(req)
	if err != nil {
		return Release{}, apperr.Wrap(layer, KindRepoCheckFail, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Release{}, apperr.Newf(layer, KindRepoCheckFail, "GET %s: %s", url, resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Release{}, apperr.Wrap(layer, KindResponseConversionFail, err)
	}
	return rel, nil
}

func (u *Upgrader) compare(rel Release) (Plan, error) {
	latest, err := semver.NewVersion(strings.TrimPrefix(rel.TagName, "v"))
	if err != nil {
		return Plan{}, apperr.Wrapf(layer, KindNoLatestVersion, err, "parse tag %q", rel.TagName)
	}
	current, err := semver.NewVersion(u.opts.CurrentVersion)
	if err != nil {
		return Plan{}, apperr.Wrapf(layer, KindNoCurrentVersion, err, "parse %q", u.opts.CurrentVersion)
	}
	p := Plan{Current: current, Latest: latest}
	if len(rel.Assets) > 0 {
		p.DownloadURL = rel.Assets[0].BrowserDownloadURL
	}
	return p, nil
}
