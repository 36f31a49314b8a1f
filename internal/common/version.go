package common

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Injected at build time via -ldflags "-X".
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo is the build identity reported by /api/version and the banner.
type BuildInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// CurrentBuild returns the resolved build identity. When no commit was
// injected the VCS revision recorded by the Go toolchain is used.
func CurrentBuild() BuildInfo {
	info := BuildInfo{Version: Version, Build: Build, Commit: GitCommit}
	if info.Commit == "unknown" {
		if rev := vcsRevision(); rev != "" {
			info.Commit = rev
		}
	}
	return info
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}

// LoadVersionFromFile reads a .version file next to the binary. File values
// only fill fields still at their defaults, so ldflags always win.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	f, err := os.Open(filepath.Join(filepath.Dir(exe), ".version"))
	if err != nil {
		return
	}
	defer f.Close()

	applyVersionFile(parseVersionFile(f))
}

// parseVersionFile reads "key: value" lines, skipping blanks and # comments.
func parseVersionFile(r io.Reader) map[string]string {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(val)
	}
	return values
}

func applyVersionFile(values map[string]string) {
	if v := values["version"]; v != "" && Version == "dev" {
		Version = v
	}
	if v := values["build"]; v != "" && Build == "unknown" {
		Build = v
	}
	if v := values["commit"]; v != "" && GitCommit == "unknown" {
		GitCommit = v
	}
}
