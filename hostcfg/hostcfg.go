// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Martin Zimandl <martin.zimandl@gmail.com>
// Copyright 2025 Department of Linguistics,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hostcfg locates and reads the host's tosu.env configuration
// to determine where tosu serves static overlay assets from. The
// configuration is read once per process; changes require a restart.
package hostcfg

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

const (
	// StaticFolderKey is the single tosu.env key the sidecar cares about.
	StaticFolderKey = "STATIC_FOLDER_PATH"

	// EnvPathVar overrides the tosu.env location via process environment
	// (the -tosu-env flag takes precedence over it).
	EnvPathVar = "TOSU_ENV_PATH"

	// DfltFallbackDir is the local development-mode static root used
	// when no tosu.env can be located.
	DfltFallbackDir = "overlay"
)

var dfltSearchPaths = []string{"./tosu.env", "../tosu.env"}

// Resolution is the outcome of install-path resolution. UsingFallback
// marks the degraded development mode (no host configuration found);
// it affects logging and diagnostics only.
type Resolution struct {
	InstallPath   string
	EnvFile       string
	UsingFallback bool
}

// FindEnvFile returns the tosu.env path to use: the explicit path
// (command-line flag) wins, then the TOSU_ENV_PATH environment
// variable, then conventional locations next to the working directory.
// Empty return means no candidate exists.
func FindEnvFile(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if p := os.Getenv(EnvPathVar); p != "" {
		return p
	}
	for _, cand := range dfltSearchPaths {
		isFile, err := fs.IsFile(cand)
		if err == nil && isFile {
			return cand
		}
	}
	return ""
}

// ParseEnvFile reads a line-oriented KEY=value file. Blank lines,
// comments and malformed lines are skipped; an offending line never
// fails the whole file.
func ParseEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open env file %s: %w", path, err)
	}
	defer f.Close()
	ans := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			log.Warn().Str("file", path).Str("line", line).Msg("skipping malformed env file line")
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		ans[key] = value
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return ans, nil
}

// Resolve determines the static-asset install path. A relative
// STATIC_FOLDER_PATH is resolved against the env file's parent
// directory, never against the process working directory. Any failure
// to locate or use the host configuration degrades to the local
// fallback directory instead of failing.
func Resolve(explicitPath string) Resolution {
	envFile := FindEnvFile(explicitPath)
	if envFile == "" {
		return fallback()
	}
	entries, err := ParseEnvFile(envFile)
	if err != nil {
		log.Warn().Err(err).Str("file", envFile).Msg("cannot read tosu.env, falling back to development mode")
		return fallback()
	}
	staticRoot, ok := entries[StaticFolderKey]
	if !ok || staticRoot == "" {
		log.Warn().
			Str("file", envFile).
			Msgf("tosu.env does not define %s, falling back to development mode", StaticFolderKey)
		return fallback()
	}
	if !filepath.IsAbs(staticRoot) {
		staticRoot = filepath.Join(filepath.Dir(envFile), staticRoot)
	}
	return Resolution{
		InstallPath: staticRoot,
		EnvFile:     envFile,
	}
}

func fallback() Resolution {
	return Resolution{
		InstallPath:   DfltFallbackDir,
		UsingFallback: true,
	}
}
