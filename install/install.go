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

// Package install performs the one-time copy of the browser overlay
// asset bundle into the host's static-asset root.
package install

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	gkfs "github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

const (
	// BundleDirName is the directory created under the install path;
	// tosu serves its contents at /MinaCalcOnOsu/ and the published
	// msd.json lives next to the assets.
	BundleDirName = "MinaCalcOnOsu"

	// markerFile decides whether an install already exists. Anything
	// beyond the marker is left alone so user customizations survive.
	markerFile = "index.html"
)

type Installer struct {
	// SrcDir is the bundled overlay source directory (HTML/CSS/JS)
	// shipped next to the binary.
	SrcDir string
}

// Ensure makes <installPath>/MinaCalcOnOsu usable, copying the asset
// bundle on first run. The copy is strictly non-destructive: if the
// marker file exists nothing is written, and even during a fresh copy
// pre-existing files are never overwritten. An unusable destination is
// an error - without it the sidecar has nowhere to publish.
func (inst *Installer) Ensure(installPath string) error {
	dest := filepath.Join(installPath, BundleDirName)
	marker := filepath.Join(dest, markerFile)
	isFile, err := gkfs.IsFile(marker)
	if err == nil && isFile {
		log.Debug().Str("path", dest).Msg("overlay bundle already installed")
		return nil
	}
	isDir, err := gkfs.IsDir(inst.SrcDir)
	if err != nil || !isDir {
		return fmt.Errorf("overlay source directory %s not available", inst.SrcDir)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create overlay directory %s: %w", dest, err)
	}
	numCopied := 0
	err = filepath.WalkDir(inst.SrcDir, func(srcPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(inst.SrcDir, srcPath)
		if err != nil {
			return err
		}
		targetPath := filepath.Join(dest, relPath)
		if entry.IsDir() {
			return os.MkdirAll(targetPath, 0755)
		}
		exists, err := gkfs.IsFile(targetPath)
		if err == nil && exists {
			return nil
		}
		if err := copyFile(srcPath, targetPath); err != nil {
			return err
		}
		numCopied++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to install overlay bundle to %s: %w", dest, err)
	}
	log.Info().
		Str("src", inst.SrcDir).
		Str("dest", dest).
		Int("numFiles", numCopied).
		Msg("installed overlay bundle")
	return nil
}

func copyFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", srcPath, err)
	}
	defer src.Close()
	dst, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", srcPath, err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy %s: %w", srcPath, err)
	}
	return nil
}
