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

// Package file writes the published payload as msd.json inside the
// installed overlay directory. The overlay's browser-side poller reads
// the file with no coordination, so every write goes through a temp
// file in the same directory followed by an atomic rename - a reader
// sees either the previous complete document or the next one, never
// a truncated mix.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/czcorpus/minacalc-overlay/publish"
)

// FileName is fixed relative to the overlay install directory.
const FileName = "msd.json"

type Sink struct {
	dir string
}

// New creates a sink rooted in the overlay bundle directory
// (<InstallPath>/MinaCalcOnOsu).
func New(dir string) *Sink {
	return &Sink{dir: dir}
}

// TargetPath returns the full path of the published file.
func (s *Sink) TargetPath() string {
	return filepath.Join(s.dir, FileName)
}

func (s *Sink) Publish(ctx context.Context, payload *publish.Payload) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize payload: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create publish directory %s: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp publish file in %s: %w", s.dir, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp publish file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp publish file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.TargetPath()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", s.TargetPath(), err)
	}
	return nil
}
