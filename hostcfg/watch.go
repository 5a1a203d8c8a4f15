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

package hostcfg

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// WatchEnvFile observes the resolved tosu.env and logs a warning when
// it changes. The loaded configuration stays immutable for the process
// lifetime - the watcher exists purely so the user learns a restart
// is needed instead of wondering why the new path is ignored.
func WatchEnvFile(ctx context.Context, envFile string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create tosu.env watcher: %w", err)
	}
	// watch the parent dir - editors typically replace the file, which
	// would silently detach a direct file watch
	if err := watcher.Add(filepath.Dir(envFile)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", envFile, err)
	}
	go func() {
		defer watcher.Close()
		target := filepath.Clean(envFile)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					log.Warn().
						Str("file", envFile).
						Str("op", event.Op.String()).
						Msg("tosu.env changed on disk; restart the sidecar to apply the new configuration")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("tosu.env watcher error")
			}
		}
	}()
	return nil
}
