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

package sidecar

import (
	"strings"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"

	"github.com/czcorpus/minacalc-overlay/config"
)

var dfltConfigSearchPaths = []string{
	"./minacalc-overlay.json",
	"/usr/local/etc/minacalc-overlay.json",
}

type CmdOptions struct {
	TosuEnv        string
	LogPath        string
	LogLevel       string
	PollIntervalMs int
	StatusAddr     string
}

// FindAndLoadConfig loads the sidecar configuration from an explicit
// path or from conventional locations. No configuration file at all is
// a supported case - the sidecar then runs purely on defaults and
// command-line overrides.
func FindAndLoadConfig(explicitPath string, cmdOpts *CmdOptions) *config.Configuration {
	var conf *config.Configuration
	if explicitPath != "" {
		var err error
		conf, err = config.LoadConfig(explicitPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize configuration")
		}

	} else {
		for _, srchPath := range dfltConfigSearchPaths {
			isFile, err := fs.IsFile(srchPath)
			if err == nil && isFile {
				conf, err = config.LoadConfig(srchPath)
				if err != nil {
					log.Fatal().Err(err).Msg("failed to initialize configuration")
				}
				explicitPath = srchPath
				break
			}
		}
		if conf == nil {
			conf = new(config.Configuration)
		}
	}
	if cmdOpts.LogLevel != "" {
		conf.Logging.Level = logging.LogLevel(cmdOpts.LogLevel)

	} else if conf.Logging.Level == "" {
		conf.Logging.Level = "info"
	}
	if cmdOpts.LogPath != "" {
		conf.Logging.Path = cmdOpts.LogPath
	}
	logging.SetupLogging(conf.Logging)
	if explicitPath != "" {
		log.Info().Msgf("loaded configuration from %s", explicitPath)

	} else {
		log.Info().Msgf(
			"no configuration file found (searched in: %s), using defaults",
			strings.Join(dfltConfigSearchPaths, ", "),
		)
	}
	log.Info().Msgf("using logging level '%s'", conf.Logging.Level)
	conf.ApplyDefaults()
	overrideConfWithCmd(conf, cmdOpts)
	if err := conf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize configuration")
	}
	return conf
}

func overrideConfWithCmd(origConf *config.Configuration, cmdConf *CmdOptions) {
	if cmdConf.TosuEnv != "" {
		origConf.TosuEnv = cmdConf.TosuEnv
	}
	if cmdConf.PollIntervalMs != 0 {
		origConf.Poll.IntervalMs = cmdConf.PollIntervalMs
	}
	if cmdConf.StatusAddr != "" {
		origConf.StatusServerAddr = cmdConf.StatusAddr
	}
}
