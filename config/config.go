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

package config

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/logging"

	"github.com/czcorpus/minacalc-overlay/calc"
	"github.com/czcorpus/minacalc-overlay/poll"
	"github.com/czcorpus/minacalc-overlay/publish"
	"github.com/czcorpus/minacalc-overlay/tosu"
)

const (
	DfltOverlaySrcDir = "overlay"
)

// Configuration is the sidecar's own configuration. Unlike the host's
// tosu.env (which is external and read-only), this file belongs to the
// sidecar - and it is fully optional: every value has a default, so
// the sidecar runs with no configuration file at all.
type Configuration struct {
	// TosuEnv is an explicit path to the host's tosu.env file
	// (overridable via command line and process environment).
	TosuEnv string `json:"tosuEnv"`

	// OverlaySrcDir is the bundled overlay asset directory copied on
	// first start.
	OverlaySrcDir string `json:"overlaySrcDir"`

	// StatusServerAddr enables the localhost diagnostics server when
	// non-empty (e.g. "127.0.0.1:24051").
	StatusServerAddr string `json:"statusServerAddr"`

	Host    tosu.Conf           `json:"host"`
	Poll    poll.Conf           `json:"poll"`
	Publish publish.Conf        `json:"publish"`
	Logging logging.LoggingConf `json:"logging"`
}

func (conf *Configuration) Validate() error {
	if err := conf.Host.Validate("host"); err != nil {
		return err
	}
	if err := conf.Poll.Validate("poll"); err != nil {
		return err
	}
	if err := conf.Publish.Validate("publish"); err != nil {
		return err
	}
	// a host call slower than the poll interval would make iterations
	// overlap
	if conf.Host.RequestTimeoutMs >= conf.Poll.IntervalMs {
		return fmt.Errorf(
			"host.requestTimeoutMs (%d) must be strictly smaller than poll.intervalMs (%d)",
			conf.Host.RequestTimeoutMs, conf.Poll.IntervalMs,
		)
	}
	return nil
}

// ApplyDefaults fills in all unset values. It is called both for a
// loaded configuration and for the zero-config case.
func (conf *Configuration) ApplyDefaults() {
	if conf.OverlaySrcDir == "" {
		conf.OverlaySrcDir = DfltOverlaySrcDir
	}
	if conf.Host.BaseURL == "" {
		conf.Host.BaseURL = tosu.DfltBaseURL
	}
	if conf.Host.RequestTimeoutMs == 0 {
		conf.Host.RequestTimeoutMs = tosu.DfltRequestTimeoutMs
	}
	if conf.Poll.IntervalMs == 0 {
		conf.Poll.IntervalMs = poll.DfltIntervalMs
	}
	if conf.Poll.ScoreGoal == 0 {
		conf.Poll.ScoreGoal = calc.DfltScoreGoal
	}
}

func LoadConfig(path string) (*Configuration, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load config %s: %w", path, err)
	}
	var conf Configuration
	if err := sonic.Unmarshal(rawData, &conf); err != nil {
		return nil, fmt.Errorf("cannot load config %s: %w", path, err)
	}
	return &conf, nil
}
