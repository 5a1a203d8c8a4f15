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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/czcorpus/minacalc-overlay/sidecar"
	"github.com/czcorpus/minacalc-overlay/status"
)

var (
	version     string
	buildDate   string
	gitCommit   string
	versionInfo = status.VersionInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}
)

func main() {
	cmdOpts := new(sidecar.CmdOptions)
	flag.StringVar(&cmdOpts.TosuEnv, "tosu-env", "", "An explicit path to the host's tosu.env file")
	flag.StringVar(&cmdOpts.LogPath, "log-path", "", "A file to log to (if empty then stderr is used)")
	flag.StringVar(&cmdOpts.LogLevel, "log-level", "", "A log level (debug, info, warn/warning, error)")
	flag.IntVar(&cmdOpts.PollIntervalMs, "poll-interval", 0, "Host polling interval in milliseconds")
	flag.StringVar(&cmdOpts.StatusAddr, "status-addr", "", "If set, a diagnostics HTTP server listens on this address (e.g. 127.0.0.1:24051)")

	flag.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"minacalc-overlay - MSD difficulty sidecar for the tosu overlay host"+
				"\n\nUsage:"+
				"\n\t%s [options] start [conf.json]"+
				"\n\t%s [options] install [conf.json]"+
				"\n\t%s [options] version\n",
			filepath.Base(os.Args[0]), filepath.Base(os.Args[0]), filepath.Base(os.Args[0]),
		)
		flag.PrintDefaults()
	}
	flag.Parse()

	action := flag.Arg(0)

	switch action {
	case "version":
		fmt.Printf("minacalc-overlay %s\nbuild date: %s\nlast commit: %s\n",
			versionInfo.Version, versionInfo.BuildDate, versionInfo.GitCommit)
	case "start":
		conf := sidecar.FindAndLoadConfig(flag.Arg(1), cmdOpts)
		sidecar.RunService(conf, versionInfo)
	case "install":
		conf := sidecar.FindAndLoadConfig(flag.Arg(1), cmdOpts)
		sidecar.RunInstall(conf)
	default:
		fmt.Printf("Unknown action [%s]. Try -h for help\n", flag.Arg(0))
		os.Exit(1)
	}
}
