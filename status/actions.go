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

// Package status exposes a small read-only diagnostics API on
// localhost. It never serves the overlay assets themselves - that is
// the host's job.
package status

import (
	"net/http"
	"time"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/czcorpus/minacalc-overlay/hostcfg"
	"github.com/czcorpus/minacalc-overlay/poll"
)

type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

type Actions struct {
	InstanceID uuid.UUID
	StartTime  time.Time
	Version    VersionInfo
	Loop       *poll.Loop
	Resolution hostcfg.Resolution
}

func (a *Actions) HandleHealthz(ctx *gin.Context) {
	uniresp.WriteJSONResponse(ctx.Writer, map[string]any{
		"instanceId":    a.InstanceID.String(),
		"version":       a.Version,
		"uptimeSecs":    int(time.Since(a.StartTime).Seconds()),
		"loopState":     a.Loop.State().String(),
		"installPath":   a.Resolution.InstallPath,
		"usingFallback": a.Resolution.UsingFallback,
	})
}

func (a *Actions) HandleState(ctx *gin.Context) {
	payload := a.Loop.LastPayload()
	if payload == nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("nothing published yet"), http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, payload)
}
