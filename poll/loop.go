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

// Package poll drives the resolve-compute-publish cycle. A single
// sequential loop owns all mutable state; every steady-state error is
// absorbed here and surfaced only as a published status plus a log
// line - after startup the process never terminates due to host
// flakiness or malformed data.
package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/minacalc-overlay/calc"
	"github.com/czcorpus/minacalc-overlay/chart"
	"github.com/czcorpus/minacalc-overlay/publish"
	"github.com/czcorpus/minacalc-overlay/tosu"
)

const DfltIntervalMs = 600

// HostAPI is the narrow capability the loop needs from the host
// client; tests inject scripted implementations.
type HostAPI interface {
	Snapshot(ctx context.Context) (*tosu.Snapshot, error)
	BeatmapFile(ctx context.Context) ([]byte, error)
}

type Conf struct {
	IntervalMs int     `json:"intervalMs"`
	ScoreGoal  float64 `json:"scoreGoal"`
}

func (conf *Conf) Validate(context string) error {
	if conf.IntervalMs <= 0 {
		return fmt.Errorf("%s.intervalMs must be > 0", context)
	}
	if conf.ScoreGoal <= 0 || conf.ScoreGoal > 100 {
		return fmt.Errorf("%s.scoreGoal must be within (0, 100]", context)
	}
	return nil
}

// Loop is the poll loop state machine. The computation is strictly
// sequential (at most one difficulty call in flight), so overlapping
// publishes cannot occur.
type Loop struct {
	conf   *Conf
	host   HostAPI
	engine calc.Engine
	sink   publish.Sink

	// lastKey is the dedupe key of the last seen chart identity;
	// empty both before the first detection and while no chart is
	// loaded or the host is away
	lastKey    string
	lastStatus publish.Status

	mu          sync.Mutex
	state       State
	lastPayload *publish.Payload
}

func NewLoop(conf *Conf, host HostAPI, engine calc.Engine, sink publish.Sink) *Loop {
	return &Loop{
		conf:   conf,
		host:   host,
		engine: engine,
		sink:   sink,
		state:  StateIdle,
	}
}

// State reports the current loop state; safe for concurrent use
// (the diagnostics server reads it).
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastPayload returns the most recently published document or nil.
func (l *Loop) LastPayload() *publish.Payload {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastPayload
}

func (l *Loop) setState(state State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != state {
		log.Debug().
			Str("from", l.state.String()).
			Str("to", state.String()).
			Msg("poll loop state change")
	}
	l.state = state
}

// Run blocks until ctx is cancelled, stepping once per interval.
// Every host call carries a timeout strictly shorter than the
// interval (enforced by config validation), so iterations never
// overlap.
func (l *Loop) Run(ctx context.Context) error {
	interval := time.Duration(l.conf.IntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Dur("interval", interval).Msg("starting poll loop")
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("poll loop got shutdown signal")
			return nil
		case <-ticker.C:
			l.Step(ctx, time.Now())
		}
	}
}

// Step performs one poll iteration. It is exported so tests can drive
// the loop with a deterministic sequence of host responses.
func (l *Loop) Step(ctx context.Context, now time.Time) {
	snap, err := l.host.Snapshot(ctx)
	if err != nil {
		l.handleSnapshotError(ctx, err, now)
		return
	}
	l.setState(StateTracking)

	osuData, err := l.host.BeatmapFile(ctx)
	switch {
	case errors.Is(err, tosu.ErrNoBeatmap):
		l.handleNoChart(ctx, now)
		return
	case errors.Is(err, tosu.ErrHostUnavailable):
		l.handleHostAway(ctx, err, now)
		return
	case err != nil:
		log.Warn().Err(err).Msg("discarding unusable beatmap file response")
		return
	}

	rate := snap.Rate()
	ident := chart.NewIdentity(osuData, rate, snap.Song(), snap.Diff())
	if ident.Key() == l.lastKey {
		return
	}
	log.Info().Str("chart", ident.String()).Msg("chart change detected")
	l.setState(StateComputing)
	l.lastKey = ident.Key()
	payload := l.compute(ident, osuData, rate, now)
	l.publishPayload(ctx, payload)
	l.setState(StateTracking)
}

func (l *Loop) handleSnapshotError(ctx context.Context, err error, now time.Time) {
	if errors.Is(err, tosu.ErrHostUnavailable) {
		l.handleHostAway(ctx, err, now)
		return
	}
	// malformed response - transient; previous published state stays
	log.Warn().Err(err).Msg("discarding malformed host response")
}

// handleHostAway drops back to idle and clears the last seen identity
// so a later reappearance of the same chart is re-detected and
// republished.
func (l *Loop) handleHostAway(ctx context.Context, err error, now time.Time) {
	if l.State() != StateIdle {
		log.Warn().Err(err).Msg("host became unreachable")
	}
	l.setState(StateIdle)
	l.lastKey = ""
	if l.lastStatus != publish.StatusHostUnavailable {
		l.publishPayload(ctx, publish.NewStatusPayload(publish.StatusHostUnavailable, chart.Identity{}, now))
	}
}

func (l *Loop) handleNoChart(ctx context.Context, now time.Time) {
	l.lastKey = ""
	if l.lastStatus != publish.StatusNoChart {
		log.Info().Msg("no chart loaded")
		l.publishPayload(ctx, publish.NewStatusPayload(publish.StatusNoChart, chart.Identity{}, now))
	}
}

func (l *Loop) compute(ident chart.Identity, osuData []byte, rate float64, now time.Time) *publish.Payload {
	rows, err := chart.ParseManiaNotes(string(osuData))
	if err != nil {
		log.Error().Err(err).Str("chart", ident.String()).Msg("failed to extract note data")
		return publish.NewStatusPayload(publish.StatusComputationError, ident, now)
	}
	scores, err := l.engine.CalcSSR(rows, float32(rate), float32(l.conf.ScoreGoal))
	if err != nil {
		log.Error().Err(err).Str("chart", ident.String()).Msg("difficulty computation failed")
		return publish.NewStatusPayload(publish.StatusComputationError, ident, now)
	}
	return publish.NewScorePayload(ident, scores, now)
}

// publishPayload hands the payload to the sink. A write failure is
// not fatal: the last seen identity is cleared so the very next cycle
// re-detects the chart and retries the publish.
func (l *Loop) publishPayload(ctx context.Context, payload *publish.Payload) {
	if err := l.sink.Publish(ctx, payload); err != nil {
		log.Warn().Err(err).Msg("failed to publish result, will retry next cycle")
		l.lastKey = ""
		return
	}
	l.lastStatus = payload.Status
	l.mu.Lock()
	l.lastPayload = payload
	l.mu.Unlock()
	log.Info().
		Str("status", string(payload.Status)).
		Str("song", payload.Song).
		Str("diff", payload.Diff).
		Str("rate", payload.Rate).
		Msg("published")
}
