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

// Package publish defines the published result document and the sinks
// it can be written to. The file sink is the contract the overlay
// depends on; other sinks are optional mirrors.
package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/czcorpus/minacalc-overlay/calc"
	"github.com/czcorpus/minacalc-overlay/chart"
)

type Status string

const (
	StatusOK               Status = "ok"
	StatusNoChart          Status = "no-chart-loaded"
	StatusHostUnavailable  Status = "host-unavailable"
	StatusComputationError Status = "computation-error"
)

// Payload is the on-disk JSON snapshot of the latest computation (or
// of an explicit degraded state). It is superseded wholesale by the
// next publish; no history is kept.
type Payload struct {
	Song       string    `json:"song"`
	Diff       string    `json:"diff"`
	Overall    float32   `json:"overall"`
	Stamina    float32   `json:"stamina"`
	Jumpstream float32   `json:"jumpstream"`
	Handstream float32   `json:"handstream"`
	Stream     float32   `json:"stream"`
	Chordjack  float32   `json:"chordjack"`
	Jacks      float32   `json:"jacks"`
	Technical  float32   `json:"technical"`
	Rate       string    `json:"rate"`
	Status     Status    `json:"status"`
	ComputedAt time.Time `json:"computedAt"`
}

// Sink is a target the payload can be published to. Implementations
// must guarantee that a concurrent reader never observes a partially
// written document.
type Sink interface {
	Publish(ctx context.Context, payload *Payload) error
}

type Conf struct {
	RedisAddr string `json:"redisAddr"`
	RedisDB   int    `json:"redisDB"`
	RedisKey  string `json:"redisKey"`
}

func (conf *Conf) Validate(context string) error {
	if conf.RedisAddr != "" && conf.RedisKey == "" {
		return fmt.Errorf("%s.redisKey is missing (required when %s.redisAddr is set)", context, context)
	}
	return nil
}

// NewScorePayload creates an ok-status payload for a computed chart.
func NewScorePayload(ident chart.Identity, scores calc.SkillsetScores, now time.Time) *Payload {
	return &Payload{
		Song:       ident.Song,
		Diff:       ident.Diff,
		Overall:    scores.Overall,
		Stamina:    scores.Stamina,
		Jumpstream: scores.Jumpstream,
		Handstream: scores.Handstream,
		Stream:     scores.Stream,
		Chordjack:  scores.Chordjack,
		Jacks:      scores.Jackspeed,
		Technical:  scores.Technical,
		Rate:       ident.Rate,
		Status:     StatusOK,
		ComputedAt: now,
	}
}

// NewStatusPayload creates a degraded-state payload. The identity may
// be empty (host unavailable, no chart loaded); for computation errors
// it carries the chart the computation failed for.
func NewStatusPayload(status Status, ident chart.Identity, now time.Time) *Payload {
	return &Payload{
		Song:       ident.Song,
		Diff:       ident.Diff,
		Rate:       ident.Rate,
		Status:     status,
		ComputedAt: now,
	}
}
