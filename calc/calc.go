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

// Package calc defines the contract of the difficulty computation
// routine. The computation itself is an external collaborator
// (see the minacalc subpackage for the production binding); everything
// in the sidecar depends only on the Engine interface so tests can
// inject a deterministic fake.
package calc

import "github.com/czcorpus/minacalc-overlay/chart"

// DfltScoreGoal is the score goal percentage the skillset ratings
// are computed at (the common Etterna MSD convention).
const DfltScoreGoal = 93.0

// SkillsetScores is the difficulty vector produced by the engine
// for one chart at one play rate.
type SkillsetScores struct {
	Overall    float32
	Stream     float32
	Jumpstream float32
	Handstream float32
	Stamina    float32
	Jackspeed  float32
	Chordjack  float32
	Technical  float32
}

// Engine computes skillset scores from merged note rows. Implementations
// must treat the call as a pure function of its arguments; a failure for
// a structurally valid chart (e.g. zero notes) is an ordinary error,
// not a panic.
type Engine interface {
	CalcSSR(rows []chart.NoteRow, rate float32, scoreGoal float32) (SkillsetScores, error)
}
