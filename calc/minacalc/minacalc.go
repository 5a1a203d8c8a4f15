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

// Package minacalc binds the standalone MinaCalc C library
// (https://github.com/etternagame/etterna, MinaCalc/API.h as packaged
// by minacalc-standalone). The library must be installed on the build
// host; the package adds no go.mod dependency.
package minacalc

/*
#cgo LDFLAGS: -lminacalc -lstdc++ -lm
#include <stddef.h>

typedef struct CalcHandle CalcHandle;

typedef struct NoteInfo {
	unsigned int notes;
	float rowTime;
} NoteInfo;

typedef struct Ssr {
	float overall;
	float stream;
	float jumpstream;
	float handstream;
	float stamina;
	float jackspeed;
	float chordjack;
	float technical;
} Ssr;

extern int calc_version(void);
extern CalcHandle *create_calc(void);
extern void destroy_calc(CalcHandle *calc);
extern Ssr calc_ssr(CalcHandle *calc, const NoteInfo *rows, size_t num_rows,
	float music_rate, float score_goal);
*/
import "C"

import (
	"errors"
	"fmt"

	"github.com/czcorpus/minacalc-overlay/calc"
	"github.com/czcorpus/minacalc-overlay/chart"
)

var ErrEmptyChart = errors.New("cannot compute difficulty of an empty chart")

// Calc wraps a MinaCalc handle. It is not safe for concurrent use,
// which matches the single poll loop owning it.
type Calc struct {
	handle *C.CalcHandle
}

func New() (*Calc, error) {
	h := C.create_calc()
	if h == nil {
		return nil, fmt.Errorf("failed to create MinaCalc handle (version %d)", int(C.calc_version()))
	}
	return &Calc{handle: h}, nil
}

// Version returns the MSD calculator version compiled into the library.
func Version() int {
	return int(C.calc_version())
}

func (mc *Calc) Close() {
	if mc.handle != nil {
		C.destroy_calc(mc.handle)
		mc.handle = nil
	}
}

func (mc *Calc) CalcSSR(rows []chart.NoteRow, rate float32, scoreGoal float32) (calc.SkillsetScores, error) {
	if mc.handle == nil {
		return calc.SkillsetScores{}, errors.New("MinaCalc handle already closed")
	}
	if len(rows) == 0 {
		return calc.SkillsetScores{}, ErrEmptyChart
	}
	cRows := make([]C.NoteInfo, len(rows))
	for i, row := range rows {
		cRows[i] = C.NoteInfo{
			notes:   C.uint(row.Notes),
			rowTime: C.float(row.Time),
		}
	}
	ssr := C.calc_ssr(mc.handle, &cRows[0], C.size_t(len(cRows)), C.float(rate), C.float(scoreGoal))
	return calc.SkillsetScores{
		Overall:    float32(ssr.overall),
		Stream:     float32(ssr.stream),
		Jumpstream: float32(ssr.jumpstream),
		Handstream: float32(ssr.handstream),
		Stamina:    float32(ssr.stamina),
		Jackspeed:  float32(ssr.jackspeed),
		Chordjack:  float32(ssr.chordjack),
		Technical:  float32(ssr.technical),
	}, nil
}
