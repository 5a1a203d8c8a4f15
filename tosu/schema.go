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

package tosu

import (
	"fmt"
	"strings"
)

// The /json/v2 response is a loosely versioned contract - different
// tosu builds expose the play rate in different places (an explicit
// mods.rate, a mods array with per-mod settings, or just a mod name
// acronym string). All known variants are handled here so schema
// drift stays inside this package.

type Snapshot struct {
	Beatmap BeatmapInfo `json:"beatmap"`
	Play    PlayInfo    `json:"play"`
	Mods    *ModsInfo   `json:"mods"`
}

type BeatmapInfo struct {
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Version string `json:"version"`
}

type PlayInfo struct {
	Mods ModsInfo `json:"mods"`
}

type ModsInfo struct {
	Name  string     `json:"name"`
	Array []ModEntry `json:"array"`
	Rate  float64    `json:"rate"`
}

type ModEntry struct {
	Settings ModSettings `json:"settings"`
	Rate     float64     `json:"rate"`
}

type ModSettings struct {
	SpeedChange float64 `json:"speed_change"`
}

// Song returns the "Artist - Title" display label.
func (snap *Snapshot) Song() string {
	if snap.Beatmap.Artist == "" && snap.Beatmap.Title == "" {
		return "Unknown Song"
	}
	return fmt.Sprintf("%s - %s", snap.Beatmap.Artist, snap.Beatmap.Title)
}

// Diff returns the difficulty (version) display label.
func (snap *Snapshot) Diff() string {
	return snap.Beatmap.Version
}

// Rate extracts the music rate from the snapshot. Precedence:
// explicit play.mods.rate, then the first mods-array entry (rate or
// speed_change setting), then the same fields on the top-level mods
// object, and finally the mod name acronyms (NC/DT = 1.5x, HT/DC =
// 0.75x). Defaults to 1.0.
func (snap *Snapshot) Rate() float64 {
	if r := snap.Play.Mods.rate(); r > 0 {
		return r
	}
	if snap.Mods != nil {
		if r := snap.Mods.rate(); r > 0 {
			return r
		}
	}
	return rateFromModName(snap.Play.Mods.Name)
}

func (mods *ModsInfo) rate() float64 {
	if mods.Rate > 0 {
		return mods.Rate
	}
	if len(mods.Array) > 0 {
		entry := mods.Array[0]
		if entry.Rate > 0 {
			return entry.Rate
		}
		if entry.Settings.SpeedChange > 0 {
			return entry.Settings.SpeedChange
		}
	}
	return 0
}

func rateFromModName(name string) float64 {
	switch {
	case strings.Contains(name, "NC") || strings.Contains(name, "DT"):
		return 1.5
	case strings.Contains(name, "HT") || strings.Contains(name, "DC"):
		return 0.75
	default:
		return 1.0
	}
}
