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

package chart

import (
	"crypto/sha1"
	"fmt"
)

// Identity identifies a single playable chart variant as currently
// loaded in the host. Two polls refer to the same chart if and only
// if both the beatmap content hash and the play rate match; the Song
// and Diff labels are display-only and do not participate in equality
// (the host may momentarily report them inconsistently with the
// beatmap file it serves).
type Identity struct {
	Sha1 string
	Rate string
	Song string
	Diff string
}

// Key returns the value the poll loop dedupes on.
func (ident Identity) Key() string {
	if ident.IsEmpty() {
		return ""
	}
	return ident.Sha1 + "@" + ident.Rate
}

func (ident Identity) Equal(other Identity) bool {
	return ident.Key() == other.Key()
}

// IsEmpty reports the "no chart loaded" identity.
func (ident Identity) IsEmpty() bool {
	return ident.Sha1 == ""
}

func (ident Identity) String() string {
	if ident.IsEmpty() {
		return "[no chart]"
	}
	return fmt.Sprintf("%s [%s] @%sx", ident.Song, ident.Diff, ident.Rate)
}

// NewIdentity derives a chart identity from the raw .osu file content,
// a play rate and display labels obtained from the host snapshot.
func NewIdentity(osuData []byte, rate float64, song, diff string) Identity {
	return Identity{
		Sha1: fmt.Sprintf("%x", sha1.Sum(osuData)),
		Rate: FormatRate(rate),
		Song: song,
		Diff: diff,
	}
}

// FormatRate normalizes a play rate into the two-decimal form used
// both for identity comparison and for the published output
// (e.g. 1.5 -> "1.50").
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.2f", rate)
}
