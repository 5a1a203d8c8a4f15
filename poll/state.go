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

package poll

// State describes where the loop currently is:
//
//	StateIdle      - no reachable host detected (yet)
//	StateTracking  - host reachable, last chart identity known
//	StateComputing - a difficulty computation is in flight
type State int

const (
	StateIdle State = iota
	StateTracking
	StateComputing
)

func (st State) String() string {
	switch st {
	case StateIdle:
		return "idle"
	case StateTracking:
		return "tracking"
	case StateComputing:
		return "computing"
	default:
		return "unknown"
	}
}
