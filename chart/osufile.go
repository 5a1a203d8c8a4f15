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
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	maniaMode = 3
	maniaKeys = 4
)

var (
	ErrNotMania        = errors.New("beatmap is not an osu!mania chart")
	ErrUnsupportedKeys = errors.New("only 4-key charts are supported")
	ErrMissingNoteData = errors.New("beatmap contains no [HitObjects] section")
)

// NoteRow is one row of simultaneous notes as consumed by the
// difficulty engine. Notes is a column bitmask (bit 0 = leftmost
// column), Time is the row timestamp in seconds.
type NoteRow struct {
	Notes uint32
	Time  float32
}

// ParseManiaNotes extracts note rows from a raw .osu file. Simultaneous
// hit objects are merged into a single row with OR'd column bits and
// rows are returned ordered by time. For hold notes only the head
// counts. A structurally valid chart with zero notes yields an empty
// slice and no error; rejecting it is the engine's call.
func ParseManiaNotes(src string) ([]NoteRow, error) {
	var (
		section    string
		mode       = -1
		keys       = maniaKeys
		sawObjects bool
	)
	rowsByTime := make(map[int]uint32)

	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line
			if section == "[HitObjects]" {
				sawObjects = true
				if mode != maniaMode {
					return nil, ErrNotMania
				}
				if keys != maniaKeys {
					return nil, fmt.Errorf("%w (got %d keys)", ErrUnsupportedKeys, keys)
				}
			}
			continue
		}
		switch section {
		case "[General]":
			if k, v, ok := splitKeyValue(line); ok && k == "Mode" {
				m, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("invalid Mode value %q: %w", v, err)
				}
				mode = m
			}
		case "[Difficulty]":
			if k, v, ok := splitKeyValue(line); ok && k == "CircleSize" {
				cs, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid CircleSize value %q: %w", v, err)
				}
				keys = int(cs)
			}
		case "[HitObjects]":
			if err := addHitObject(rowsByTime, line, keys); err != nil {
				return nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan beatmap: %w", err)
	}
	if !sawObjects {
		return nil, ErrMissingNoteData
	}

	times := make([]int, 0, len(rowsByTime))
	for t := range rowsByTime {
		times = append(times, t)
	}
	sort.Ints(times)
	rows := make([]NoteRow, len(times))
	for i, t := range times {
		rows[i] = NoteRow{Notes: rowsByTime[t], Time: float32(t) / 1000}
	}
	return rows, nil
}

// addHitObject parses a single x,y,time,type,... line. The mania column
// is encoded in the x coordinate as floor(x * keys / 512), clamped.
func addHitObject(rows map[int]uint32, line string, keys int) error {
	items := strings.Split(line, ",")
	if len(items) < 4 {
		return fmt.Errorf("malformed hit object line %q", line)
	}
	x, err := strconv.ParseFloat(items[0], 64)
	if err != nil {
		return fmt.Errorf("malformed hit object x %q: %w", items[0], err)
	}
	t, err := strconv.Atoi(items[2])
	if err != nil {
		return fmt.Errorf("malformed hit object time %q: %w", items[2], err)
	}
	column := int(x) * keys / 512
	if column < 0 {
		column = 0
	} else if column >= keys {
		column = keys - 1
	}
	rows[t] |= 1 << column
	return nil
}

func splitKeyValue(line string) (string, string, bool) {
	k, v, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}
