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

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/czcorpus/minacalc-overlay/calc"
	"github.com/czcorpus/minacalc-overlay/chart"
	"github.com/czcorpus/minacalc-overlay/publish"
	"github.com/czcorpus/minacalc-overlay/tosu"
)

// frame is one scripted poll outcome of the fake host.
type frame struct {
	snap    *tosu.Snapshot
	snapErr error
	file    []byte
	fileErr error
}

type scriptedHost struct {
	frames []frame
	pos    int
}

func (h *scriptedHost) current() frame {
	if h.pos >= len(h.frames) {
		return h.frames[len(h.frames)-1]
	}
	return h.frames[h.pos]
}

func (h *scriptedHost) Snapshot(ctx context.Context) (*tosu.Snapshot, error) {
	fr := h.current()
	return fr.snap, fr.snapErr
}

func (h *scriptedHost) BeatmapFile(ctx context.Context) ([]byte, error) {
	fr := h.current()
	h.pos++
	return fr.file, fr.fileErr
}

func (h *scriptedHost) advance() {
	// snapshot errors skip the BeatmapFile call, so move on manually
	h.pos++
}

type countingEngine struct {
	numCalls int
	err      error
}

func (e *countingEngine) CalcSSR(rows []chart.NoteRow, rate float32, scoreGoal float32) (calc.SkillsetScores, error) {
	e.numCalls++
	if e.err != nil {
		return calc.SkillsetScores{}, e.err
	}
	return calc.SkillsetScores{Overall: 25.5, Stream: 24.1}, nil
}

type memSink struct {
	published []*publish.Payload
	numFails  int
}

func (s *memSink) Publish(ctx context.Context, payload *publish.Payload) error {
	if s.numFails > 0 {
		s.numFails--
		return errors.New("disk full")
	}
	s.published = append(s.published, payload)
	return nil
}

func chartData(timeOffset int) []byte {
	return []byte(fmt.Sprintf(`osu file format v14

[General]
Mode: 3

[Difficulty]
CircleSize:4

[HitObjects]
64,192,%d,1,0,0:0:0:0:
192,192,%d,1,0,0:0:0:0:
`, 1000+timeOffset, 1600+timeOffset))
}

func okSnap(artist string) *tosu.Snapshot {
	return &tosu.Snapshot{
		Beatmap: tosu.BeatmapInfo{Artist: artist, Title: "T", Version: "4K"},
	}
}

func okFrame(artist string, timeOffset int) frame {
	return frame{snap: okSnap(artist), file: chartData(timeOffset)}
}

func awayFrame() frame {
	return frame{snapErr: fmt.Errorf("GET /json/v2: %w", tosu.ErrHostUnavailable)}
}

func newTestLoop(host HostAPI, engine calc.Engine, sink publish.Sink) *Loop {
	return NewLoop(&Conf{IntervalMs: 600, ScoreGoal: 93}, host, engine, sink)
}

func runSteps(l *Loop, host *scriptedHost, numSteps int) {
	ctx := context.Background()
	for i := 0; i < numSteps; i++ {
		before := host.pos
		l.Step(ctx, time.Now())
		if host.pos == before {
			host.advance()
		}
	}
}

func TestSameChartComputedOnce(t *testing.T) {
	host := &scriptedHost{frames: []frame{okFrame("A", 0), okFrame("A", 0)}}
	engine := &countingEngine{}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 2)

	assert.Equal(t, 1, engine.numCalls)
	require.Len(t, sink.published, 1)
	assert.Equal(t, publish.StatusOK, sink.published[0].Status)
	assert.Equal(t, "A - T", sink.published[0].Song)
	assert.Equal(t, StateTracking, l.State())
}

func TestHostBecomesUnreachable(t *testing.T) {
	host := &scriptedHost{frames: []frame{
		okFrame("A", 0), awayFrame(), awayFrame(), awayFrame(),
	}}
	engine := &countingEngine{}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 4)

	require.Len(t, sink.published, 2)
	assert.Equal(t, publish.StatusOK, sink.published[0].Status)
	assert.Equal(t, publish.StatusHostUnavailable, sink.published[1].Status)
	assert.Equal(t, StateIdle, l.State())
}

func TestChartSequenceABA(t *testing.T) {
	host := &scriptedHost{frames: []frame{
		okFrame("A", 0), okFrame("B", 100), okFrame("A", 0),
	}}
	engine := &countingEngine{}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 3)

	assert.Equal(t, 3, engine.numCalls)
	require.Len(t, sink.published, 3)
	assert.Equal(t, "A - T", sink.published[0].Song)
	assert.Equal(t, "B - T", sink.published[1].Song)
	assert.Equal(t, "A - T", sink.published[2].Song)
}

func TestRateChangeAloneTriggersRecompute(t *testing.T) {
	rated := okFrame("A", 0)
	rated.snap = &tosu.Snapshot{
		Beatmap: tosu.BeatmapInfo{Artist: "A", Title: "T", Version: "4K"},
		Play:    tosu.PlayInfo{Mods: tosu.ModsInfo{Rate: 1.5}},
	}
	host := &scriptedHost{frames: []frame{okFrame("A", 0), rated}}
	engine := &countingEngine{}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 2)

	assert.Equal(t, 2, engine.numCalls)
	require.Len(t, sink.published, 2)
	assert.Equal(t, "1.00", sink.published[0].Rate)
	assert.Equal(t, "1.50", sink.published[1].Rate)
}

func TestChartReappearanceAfterOutageIsRepublished(t *testing.T) {
	host := &scriptedHost{frames: []frame{
		okFrame("A", 0), awayFrame(), okFrame("A", 0),
	}}
	engine := &countingEngine{}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 3)

	assert.Equal(t, 2, engine.numCalls)
	require.Len(t, sink.published, 3)
	assert.Equal(t, publish.StatusOK, sink.published[0].Status)
	assert.Equal(t, publish.StatusHostUnavailable, sink.published[1].Status)
	assert.Equal(t, publish.StatusOK, sink.published[2].Status)
}

func TestNoChartLoaded(t *testing.T) {
	host := &scriptedHost{frames: []frame{
		okFrame("A", 0),
		{snap: okSnap("A"), fileErr: tosu.ErrNoBeatmap},
		{snap: okSnap("A"), fileErr: tosu.ErrNoBeatmap},
	}}
	engine := &countingEngine{}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 3)

	assert.Equal(t, 1, engine.numCalls)
	require.Len(t, sink.published, 2)
	assert.Equal(t, publish.StatusNoChart, sink.published[1].Status)
}

func TestMalformedSnapshotLeavesStateUntouched(t *testing.T) {
	host := &scriptedHost{frames: []frame{
		okFrame("A", 0),
		{snapErr: errors.New("failed to parse /json/v2 response")},
		okFrame("A", 0),
	}}
	engine := &countingEngine{}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 3)

	// the malformed poll neither republished nor re-triggered computation
	assert.Equal(t, 1, engine.numCalls)
	assert.Len(t, sink.published, 1)
	assert.Equal(t, StateTracking, l.State())
}

func TestComputationErrorIsPublished(t *testing.T) {
	host := &scriptedHost{frames: []frame{okFrame("A", 0)}}
	engine := &countingEngine{err: errors.New("empty chart")}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 1)

	require.Len(t, sink.published, 1)
	assert.Equal(t, publish.StatusComputationError, sink.published[0].Status)
	assert.Equal(t, "A - T", sink.published[0].Song)
}

func TestUnparsableChartIsPublishedAsComputationError(t *testing.T) {
	host := &scriptedHost{frames: []frame{
		{snap: okSnap("A"), file: []byte("osu file format v14\n\n[General]\nMode: 0\n\n[HitObjects]\n")},
	}}
	engine := &countingEngine{}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 1)

	assert.Equal(t, 0, engine.numCalls)
	require.Len(t, sink.published, 1)
	assert.Equal(t, publish.StatusComputationError, sink.published[0].Status)
}

func TestPublishFailureRetriedNextCycle(t *testing.T) {
	host := &scriptedHost{frames: []frame{okFrame("A", 0), okFrame("A", 0)}}
	engine := &countingEngine{}
	sink := &memSink{numFails: 1}
	l := newTestLoop(host, engine, sink)

	runSteps(l, host, 2)

	assert.Equal(t, 2, engine.numCalls)
	require.Len(t, sink.published, 1)
	assert.Equal(t, publish.StatusOK, sink.published[0].Status)
}

func TestLastPayloadExposed(t *testing.T) {
	host := &scriptedHost{frames: []frame{okFrame("A", 0)}}
	engine := &countingEngine{}
	sink := &memSink{}
	l := newTestLoop(host, engine, sink)

	assert.Nil(t, l.LastPayload())
	runSteps(l, host, 1)
	require.NotNil(t, l.LastPayload())
	assert.Equal(t, publish.StatusOK, l.LastPayload().Status)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	host := &scriptedHost{frames: []frame{awayFrame()}}
	l := newTestLoop(host, &countingEngine{}, &memSink{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, l.Run(ctx))
}
