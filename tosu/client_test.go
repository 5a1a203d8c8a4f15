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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&Conf{BaseURL: baseURL, RequestTimeoutMs: 500})
}

func TestSnapshotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/json/v2", req.URL.Path)
		w.Write([]byte(`{"beatmap": {"artist": "A", "title": "T", "version": "4K"}, "play": {"mods": {"name": "", "rate": 1.2}}}`))
	}))
	defer srv.Close()
	snap, err := newTestClient(srv.URL).Snapshot(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "A - T", snap.Song())
	assert.Equal(t, "4K", snap.Diff())
	assert.InDelta(t, 1.2, snap.Rate(), 0.0001)
}

func TestSnapshotHostDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {}))
	srv.Close()
	_, err := newTestClient(srv.URL).Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrHostUnavailable)
}

func TestSnapshotMalformedIsNotUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"beatmap": [1, 2, 3]}`))
	}))
	defer srv.Close()
	_, err := newTestClient(srv.URL).Snapshot(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrHostUnavailable)
}

func TestSnapshotUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err := newTestClient(srv.URL).Snapshot(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrHostUnavailable)
}

func TestBeatmapFileOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/files/beatmap/file", req.URL.Path)
		w.Write([]byte("osu file format v14"))
	}))
	defer srv.Close()
	data, err := newTestClient(srv.URL).BeatmapFile(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []byte("osu file format v14"), data)
}

func TestBeatmapFileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	_, err := newTestClient(srv.URL).BeatmapFile(context.Background())
	assert.ErrorIs(t, err, ErrNoBeatmap)
}

func TestBeatmapFileEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {}))
	defer srv.Close()
	_, err := newTestClient(srv.URL).BeatmapFile(context.Background())
	assert.ErrorIs(t, err, ErrNoBeatmap)
}

func TestConfValidate(t *testing.T) {
	conf := Conf{BaseURL: DfltBaseURL, RequestTimeoutMs: 300}
	assert.NoError(t, conf.Validate("host"))
	conf = Conf{RequestTimeoutMs: 300}
	assert.Error(t, conf.Validate("host"))
	conf = Conf{BaseURL: DfltBaseURL}
	assert.Error(t, conf.Validate("host"))
}
