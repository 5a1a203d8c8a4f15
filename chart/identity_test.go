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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentitySameContentSameRate(t *testing.T) {
	a := NewIdentity([]byte("chart data"), 1.0, "song", "diff")
	b := NewIdentity([]byte("chart data"), 1.0, "song", "diff")
	assert.True(t, a.Equal(b))
}

func TestIdentityRateChangeIsAChange(t *testing.T) {
	a := NewIdentity([]byte("chart data"), 1.0, "song", "diff")
	b := NewIdentity([]byte("chart data"), 1.5, "song", "diff")
	assert.False(t, a.Equal(b))
}

func TestIdentityContentChangeIsAChange(t *testing.T) {
	a := NewIdentity([]byte("chart data"), 1.0, "song", "diff")
	b := NewIdentity([]byte("other data"), 1.0, "song", "diff")
	assert.False(t, a.Equal(b))
}

func TestIdentityLabelsDoNotParticipate(t *testing.T) {
	a := NewIdentity([]byte("chart data"), 1.0, "song", "diff")
	b := NewIdentity([]byte("chart data"), 1.0, "other song", "other diff")
	assert.True(t, a.Equal(b))
}

func TestIdentityEmpty(t *testing.T) {
	var ident Identity
	assert.True(t, ident.IsEmpty())
	assert.Equal(t, "", ident.Key())
	ident = NewIdentity([]byte("x"), 1.0, "", "")
	assert.False(t, ident.IsEmpty())
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "1.00", FormatRate(1))
	assert.Equal(t, "1.50", FormatRate(1.5))
	assert.Equal(t, "0.75", FormatRate(0.75))
	assert.Equal(t, "1.60", FormatRate(1.6))
}
