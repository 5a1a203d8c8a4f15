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

package publish

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Fanout publishes to a primary sink plus best-effort mirrors. Only
// the primary's error propagates (and thus triggers the poll loop's
// republish-next-cycle behavior); mirror failures are logged and
// dropped so a dead mirror can never block the file the overlay reads.
type Fanout struct {
	primary Sink
	mirrors []Sink
}

func NewFanout(primary Sink, mirrors ...Sink) *Fanout {
	return &Fanout{primary: primary, mirrors: mirrors}
}

func (f *Fanout) Publish(ctx context.Context, payload *Payload) error {
	err := f.primary.Publish(ctx, payload)
	for _, mirror := range f.mirrors {
		if merr := mirror.Publish(ctx, payload); merr != nil {
			log.Warn().Err(merr).Msg("mirror sink publish failed")
		}
	}
	return err
}
