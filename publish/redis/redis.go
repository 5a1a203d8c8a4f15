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

// Package redis mirrors the published payload into a Redis key so
// stream tooling can consume the current MSD without touching the
// overlay install directory. It is always a mirror, never the primary
// publish target.
package redis

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"

	"github.com/czcorpus/minacalc-overlay/publish"
)

type Sink struct {
	conf        *publish.Conf
	redisClient *redis.Client
}

func New(conf *publish.Conf) *Sink {
	return &Sink{
		conf: conf,
		redisClient: redis.NewClient(&redis.Options{
			Addr: conf.RedisAddr,
			DB:   conf.RedisDB,
		}),
	}
}

func (s *Sink) Publish(ctx context.Context, payload *publish.Payload) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize payload: %w", err)
	}
	// a SET is atomic from the reader's perspective; no expiration, the
	// value is always the current state
	if err := s.redisClient.Set(ctx, s.conf.RedisKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis key %s: %w", s.conf.RedisKey, err)
	}
	return nil
}
