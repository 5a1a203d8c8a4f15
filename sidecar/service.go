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

// Package sidecar wires all components together and runs them until
// an interrupt arrives.
package sidecar

import (
	"context"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/czcorpus/minacalc-overlay/calc/minacalc"
	"github.com/czcorpus/minacalc-overlay/config"
	"github.com/czcorpus/minacalc-overlay/hostcfg"
	"github.com/czcorpus/minacalc-overlay/install"
	"github.com/czcorpus/minacalc-overlay/poll"
	"github.com/czcorpus/minacalc-overlay/publish"
	"github.com/czcorpus/minacalc-overlay/publish/file"
	"github.com/czcorpus/minacalc-overlay/publish/redis"
	"github.com/czcorpus/minacalc-overlay/status"
	"github.com/czcorpus/minacalc-overlay/tosu"
)

const statusServerShutdownTimeout = 5 * time.Second

// prepareInstallDir resolves the static root and makes sure the
// overlay bundle is in place. This is the only step whose failure
// terminates the process - without a usable destination there is
// nothing to publish to.
func prepareInstallDir(conf *config.Configuration) hostcfg.Resolution {
	res := hostcfg.Resolve(conf.TosuEnv)
	if res.UsingFallback {
		log.Warn().
			Str("installPath", res.InstallPath).
			Msg("no tosu.env found, running in development mode")

	} else {
		log.Info().
			Str("installPath", res.InstallPath).
			Str("tosuEnv", res.EnvFile).
			Msg("resolved static root from tosu.env")
	}
	installer := &install.Installer{SrcDir: conf.OverlaySrcDir}
	if err := installer.Ensure(res.InstallPath); err != nil {
		log.Fatal().Err(err).Msg("cannot prepare the overlay install directory")
	}
	return res
}

// RunInstall performs the one-time setup and exits (the `install`
// action).
func RunInstall(conf *config.Configuration) {
	res := prepareInstallDir(conf)
	log.Info().Str("installPath", res.InstallPath).Msg("overlay install finished")
}

func initStatusEngine(actions *status.Actions) http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinMiddleware())
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	engine.GET("/healthz", actions.HandleHealthz)
	engine.GET("/state", actions.HandleState)
	return engine
}

// RunService runs the sidecar until SIGINT/SIGTERM.
func RunService(conf *config.Configuration, version status.VersionInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := prepareInstallDir(conf)

	if res.EnvFile != "" {
		if err := hostcfg.WatchEnvFile(ctx, res.EnvFile); err != nil {
			log.Warn().Err(err).Msg("cannot watch tosu.env for changes")
		}
	}

	engine, err := minacalc.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize the MinaCalc engine")
	}
	defer engine.Close()
	log.Info().Int("calcVersion", minacalc.Version()).Msg("MinaCalc engine ready")

	fileSink := file.New(filepath.Join(res.InstallPath, install.BundleDirName))
	log.Info().Msgf("publishing to %s", fileSink.TargetPath())
	var sink publish.Sink = fileSink
	if conf.Publish.RedisAddr != "" {
		sink = publish.NewFanout(fileSink, redis.New(&conf.Publish))
		log.Info().Msgf(
			"mirroring published results to redis (addr: %s, db: %d, key: %s)",
			conf.Publish.RedisAddr, conf.Publish.RedisDB, conf.Publish.RedisKey,
		)
	}

	loop := poll.NewLoop(&conf.Poll, tosu.NewClient(&conf.Host), engine, sink)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})

	if conf.StatusServerAddr != "" {
		actions := &status.Actions{
			InstanceID: uuid.New(),
			StartTime:  time.Now(),
			Version:    version,
			Loop:       loop,
			Resolution: res,
		}
		srv := &http.Server{
			Handler: initStatusEngine(actions),
			Addr:    conf.StatusServerAddr,
		}
		log.Info().
			Str("instanceId", actions.InstanceID.String()).
			Msgf("starting the status server at %s", conf.StatusServerAddr)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), statusServerShutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("service error")
	}
	log.Info().Msg("Graceful shutdown completed")
}
