// Copyright 2026 The Launchman Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command launchmand is the launchman daemon.  It serves the dashboard and
// its API, and supervises the apps started through it.
//
// The flags are
//
//	-c <file>	- configuration file (see package config)
//	-a <address>	- listen address, overriding the configuration
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/launchman/launchman"
	"github.com/launchman/launchman/config"
	"github.com/launchman/launchman/rest"
)

var cfgFile string = ""
var addr string = ""

func main() {
	flag.StringVar(&cfgFile, "c", cfgFile, "configuration file")
	flag.StringVar(&addr, "a", addr, "listen address")
	flag.Parse()

	cfg, e := config.Load(cfgFile)
	if e != nil {
		log.Fatalf("Failed to load configuration: %v", e)
	}
	if addr != "" {
		cfg.Addr = addr
		if e := cfg.Validate(); e != nil {
			log.Fatalf("Bad listen address: %v", e)
		}
	}
	port, _ := cfg.DashboardPort()

	store := launchman.NewFileStore(cfg.AppsFile)
	reg := launchman.NewRegistry(store, port)
	s := launchman.NewSupervisor(cfg.Name, reg)
	cfg.Apply(s)
	s.SetLogger(log.New(os.Stderr, "", log.LstdFlags))
	reg.SetLogger(s.Logger())

	h := rest.NewHandler(s, reg)
	if cfg.Metrics {
		pm := launchman.NewPrometheusMetrics("launchman")
		s.SetMetrics(pm)
		h.Handle("/metrics", promhttp.HandlerFor(pm.Registry(), promhttp.HandlerOpts{}))
	}
	if e := h.ServeStatic(cfg.StaticDir); e != nil {
		s.Logger().Printf("Not serving dashboard: %v", e)
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: h}

	sigs := make(chan os.Signal, 1)
	done := make(chan bool, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		e := srv.ListenAndServe()
		if !errors.Is(e, http.ErrServerClosed) {
			log.Fatal(e)
		}
	}()
	s.Logger().Printf("Dashboard: http://%s", cfg.Addr)
	s.Logger().Printf("Apps file: %s", store.Path())

	// Set up a handler, so that we shutdown cleanly if possible.
	go func() {
		<-sigs
		done <- true
	}()

	// Wait for a termination signal, and shutdown cleanly if we get it.
	// Long polls are not waited for.
	<-done
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	srv.Shutdown(ctx)
	cancel()
	s.Shutdown()
}
