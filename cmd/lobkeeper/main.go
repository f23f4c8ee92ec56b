// Command lobkeeper boots the ingestion pipeline: it loads
// config.json, opens the ClickHouse store, spawns one stream session
// per configured symbol under the supervisor, and serves the
// read-only admin HTTP surface until a shutdown signal arrives,
// grounded on cmd/pms/main.go's flag/logger/shutdown/router wiring.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/BullionBear/lobkeeper/internal/config"
	"github.com/BullionBear/lobkeeper/internal/eventbus"
	"github.com/BullionBear/lobkeeper/internal/httpapi"
	"github.com/BullionBear/lobkeeper/internal/ingest"
	"github.com/BullionBear/lobkeeper/internal/lifecycle"
	"github.com/BullionBear/lobkeeper/internal/obslog"
	"github.com/BullionBear/lobkeeper/internal/store"
)

func main() {
	var configPath, port string
	flag.StringVar(&configPath, "c", "config.json", "Path to config.json")
	flag.StringVar(&port, "p", "8080", "Port to run the admin HTTP server on")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `lobkeeper ingests and replays limit-order-book history.

Usage:
  lobkeeper [flags]

Flags:
  -c string   Path to config.json (default "config.json")
  -p string   Port to run the admin HTTP server on (default "8080")
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lobkeeper: %v\n", err)
		os.Exit(1)
	}

	logger := obslog.New(nil, cfg.LogToConsole)

	ctx := context.Background()
	addr := cfg.HostName
	if addr == "" {
		addr = "localhost:9000"
	}
	st, err := store.Open(ctx, addr, cfg.DBName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lobkeeper: %v\n", err)
		os.Exit(1)
	}
	logger.SetSink(st)

	writer := store.NewDiffWriter(st, logger, cfg.DispatcherBufferSize)

	var events *eventbus.Bus
	if cfg.NATSURL != "" {
		events, err = eventbus.Connect(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			logger.Warning("nats connect failed, lifecycle event bridge disabled: " + err.Error())
			events = nil
		}
	}

	sup := ingest.NewSupervisor(cfg, st, writer, logger, events)

	sd := lifecycle.New(logger)

	go sup.Run(sd.Context())

	router := httpapi.NewRouter(sup, st)
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		logger.Info(fmt.Sprintf("admin HTTP server listening on :%s", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin HTTP server failed: " + err.Error())
		}
	}()

	sd.HookShutdownCallback("http-server", func() {
		_ = srv.Close()
	}, 10*time.Second)
	sd.HookShutdownCallback("store", func() {
		_ = st.Close()
	}, 5*time.Second)
	if events != nil {
		sd.HookShutdownCallback("eventbus", events.Close, 5*time.Second)
	}

	sd.WaitForShutdown(syscall.SIGINT, syscall.SIGTERM)
	logger.Info("lobkeeper stopped gracefully")
}
