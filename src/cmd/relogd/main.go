// FILE: relog/src/cmd/relogd/main.go

// relogd is a small demonstration server for the relog library: every
// request is assigned a correlation id, traffic is logged through the
// buffered reporter, and handler logging picks up the id ambiently.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"relog/src/internal/version"
	"relog/src/middleware"
	"relog/src/relog"

	"github.com/valyala/fasthttp"
)

var (
	configFile  = flag.String("config", "", "Config file path")
	showVersion = flag.Bool("version", false, "Show version information")
)

var app = relog.New("relogd.app")

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if *configFile != "" {
		os.Setenv("RELOGD_CONFIG_FILE", *configFile)
	}

	cfg, err := loadConfig(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	relog.Initialize(cfg.logOptions())
	defer relog.Shutdown()

	handler := route
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			int(cfg.RateLimit.RequestsPerSec),
			int(cfg.RateLimit.BurstSize),
			cfg.RateLimit.CleanupIntervalSec)
		defer limiter.Stop()
		handler = limiter.Middleware(handler)
	}
	handler = middleware.Traffic(handler)
	handler = middleware.RequestID(handler)

	server := &fasthttp.Server{
		Handler:         handler,
		CloseOnShutdown: true,
	}

	ctx := context.Background()
	relog.Log(ctx, "relogd %s listening on %s", version.Short(), cfg.Addr)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe(cfg.Addr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		relog.Error(ctx, "Server failed: %v", err)
		relog.Shutdown()
		os.Exit(1)
	case sig := <-sigChan:
		relog.Log(ctx, "Received %s, shutting down", sig)
	}

	if err := server.Shutdown(); err != nil {
		relog.Error(ctx, "Shutdown error: %v", err)
	}

	stats := relog.Stats()
	relog.Log(ctx, "Wrote %d log lines, dropped %d", stats.TotalWritten, stats.TotalDropped)
}

func route(c *fasthttp.RequestCtx) {
	switch string(c.Path()) {
	case "/widgets":
		handleWidgets(c)
	case "/crash":
		// Exercises the middleware's failure path.
		panic("deliberate crash")
	default:
		c.Error("Not found", fasthttp.StatusNotFound)
	}
}

func handleWidgets(c *fasthttp.RequestCtx) {
	switch string(c.Method()) {
	case fasthttp.MethodGet:
		// The correlation id is resolved from the request context.
		app.Info(c, "listing widgets")
		fmt.Fprintf(c, "[]")
	case fasthttp.MethodPost:
		// No context handed over: the ambient goroutine binding
		// resolves the id instead.
		app.Info(context.Background(), "widget created")
		c.SetStatusCode(fasthttp.StatusCreated)
	default:
		c.Error("Method not allowed", fasthttp.StatusMethodNotAllowed)
	}
}
