// Command respd runs a standalone RESP key-value server: process
// bootstrap, flag parsing, logger construction, and graceful shutdown
// around the respd library's Serve.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"respd"
	"respd/command"
	"respd/internal/boot"
	"respd/internal/handler"
	"respd/internal/respio"
	"respd/metrics"
	"respd/pkg/logger"
	"respd/pkg/pool"
	"respd/store"
)

func main() {
	addr := flag.String("addr", "0.0.0.0:6379", "TCP address to listen on")
	poolSize := flag.Int("pool-size", runtime.GOMAXPROCS(0)*8, "worker pool size for connection/command dispatch")
	idleTimeout := flag.Duration("idle-timeout", 0, "close a connection idle for this long (0 disables idle detection)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")

	rateLimit := flag.Bool("rate-limit", false, "enable per-connection command rate limiting")
	connRate := flag.Int64("conn-rate", 1000, "per-connection token bucket refill rate (commands/sec)")
	connBurst := flag.Int64("conn-burst", 2000, "per-connection token bucket burst capacity")
	globalRate := flag.Int64("global-rate", 50000, "global token bucket refill rate (commands/sec)")
	globalBurst := flag.Int64("global-burst", 100000, "global token bucket burst capacity")

	flag.Parse()

	log := logger.Logrus("respd", parseLevel(*logLevel))

	m := metrics.New()
	s := store.New()
	exec := command.NewExecutor(s, m)

	handlers := []handler.Handler{respio.CommandHandler(exec, m)}
	if *rateLimit {
		limiter := handler.RateLimitHandler(*connRate, *connBurst, *globalRate, *globalBurst, respio.RateLimitReject)
		handlers = append([]handler.Handler{limiter}, handlers...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvHook := &serverHook{Hook: respio.NewHook(log, m)}

	opts := []respd.Option{
		respd.WithLogger(log),
		respd.WithHandlers(handlers...),
		respd.WithPool(pool.New(
			pool.WithMaxWorkers(*poolSize),
			pool.WithQueue(8192),
			pool.WithNonBlocking(),
			pool.WithPanicHandler(func(r any) { log.Error("pool task panic: %v", r) }),
		)),
	}
	if *idleTimeout > 0 {
		opts = append(opts, respd.WithIdleTimeout(*idleTimeout))
	}

	log.Info("starting respd on %s", *addr)
	if err := respd.Serve(ctx, srvHook, *addr, opts...); err != nil {
		fmt.Fprintln(os.Stderr, "respd: "+err.Error())
		os.Exit(1)
	}
}

// serverHook adds server start/stop logging and close-on-idle on top of
// respio.Hook's connection-lifecycle behavior (close-on-decode-error,
// metrics).
type serverHook struct {
	*respio.Hook
}

func (h *serverHook) OnIdle(c boot.Conn) {
	h.Log.Debug("conn %s idle, closing", c.ID())
	c.Close()
}

func (h *serverHook) OnStart(s boot.Server) {
	h.Log.Info("listening on %s", s.Addr().String())
}

func (h *serverHook) OnStop(s boot.Server) {
	h.Log.Info("stopped %s", s.Addr().String())
}

func parseLevel(s string) logger.Level {
	switch s {
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
