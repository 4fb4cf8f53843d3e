package main

import (
	"log"
	"net/http"
)

func main() {
	cfg := loadServerConfig()

	zlog, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	srv := NewServer(cfg, zlog)
	defer srv.manager.CloseAll()

	zlog.Infow("infection-server listening", "addr", cfg.Addr, "max_runs", cfg.MaxRuns)
	if err := http.ListenAndServe(cfg.Addr, srv.Routes()); err != nil {
		zlog.Fatalw("server stopped", "error", err)
	}
}
