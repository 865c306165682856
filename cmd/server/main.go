package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/swfscene/internal/asset"
	"github.com/inamate/swfscene/internal/auth"
	"github.com/inamate/swfscene/internal/catalog"
	"github.com/inamate/swfscene/internal/config"
	"github.com/inamate/swfscene/internal/library"
	mw "github.com/inamate/swfscene/internal/middleware"
	"github.com/inamate/swfscene/internal/playback"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	lib := library.NewService(
		catalog.WithLogger(logger),
		catalog.WithMaxObjectExtent(cfg.MaxObjectExtent),
	)
	libraryHandler := library.NewHandler(lib, cfg.UseContainerBounds)
	assetHandler := asset.NewHandler(lib)

	hub := playback.NewHub()
	go hub.Run()
	lib.OnDelete(hub.CloseDocument)

	playbackHandler := playback.NewHandler(hub, lib, playback.Options{
		FallbackFPS:        cfg.PlaybackFPS,
		UseContainerBounds: cfg.UseContainerBounds,
		AllowedOrigins:     cfg.Origins(),
	})

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	ws := r.PathPrefix("/ws").Subrouter()
	if cfg.AuthEnabled() {
		authService := auth.NewService(cfg.JWTSecret)
		api.Use(authService.AuthMiddleware)
		ws.Use(authService.AuthMiddleware)
	} else {
		slog.Warn("JWT_SECRET is empty, API is unauthenticated")
	}

	libraryHandler.Register(api)
	assetHandler.Register(api)
	ws.Handle("/documents/{docId}/play", playbackHandler).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(cfg.Origins())(r), // preflights match no route
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "auth", cfg.AuthEnabled())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
