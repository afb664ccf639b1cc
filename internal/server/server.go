// studyhub - SMS study session links
// Copyright (C) 2026  studyhub contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// Package server runs the studyhub HTTP surface: the Twilio webhook, the
// session page and the send-message simulator behind chi's standard
// middleware, with a /health check and graceful shutdown.
package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jredh-dev/studyhub/config"
	"github.com/jredh-dev/studyhub/internal/handlers"
	"github.com/jredh-dev/studyhub/internal/simulator"
	"github.com/jredh-dev/studyhub/internal/sms"
)

// WebhookPath is where Twilio posts inbound messages.
const WebhookPath = "/sms"

// A POST /send-message waits on a full simulator round trip into the
// webhook, so the request budget is derived from the simulator's.
const (
	RequestTimeout  = simulator.Timeout + 5*time.Second
	WriteTimeout    = RequestTimeout + 5*time.Second
	ShutdownTimeout = 10 * time.Second
)

// Server is the studyhub HTTP server.
type Server struct {
	Router *chi.Mux
	cfg    *config.Config
	srv    *http.Server
}

// New builds the router for cfg with every studyhub route registered on h.
func New(cfg *config.Config, h *handlers.Handler) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck
	})

	// SMS webhook endpoint (Twilio will POST here)
	r.Post(WebhookPath, h.SMSHandler)

	// Study session page the reply links to
	r.Get(sms.SessionPath, h.SessionPage)

	// Inbound SMS simulator
	r.Get("/send-message", h.SendMessagePage)
	r.Post("/send-message", h.SendMessage)

	return &Server{Router: r, cfg: cfg}
}

// Addr is the listen address for the configured port.
func (s *Server) Addr() string {
	return ":" + s.cfg.Server.Port
}

// ListenAndServe serves until SIGINT/SIGTERM, then drains in-flight
// requests for up to ShutdownTimeout.
func (s *Server) ListenAndServe() error {
	s.srv = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("studyhub starting on %s (env: %s)", s.Addr(), s.cfg.Server.Env)
	log.Printf("  SMS webhook: %s%s", s.cfg.Server.PublicBaseURL, WebhookPath)
	log.Printf("  Simulator:   %s/send-message -> %s", s.cfg.Server.PublicBaseURL, s.cfg.Simulator.WebhookURL)
	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	log.Println("Server stopped")
	return nil
}
