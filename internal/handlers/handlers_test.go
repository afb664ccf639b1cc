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

package handlers

import (
	"html"
	"regexp"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jredh-dev/studyhub/config"
	"github.com/jredh-dev/studyhub/internal/simulator"
	"github.com/jredh-dev/studyhub/internal/sms"
)

const testBaseURL = "http://localhost:3000"

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:          "3000",
			Env:           "development",
			PublicBaseURL: baseURL,
		},
		Simulator: config.SimulatorConfig{
			WebhookURL:    baseURL + "/sms",
			RedirectDelay: 3 * time.Second,
		},
	}
}

// testHandler builds a Handler whose simulator posts to webhookURL and
// signs for cfg's public base URL, as cmd/server wires it.
func testHandler(t *testing.T, cfg *config.Config, v sms.Validator, webhookURL, token string) *Handler {
	t.Helper()
	return New(cfg, v, simulator.New(webhookURL, token, simulator.WithPublicBaseURL(cfg.Server.PublicBaseURL)))
}

func testRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/sms", h.SMSHandler)
	r.Get("/hello", h.SessionPage)
	r.Get("/send-message", h.SendMessagePage)
	r.Post("/send-message", h.SendMessage)
	return r
}

// spanText returns the unescaped text of <span id="id">...</span>.
func spanText(t *testing.T, page, id string) string {
	t.Helper()
	re := regexp.MustCompile(`<span id="` + regexp.QuoteMeta(id) + `">([^<]*)</span>`)
	m := re.FindStringSubmatch(page)
	if m == nil {
		t.Fatalf("span %q not found in page:\n%s", id, page)
	}
	return html.UnescapeString(m[1])
}
