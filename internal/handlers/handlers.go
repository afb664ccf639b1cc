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

// Package handlers serves the studyhub HTTP surface: the Twilio webhook,
// the session display page and the send-message simulator.
package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/jredh-dev/studyhub/config"
	"github.com/jredh-dev/studyhub/internal/simulator"
	"github.com/jredh-dev/studyhub/internal/sms"
	"github.com/jredh-dev/studyhub/internal/web/templates"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	cfg       *config.Config
	validator sms.Validator
	sim       *simulator.Client
	templates map[string]*template.Template
}

// New creates a new handler with parsed templates.
func New(cfg *config.Config, validator sms.Validator, sim *simulator.Client) *Handler {
	tmplMap := make(map[string]*template.Template)
	for _, page := range []string{"hello.html", "send_message.html"} {
		tmplMap[page] = template.Must(
			template.New(page).ParseFS(templates.FS, "base.html", page),
		)
	}

	return &Handler{
		cfg:       cfg,
		validator: validator,
		sim:       sim,
		templates: tmplMap,
	}
}

// --- helpers ---

func (h *Handler) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	tmpl, ok := h.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %s not found", name), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
