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
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jredh-dev/studyhub/internal/simulator"
)

// SendMessagePage renders the simulator form with its default values.
// GET /send-message
func (h *Handler) SendMessagePage(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, "send_message.html", map[string]interface{}{
		"Title":   "Send a Message",
		"Phone":   simulator.DefaultPhone,
		"Message": simulator.DefaultMessage,
	})
}

// SendMessage posts the form to the webhook the way Twilio would and shows
// the reply.  When the reply carries a session link the page follows it
// after the configured delay.  Nothing is retried.
// POST /send-message
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Printf("send-message: error parsing form: %v", err)
		h.sendMessageError(w, "Invalid form data.", "", "")
		return
	}

	phone := strings.TrimSpace(r.FormValue("phoneNumber"))
	message := r.FormValue("message")
	if phone == "" || strings.TrimSpace(message) == "" {
		h.sendMessageError(w, "Phone number and message are required.", phone, message)
		return
	}

	res, err := h.sim.Send(r.Context(), phone, message)
	if err != nil {
		log.Printf("send-message: post to %s failed: %v", h.sim.WebhookURL(), err)

		msg := err.Error()
		var se *simulator.StatusError
		if !errors.As(err, &se) {
			msg = "Error: " + msg
		}
		h.sendMessageError(w, msg, phone, message)
		return
	}

	if res.Link == "" {
		log.Printf("send-message: reply from %s had no session link", h.sim.WebhookURL())
	}

	h.renderTemplate(w, "send_message.html", map[string]interface{}{
		"Title":           "Send a Message",
		"Phone":           phone,
		"Message":         message,
		"Success":         true,
		"Response":        res.Body,
		"RedirectURL":     res.Link,
		"RedirectSeconds": refreshSeconds(h.cfg.Simulator.RedirectDelay),
	})
}

// refreshSeconds rounds d up to the whole seconds a meta refresh takes, so
// a short delay never becomes an immediate redirect.
func refreshSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

func (h *Handler) sendMessageError(w http.ResponseWriter, msg, phone, message string) {
	h.renderTemplate(w, "send_message.html", map[string]interface{}{
		"Title":   "Send a Message",
		"Phone":   phone,
		"Message": message,
		"Error":   msg,
	})
}
