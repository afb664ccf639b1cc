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
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"github.com/jredh-dev/studyhub/internal/sms"
)

// maxFormMemory caps how much of a multipart body is held in memory.
const maxFormMemory = 1 << 20 // 1 MiB

// SMSHandler handles incoming SMS messages from Twilio.  Every message gets
// a fresh study session and the reply texts back a link to it.
// POST /sms
func (h *Handler) SMSHandler(w http.ResponseWriter, r *http.Request) {
	// Twilio posts application/x-www-form-urlencoded; browsers using
	// FormData post multipart.
	if err := parseForm(r); err != nil {
		log.Printf("sms: failed to parse form: %v", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.validator.Validate(r); err != nil {
		log.Printf("sms: rejected webhook from %s: %v", r.RemoteAddr, err)
		jsonError(w, "Invalid request signature", http.StatusForbidden)
		return
	}

	msg := sms.InboundMessage{
		From: r.PostFormValue("From"),
		Body: r.PostFormValue("Body"),
	}
	log.Printf("sms: received message %q from %s", msg.Body, msg.From)

	session, err := sms.NewSession(msg, time.Now())
	if err != nil {
		log.Printf("sms: %v", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	link, err := session.Link(h.cfg.Server.PublicBaseURL)
	if err != nil {
		log.Printf("sms: build link for session %s: %v", session.ID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	reply, err := sms.Reply(link)
	if err != nil {
		log.Printf("sms: session %s: %v", session.ID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.Header().Set(sms.LinkHeader, link)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, reply) //nolint:errcheck
}

func parseForm(r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}
