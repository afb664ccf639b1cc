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
	"net/http"
	"time"

	"github.com/jredh-dev/studyhub/internal/sms"
)

// Shown on the session page when the link carried no session.
const (
	placeholderSessionID = "Not set"
	placeholderFrom      = "Not available"
	placeholderMessage   = "No message"
)

const createdLayout = "1/2/2006, 3:04:05 PM MST"

// SessionPage renders the study session a texter was linked to.  Everything
// it shows comes from the query string.
// GET /hello?session=...&from=...&message=...&created=...
func (h *Handler) SessionPage(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	data := map[string]interface{}{
		"Title":     "Study Session",
		"SessionID": placeholderSessionID,
		"From":      placeholderFrom,
		"Message":   placeholderMessage,
		"Created":   now.Format(createdLayout),
	}

	if s, ok := sms.SessionFromQuery(r.URL.Query(), now); ok {
		data["SessionID"] = s.ID
		if s.From != "" {
			data["From"] = s.From
		}
		if s.Message != "" {
			data["Message"] = s.Message
		}
		data["Created"] = s.CreatedAt.UTC().Format(createdLayout)
	}

	h.renderTemplate(w, "hello.html", data)
}
