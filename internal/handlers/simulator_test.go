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
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/studyhub/internal/simulator"
	"github.com/jredh-dev/studyhub/internal/sms"
)

var refreshMeta = regexp.MustCompile(`<meta http-equiv="refresh" content="(\d+);url=([^"]+)">`)

func submitForm(t *testing.T, h http.Handler, phone, message string) string {
	t.Helper()
	form := url.Values{"phoneNumber": {phone}, "message": {message}}
	req := httptest.NewRequest(http.MethodPost, "/send-message", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestSendMessagePage_Defaults(t *testing.T) {
	h := testHandler(t, testConfig(testBaseURL), sms.AllowAll{}, testBaseURL+"/sms", "")
	page := html.UnescapeString(getPage(t, testRouter(h), "/send-message"))

	assert.Contains(t, page, `value="`+simulator.DefaultPhone+`"`)
	assert.Contains(t, page, simulator.DefaultMessage)
	assert.NotContains(t, page, `http-equiv="refresh"`)
}

func TestSendMessage_WebhookError(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"Internal server error"}`)
	}))
	defer mock.Close()

	h := testHandler(t, testConfig(testBaseURL), sms.AllowAll{}, mock.URL+"/sms", "")
	page := submitForm(t, testRouter(h), "+15551234567", "hi")

	assert.Contains(t, page, `id="send-error"`)
	assert.Contains(t, page, "Error: 500 Internal Server Error")
	assert.NotContains(t, page, `id="send-success"`)
	assert.NotContains(t, page, `http-equiv="refresh"`)
}

func TestSendMessage_WebhookUnreachable(t *testing.T) {
	mock := httptest.NewServer(http.NotFoundHandler())
	addr := mock.URL
	mock.Close()

	h := testHandler(t, testConfig(testBaseURL), sms.AllowAll{}, addr+"/sms", "")
	page := submitForm(t, testRouter(h), "+15551234567", "hi")

	assert.Contains(t, page, `id="send-error"`)
	assert.NotContains(t, page, `http-equiv="refresh"`)
}

func TestSendMessage_ReplyWithoutLink(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		io.WriteString(w, "<Response><Message>world</Message></Response>")
	}))
	defer mock.Close()

	h := testHandler(t, testConfig(testBaseURL), sms.AllowAll{}, mock.URL+"/sms", "")
	page := submitForm(t, testRouter(h), "+15551234567", "hi")

	assert.Contains(t, page, `id="send-success"`)
	assert.NotContains(t, page, `id="send-error"`)
	assert.NotContains(t, page, `http-equiv="refresh"`)
	assert.Contains(t, html.UnescapeString(page), "<Response><Message>world</Message></Response>")
}

func TestRefreshSeconds(t *testing.T) {
	tests := []struct {
		delay time.Duration
		want  int
	}{
		{0, 0},
		{200 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{3 * time.Second, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, refreshSeconds(tt.delay), tt.delay.String())
	}
}

func TestSendMessage_FractionalDelayRoundsUp(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<Response><Message>Here's your study session link: http://localhost:3000/hello?session=abc12345</Message></Response>`)
	}))
	defer mock.Close()

	cfg := testConfig(testBaseURL)
	cfg.Simulator.RedirectDelay = 1500 * time.Millisecond
	h := testHandler(t, cfg, sms.AllowAll{}, mock.URL+"/sms", "")
	page := submitForm(t, testRouter(h), "+15551234567", "hi")

	m := refreshMeta.FindStringSubmatch(page)
	require.NotNil(t, m, page)
	assert.Equal(t, "2", m[1])
}

func TestSendMessage_RequiresFields(t *testing.T) {
	h := testHandler(t, testConfig(testBaseURL), sms.AllowAll{}, testBaseURL+"/sms", "")
	page := submitForm(t, testRouter(h), "", "hi")

	assert.Contains(t, page, "Phone number and message are required.")
	assert.NotContains(t, page, `http-equiv="refresh"`)
}

// The simulator posts back into the same server's webhook, with real
// signature checking on, and the result page refreshes onto the session.
func TestSendMessage_EndToEnd(t *testing.T) {
	const token = "e2e-token"

	var router http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	h := testHandler(t, cfg, sms.NewTwilioValidator(token, srv.URL), cfg.Simulator.WebhookURL, token)
	router = testRouter(h)

	page := submitForm(t, router, "+15551234567", "Quiz me on photosynthesis")

	assert.Contains(t, page, `id="send-success"`)
	m := refreshMeta.FindStringSubmatch(page)
	require.NotNil(t, m, page)
	assert.Equal(t, "3", m[1])

	link, err := url.Parse(html.UnescapeString(m[2]))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.String(), srv.URL+"/hello?"), link.String())
	assert.Equal(t, "+15551234567", link.Query().Get("from"))
	assert.Equal(t, "Quiz me on photosynthesis", link.Query().Get("message"))

	// Follow the refresh to the session page.
	resp, err := http.Get(link.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	session := string(body)
	assert.Equal(t, link.Query().Get("session"), spanText(t, session, "session-id"))
	assert.Equal(t, "+15551234567", spanText(t, session, "session-from"))
	assert.Equal(t, "Quiz me on photosynthesis", spanText(t, session, "session-message"))
}

// Links and signatures use the public origin while the simulator posts to
// the local listener.
func TestSendMessage_SignedBehindPublicOrigin(t *testing.T) {
	const (
		token  = "tunnel-token"
		public = "https://study.example.com"
	)

	var router http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	defer srv.Close()

	cfg := testConfig(public)
	cfg.Simulator.WebhookURL = srv.URL + "/sms"
	h := testHandler(t, cfg, sms.NewTwilioValidator(token, public), cfg.Simulator.WebhookURL, token)
	router = testRouter(h)

	page := submitForm(t, router, "+15551234567", "tunnel test")

	assert.Contains(t, page, `id="send-success"`)
	assert.NotContains(t, page, "403")
	m := refreshMeta.FindStringSubmatch(page)
	require.NotNil(t, m, page)
	assert.True(t, strings.HasPrefix(html.UnescapeString(m[2]), public+"/hello?"), m[2])
}
