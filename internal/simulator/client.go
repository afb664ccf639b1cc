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

// Package simulator fakes an inbound Twilio SMS: it posts the same form
// Twilio would to the webhook and pulls the session link out of the reply.
package simulator

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jredh-dev/studyhub/internal/sms"
)

// Defaults the send-message form starts with.
const (
	DefaultPhone   = "+15551234567"
	DefaultMessage = "Hello, I need help with my studies!"
)

// linkPattern finds the session link in the (unescaped) reply text.
var linkPattern = regexp.MustCompile(regexp.QuoteMeta(sms.LinkPhrase) + `(http[^<\s]+)`)

// StatusError is returned when the webhook answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error: %d %s", e.Code, e.Status)
}

// Result is what came back from one simulated message.
type Result struct {
	// Body is the raw response body, kept for inspection.
	Body string

	// Link is the session link the reply pointed to, or "" if none was found.
	Link string
}

// Timeout bounds one simulated round trip to the webhook.
const Timeout = 15 * time.Second

// Client posts simulated messages to a webhook.
type Client struct {
	webhookURL    string
	publicBaseURL string
	authToken     string
	accountSid    string
	httpClient    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithPublicBaseURL signs requests for baseURL plus the webhook's path
// instead of the URL actually posted to.  sms.TwilioValidator rebuilds the
// signed URL the same way, so the two agree when the simulator talks to a
// local listener while links point at a public origin.
func WithPublicBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.publicBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// New creates a Client for webhookURL.  If authToken is non-empty every
// request carries a valid X-Twilio-Signature for it.
func New(webhookURL, authToken string, opts ...Option) *Client {
	c := &Client{
		webhookURL: webhookURL,
		authToken:  authToken,
		accountSid: newSid("AC"),
		httpClient: &http.Client{Timeout: Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WebhookURL returns the endpoint the client posts to.
func (c *Client) WebhookURL() string {
	return c.webhookURL
}

// Send posts from/body to the webhook as Twilio would.  Transport failures
// and non-2xx replies are errors; a reply without a link is not.
func (c *Client) Send(ctx context.Context, from, body string) (*Result, error) {
	form := url.Values{
		"From":       {from},
		"Body":       {body},
		"MessageSid": {newSid("SM")},
		"AccountSid": {c.accountSid},
		"NumMedia":   {"0"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.authToken != "" {
		req.Header.Set(sms.SignatureHeader, sms.Sign(c.authToken, c.signingURL(), form))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	link := resp.Header.Get(sms.LinkHeader)
	if !isHTTPURL(link) {
		link = ExtractLink(string(raw))
	}

	return &Result{Body: string(raw), Link: link}, nil
}

// ExtractLink returns the first URL following the link phrase in a TwiML
// reply, or "" when the phrase is absent.
func ExtractLink(body string) string {
	m := linkPattern.FindStringSubmatch(html.UnescapeString(body))
	if m == nil {
		return ""
	}
	return m[1]
}

// signingURL is the URL the webhook will check the signature against.
func (c *Client) signingURL() string {
	if c.publicBaseURL == "" {
		return c.webhookURL
	}
	u, err := url.Parse(c.webhookURL)
	if err != nil {
		return c.webhookURL
	}
	return c.publicBaseURL + u.RequestURI()
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// newSid makes a Twilio-shaped SID: a two letter prefix and 32 hex digits.
func newSid(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
