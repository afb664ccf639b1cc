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

// Package sms turns inbound Twilio messages into study sessions and renders
// the TwiML reply that hands the sender a link to their session page.
package sms

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Query parameter names carried by a session link.  The display page reads
// exactly these keys back; the link is the only place a session lives.
const (
	ParamSession = "session"
	ParamFrom    = "from"
	ParamMessage = "message"
	ParamCreated = "created"
)

// SessionPath is the route of the session display page.
const SessionPath = "/hello"

// sessionIDLength is the number of base-36 characters in a session ID.
// 36^8 is roughly 2.8e12, plenty for a demo that never checks collisions.
const sessionIDLength = 8

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// InboundMessage is the part of a Twilio messaging webhook we care about.
// Twilio posts many more fields (MessageSid, AccountSid, NumMedia, ...);
// they are ignored.
type InboundMessage struct {
	// From is the sender's number as Twilio reports it, usually E.164.
	// Treated as opaque.
	From string

	// Body is the message text.
	Body string
}

// Session is the ephemeral record minted for one inbound message.  It is
// never stored: Link encodes it into a URL and SessionFromQuery decodes it
// again on the display page.
type Session struct {
	ID        string
	From      string
	Message   string
	CreatedAt time.Time
}

// NewSessionID returns a short random base-36 token such as "k3f9a0zq".
// It is unguessable enough for a demo but is not a security token.
func NewSessionID() (string, error) {
	// 252 is the largest multiple of 36 that fits in a byte; rejecting
	// anything above it keeps the alphabet evenly weighted.
	const limit = 252

	id := make([]byte, 0, sessionIDLength)
	buf := make([]byte, sessionIDLength*2)
	for len(id) < sessionIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			id = append(id, base36[b%36])
			if len(id) == sessionIDLength {
				break
			}
		}
	}
	return string(id), nil
}

// NewSession mints a session for msg with a fresh random ID.
func NewSession(msg InboundMessage, now time.Time) (Session, error) {
	id, err := NewSessionID()
	if err != nil {
		return Session{}, fmt.Errorf("new session id: %w", err)
	}
	return Session{
		ID:        id,
		From:      msg.From,
		Message:   msg.Body,
		CreatedAt: now.UTC(),
	}, nil
}

// Link returns the absolute URL of the session display page with the
// session encoded in its query string.
func (s Session) Link(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + SessionPath)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	q := url.Values{}
	q.Set(ParamSession, s.ID)
	q.Set(ParamFrom, s.From)
	q.Set(ParamMessage, s.Message)
	if !s.CreatedAt.IsZero() {
		q.Set(ParamCreated, s.CreatedAt.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// SessionFromQuery rebuilds a session from a display page query string.
// ok is false when no session ID is present.  A missing or malformed
// created timestamp falls back to now.
func SessionFromQuery(q url.Values, now time.Time) (s Session, ok bool) {
	id := q.Get(ParamSession)
	if id == "" {
		return Session{}, false
	}

	created, err := time.Parse(time.RFC3339, q.Get(ParamCreated))
	if err != nil {
		created = now
	}

	return Session{
		ID:        id,
		From:      q.Get(ParamFrom),
		Message:   q.Get(ParamMessage),
		CreatedAt: created,
	}, true
}
