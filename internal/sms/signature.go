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

package sms

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/twilio/twilio-go/client"
)

// SignatureHeader is the header Twilio puts its request signature in.
const SignatureHeader = "X-Twilio-Signature"

// Validator decides whether a webhook request really came from Twilio.
// The request form must already be parsed.
type Validator interface {
	Validate(r *http.Request) error
}

// AllowAll approves every request.  It exists so local development and the
// simulator work without an auth token.  Anyone who can reach the webhook
// can forge messages while it is in use.
type AllowAll struct{}

// Validate always returns nil.
func (AllowAll) Validate(*http.Request) error { return nil }

// TwilioValidator checks X-Twilio-Signature against the account auth token.
type TwilioValidator struct {
	validator client.RequestValidator
	baseURL   string
}

// NewTwilioValidator returns a validator for authToken.  baseURL is the
// public origin Twilio was configured with (e.g. "https://study.example.com");
// the signed URL is rebuilt from it because the server usually sits behind
// a proxy and never sees the public URL itself.
func NewTwilioValidator(authToken, baseURL string) *TwilioValidator {
	return &TwilioValidator{
		validator: client.NewRequestValidator(authToken),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Validate returns ErrInvalidSignature unless the signature header matches
// the request URL and POST parameters.
func (v *TwilioValidator) Validate(r *http.Request) error {
	sig := r.Header.Get(SignatureHeader)
	if sig == "" {
		return ErrInvalidSignature
	}

	params := make(map[string]string, len(r.PostForm))
	for k, vals := range r.PostForm {
		if len(vals) > 0 {
			params[k] = vals[0]
		}
	}

	if !v.validator.Validate(v.baseURL+r.URL.RequestURI(), params, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign computes the signature Twilio would send for a POST of params to
// fullURL.  The simulator uses it so its requests pass TwilioValidator.
func Sign(authToken, fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		vals := append([]string(nil), params[k]...)
		sort.Strings(vals)
		for _, val := range vals {
			b.WriteString(k)
			b.WriteString(val)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
