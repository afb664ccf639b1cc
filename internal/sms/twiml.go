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
	"fmt"

	"github.com/twilio/twilio-go/twiml"
)

// LinkPhrase introduces the session link in the reply text.  The simulator
// looks for this exact wording, so changing it breaks link extraction.
const LinkPhrase = "Here's your study session link: "

// LinkHeader carries the session link as a structured response header so
// clients do not have to scrape it out of the TwiML body.
const LinkHeader = "X-Session-Link"

// ReplyText is the human readable reply sent back to the texter.
func ReplyText(link string) string {
	return LinkPhrase + link
}

// Reply renders the TwiML document telling Twilio to text link back to the
// sender:
//
//	<Response><Message>Here's your study session link: https://...</Message></Response>
//
// Only &, < and > are escaped in the message text so the link phrase appears
// verbatim in the raw body for clients that match on it.
func Reply(link string) (string, error) {
	msg := &twiml.MessagingMessage{
		Body: ReplyText(link),
	}

	doc, resp := twiml.CreateDocument()
	twiml.AddAllVerbs(resp, []twiml.Element{msg})
	doc.WriteSettings.CanonicalText = true

	out, err := twiml.ToXML(doc)
	if err != nil {
		return "", fmt.Errorf("render twiml: %w", err)
	}
	return out, nil
}
