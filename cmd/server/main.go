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

// server is the studyhub web app: the Twilio SMS webhook, the study session
// page it links to, and a form for simulating inbound texts.
//
// Configuration comes from the environment (and an optional .env file):
//
//	PORT                      listen port (default 3000)
//	PUBLIC_BASE_URL           public origin used in session links and
//	                          signature checks (default http://localhost:$PORT)
//	AUTH_TOKEN                Twilio auth token (TWILIO_AUTH_TOKEN also works)
//	VALIDATE_SIGNATURE        reject webhooks without a valid X-Twilio-Signature
//	SIMULATOR_WEBHOOK_URL     where /send-message posts (default $PUBLIC_BASE_URL/sms)
//	SIMULATOR_REDIRECT_DELAY  pause before following the session link (default 3s)
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jredh-dev/studyhub/config"
	"github.com/jredh-dev/studyhub/internal/handlers"
	"github.com/jredh-dev/studyhub/internal/server"
	"github.com/jredh-dev/studyhub/internal/simulator"
	"github.com/jredh-dev/studyhub/internal/sms"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("studyhub %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var validator sms.Validator = sms.AllowAll{}
	if cfg.Twilio.ValidateSignature {
		validator = sms.NewTwilioValidator(cfg.Twilio.AuthToken, cfg.Server.PublicBaseURL)
	} else {
		log.Println("WARNING: VALIDATE_SIGNATURE is off, /sms accepts unsigned requests (set VALIDATE_SIGNATURE=true and AUTH_TOKEN in production)")
	}

	sim := simulator.New(cfg.Simulator.WebhookURL, cfg.Twilio.AuthToken,
		simulator.WithPublicBaseURL(cfg.Server.PublicBaseURL))

	s := server.New(cfg, handlers.New(cfg, validator, sim))
	if err := s.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
