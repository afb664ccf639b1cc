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

// sms-sim sends a fake inbound SMS to a studyhub webhook from the command
// line, the same way the /send-message page does, and prints the session
// link from the reply.
//
//	sms-sim -from +15551234567 -body "Quiz me on cell biology"
//
// Defaults come from the same environment the server reads:
//
//	SIMULATOR_WEBHOOK_URL     webhook to post to (default http://localhost:3000/sms)
//	AUTH_TOKEN                signs the request when set
//	PUBLIC_BASE_URL           origin the server checks signatures against,
//	                          when it differs from the webhook URL's
//	SIMULATOR_REDIRECT_DELAY  pause before printing the link (default 3s)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jredh-dev/studyhub/config"
	"github.com/jredh-dev/studyhub/internal/simulator"
)

func main() {
	opts, err := parseFlags(config.Read(), os.Args[1:])
	if err != nil {
		log.Fatalf("sms-sim: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts.client, opts.from, opts.body, opts.delay); err != nil {
		log.Printf("sms-sim: %v", err)
		os.Exit(1)
	}
}

type options struct {
	from   string
	body   string
	delay  time.Duration
	client *simulator.Client
}

// parseFlags overrides cfg with args and checks only the simulator
// settings, so server-only requirements never stop the CLI.
func parseFlags(cfg *config.Config, args []string) (*options, error) {
	fs := flag.NewFlagSet("sms-sim", flag.ContinueOnError)
	from := fs.String("from", simulator.DefaultPhone, "sender phone number")
	body := fs.String("body", simulator.DefaultMessage, "message text")
	fs.StringVar(&cfg.Simulator.WebhookURL, "url", cfg.Simulator.WebhookURL, "webhook URL")
	token := fs.String("token", cfg.Twilio.AuthToken, "Twilio auth token used to sign the request")
	public := fs.String("public", os.Getenv("PUBLIC_BASE_URL"), "public origin to sign for, if not the webhook URL's")
	fs.DurationVar(&cfg.Simulator.RedirectDelay, "delay", cfg.Simulator.RedirectDelay, "wait before printing the session link")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Simulator.Validate(); err != nil {
		return nil, err
	}

	var simOpts []simulator.Option
	if *public != "" {
		simOpts = append(simOpts, simulator.WithPublicBaseURL(*public))
	}

	return &options{
		from:   *from,
		body:   *body,
		delay:  cfg.Simulator.RedirectDelay,
		client: simulator.New(cfg.Simulator.WebhookURL, *token, simOpts...),
	}, nil
}

func run(ctx context.Context, c *simulator.Client, from, body string, delay time.Duration) error {
	log.Printf("sms-sim: sending %q from %s to %s", body, from, c.WebhookURL())

	res, err := c.Send(ctx, from, body)
	if err != nil {
		return err
	}

	fmt.Println(res.Body)
	if res.Link == "" {
		log.Println("sms-sim: reply did not include a study session link")
		return nil
	}

	log.Printf("sms-sim: opening session in %s...", delay)
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	fmt.Println(res.Link)
	return nil
}
