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

// Package config loads studyhub configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Twilio    TwilioConfig
	Simulator SimulatorConfig
}

type ServerConfig struct {
	Port string
	Env  string
	// PublicBaseURL is the origin texters and Twilio reach us on.  Session
	// links and signature checks are built from it.
	PublicBaseURL string
}

type TwilioConfig struct {
	AuthToken         string
	ValidateSignature bool // reject webhooks without a valid X-Twilio-Signature
}

type SimulatorConfig struct {
	WebhookURL    string        // where the send-message form posts (default: PublicBaseURL + /sms)
	RedirectDelay time.Duration // pause before following the session link (default: 3s)
}

// Load reads an optional .env file and then the environment, and validates
// the result.
func Load() (*Config, error) {
	cfg := Read()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation, for callers that override some values
// (from flags, say) and validate only what they use.
func Read() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	port := getEnv("PORT", "3000")
	baseURL := strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/")

	return &Config{
		Server: ServerConfig{
			Port:          port,
			Env:           getEnv("ENV", "development"),
			PublicBaseURL: baseURL,
		},
		Twilio: TwilioConfig{
			AuthToken:         getEnv("AUTH_TOKEN", getEnv("TWILIO_AUTH_TOKEN", "")),
			ValidateSignature: getEnvBool("VALIDATE_SIGNATURE", false),
		},
		Simulator: SimulatorConfig{
			WebhookURL:    getEnv("SIMULATOR_WEBHOOK_URL", baseURL+"/sms"),
			RedirectDelay: getEnvDuration("SIMULATOR_REDIRECT_DELAY", 3*time.Second),
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if err := checkAbsURL("PUBLIC_BASE_URL", c.Server.PublicBaseURL); err != nil {
		return err
	}
	if c.Twilio.ValidateSignature && c.Twilio.AuthToken == "" {
		return fmt.Errorf("VALIDATE_SIGNATURE requires AUTH_TOKEN")
	}
	return c.Simulator.Validate()
}

// Validate checks the settings the simulator needs.
func (s SimulatorConfig) Validate() error {
	if err := checkAbsURL("SIMULATOR_WEBHOOK_URL", s.WebhookURL); err != nil {
		return err
	}
	if s.RedirectDelay < 0 {
		return fmt.Errorf("SIMULATOR_REDIRECT_DELAY must be >= 0")
	}
	return nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func checkAbsURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host: %q", key, raw)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("5s", "1m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
