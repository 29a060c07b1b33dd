// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes a running monitor over HTTP.
//
// # Endpoints
//
//   - GET /health    - Liveness and uptime
//   - GET /bpm       - Current reading
//   - GET /stats     - Session statistics
//   - GET /snapshot  - The strip as png, html or json (?format=)
//   - GET /events    - Server-sent events, one per beat boundary
//
// Every reading is simulated or relayed from a feed and is not medical data.
//
// # Middleware
//
//   - Optional bearer token with constant-time comparison
//   - CORS for the configured origins
//   - Per-client rate limiting (golang.org/x/time/rate)
//   - Security headers, request logging and panic recovery
//
// # Usage
//
//	live := server.NewLive(cfg, time.Now)
//	go live.Run(ctx, nil)
//	srv := server.NewServer(cfg, live)
//	if err := srv.Start(); err != http.ErrServerClosed {
//		log.Fatal(err)
//	}
package server
