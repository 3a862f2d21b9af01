//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are run with `go run` or installed via `go install` and are not
// tracked in go.mod since they are development tools, not runtime dependencies.
package tools

// Development tools:
//
// Air - Live reload while editing templates and handlers (run with DEV=true so
// templates and static assets are read from disk)
//   Install: go install github.com/air-verse/air@v1.63.0
//   Run:     air --build.cmd "go build -o ./tmp/acadify-web ./cmd/acadify-web" --build.bin ./tmp/acadify-web
//   Docs: https://github.com/air-verse/air
//
// mockgen - Regenerates internal/mocks from the port interfaces
//   Run:     go generate ./internal/mocks
//   Version: v0.6.0 (matches go.uber.org/mock in go.mod)
