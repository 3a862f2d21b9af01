package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/acadify/acadify-web/internal/adapters/devapi"
)

// mockAPIPrefix is where the dev API is mounted, matching the real service layout.
const mockAPIPrefix = "/api"

// MockAPI is the in-process academic API started in mock mode.
type MockAPI struct {
	// BaseURL is what the transport should use, e.g. http://127.0.0.1:53211/api.
	BaseURL string
	Server  *devapi.Server

	srv  *http.Server
	done chan struct{}
}

// StartMockAPI serves the dev API on a loopback port chosen by the kernel.
func StartMockAPI(ctx context.Context, logger *slog.Logger) (*MockAPI, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dev, err := devapi.New(devapi.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("create dev api: %w", err)
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for dev api: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(mockAPIPrefix+"/", http.StripPrefix(mockAPIPrefix, dev.Handler()))
	m := &MockAPI{
		BaseURL: "http://" + ln.Addr().String() + mockAPIPrefix,
		Server:  dev,
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		done: make(chan struct{}),
	}

	go func() {
		defer close(m.done)
		logger.Info("starting mock academic API", "base_url", m.BaseURL)
		if serveErr := m.srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("mock academic API failed", "error", serveErr)
		}
	}()
	return m, nil
}

// Shutdown stops the dev API and waits for its serve loop to exit.
func (m *MockAPI) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	err := m.srv.Shutdown(ctx)
	select {
	case <-m.done:
	case <-ctx.Done():
	}
	return err
}
