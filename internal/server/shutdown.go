// Package server provides server lifecycle management including graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownManager coordinates signal handling and resource cleanup.
// Closers run in reverse order of registration (LIFO).
type ShutdownManager struct {
	timeout time.Duration
	logger  *zap.Logger

	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	closers   []namedCloser
	closersMu sync.Mutex
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// NewShutdownManager creates a shutdown manager with the given timeout.
func NewShutdownManager(timeout time.Duration, logger *zap.Logger) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		timeout:    timeout,
		logger:     logger,
		shutdownCh: make(chan struct{}),
	}
}

// RegisterCloser adds a named closer to be called during shutdown.
func (sm *ShutdownManager) RegisterCloser(name string, closer io.Closer) {
	sm.closersMu.Lock()
	defer sm.closersMu.Unlock()
	sm.closers = append(sm.closers, namedCloser{name: name, closer: closer})
}

// ListenForSignals blocks until SIGTERM/SIGINT or context cancellation,
// then runs graceful shutdown.
func (sm *ShutdownManager) ListenForSignals(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		return sm.Shutdown(fmt.Sprintf("received signal: %v", sig))
	case <-ctx.Done():
		return sm.Shutdown("context cancelled")
	case <-sm.shutdownCh:
		return nil
	}
}

// Shutdown closes all registered resources in LIFO order.
func (sm *ShutdownManager) Shutdown(reason string) error {
	var shutdownErr error

	sm.shutdownOnce.Do(func() {
		sm.logger.Info("shutting down", zap.String("reason", reason))
		close(sm.shutdownCh)

		done := make(chan struct{})
		go func() {
			defer close(done)

			sm.closersMu.Lock()
			closers := sm.closers
			sm.closersMu.Unlock()

			for i := len(closers) - 1; i >= 0; i-- {
				if err := closers[i].closer.Close(); err != nil {
					sm.logger.Warn("close failed",
						zap.String("component", closers[i].name),
						zap.Error(err))
					if shutdownErr == nil {
						shutdownErr = fmt.Errorf("close %s: %w", closers[i].name, err)
					}
				}
			}
		}()

		select {
		case <-done:
		case <-time.After(sm.timeout):
			shutdownErr = fmt.Errorf("shutdown timed out after %s", sm.timeout)
		}
	})

	return shutdownErr
}

// ShutdownCh returns a channel that is closed when shutdown begins.
func (sm *ShutdownManager) ShutdownCh() <-chan struct{} {
	return sm.shutdownCh
}

// CloserFunc is an adapter to allow ordinary functions to be used as io.Closer.
type CloserFunc func() error

// Close calls the underlying function.
func (f CloserFunc) Close() error {
	return f()
}

// HTTPServerCloser wraps http.Server to implement io.Closer with graceful
// connection draining.
type HTTPServerCloser struct {
	Server *http.Server
}

// Close shuts the server down, draining connections for up to 10 seconds.
func (c *HTTPServerCloser) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.Server.Shutdown(ctx)
}
