package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"spotmigrate/internal/shared"
)

// FlowTimeout bounds how long the login flow waits for the user to finish in
// the browser.
const FlowTimeout = 2 * time.Minute

// RunFlow serves the authorization callback on addr until the user completes
// the browser login, then returns the exchanged token.
//
// The server is torn down before RunFlow returns, whatever the outcome. A
// flow that outlives [FlowTimeout] fails with [shared.ErrTimeout].
func RunFlow(ctx context.Context, config *oauth2.Config, addr, state string, logger *log.Logger) (*oauth2.Token, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	handler := NewCallbackHandler(config, state)
	router := NewRouter()
	router.Use(LoggingMiddleware(logger))
	router.Handler(handler)

	srv := &http.Server{Addr: addr, Handler: router}
	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("waiting for authorization in the browser", "addr", addr)

	select {
	case result := <-handler.Result():
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Token, nil
	case err := <-errChan:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-time.After(FlowTimeout):
		return nil, fmt.Errorf("%w: authorization not completed within %s", shared.ErrTimeout, FlowTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
