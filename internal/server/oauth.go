package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"spotmigrate/internal/shared"
)

// AuthResult is the outcome of one authorization callback.
type AuthResult struct {
	Token *oauth2.Token
	Err   error
}

// CallbackHandler receives the OAuth2 authorization-code callback, validates
// the state nonce, and exchanges the code for a token.
//
// Exactly one result is delivered through [CallbackHandler.Result]; repeated
// callback hits after the first are rejected.
type CallbackHandler struct {
	config     *oauth2.Config
	state      string
	resultChan chan AuthResult
	once       sync.Once
	mu         sync.Mutex
	handled    bool

	// exchange is swapped out in tests to avoid hitting the token endpoint.
	exchange func(ctx context.Context, code string) (*oauth2.Token, error)
}

// NewCallbackHandler creates a handler expecting the given state nonce.
func NewCallbackHandler(config *oauth2.Config, state string) *CallbackHandler {
	h := &CallbackHandler{
		config:     config,
		state:      state,
		resultChan: make(chan AuthResult, 1),
	}
	h.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return config.Exchange(ctx, code)
	}
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the authorization callback.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	if state := r.URL.Query().Get("state"); state != h.state {
		h.send(AuthResult{Err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		h.send(AuthResult{Err: fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, errDesc)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.exchange(r.Context(), code)
	if err != nil {
		h.send(AuthResult{Err: fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.send(AuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// send delivers the result exactly once and closes the channel.
func (h *CallbackHandler) send(result AuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel the flow outcome arrives on.
//
// The channel receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan AuthResult {
	return h.resultChan
}

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Login Complete</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Login Complete</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
