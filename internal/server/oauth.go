package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/auth"
)

// SessionExchanger turns a callback URL into a session.
type SessionExchanger interface {
	EnsureSession(ctx context.Context, current *url.URL) (*auth.Session, error)
}

// CallbackResult contains the outcome of the authorization redirect.
type CallbackResult struct {
	Session *auth.Session
	err     error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the authorization redirect.
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	sessions    SessionExchanger
	logger      *log.Logger
	resultChan  chan CallbackResult
	once        sync.Once
	mu          sync.Mutex
	callbackHit bool
	done        bool
	failed      bool
}

// NewCallbackHandler creates a handler that forwards callbacks to sessions.
func NewCallbackHandler(sessions SessionExchanger, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{
		sessions:   sessions,
		logger:     logger,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET /callback"}
}

// ServeHTTP exchanges the code carried by the first callback and answers with
// the outcome page before publishing the result, so the server may shut down
// once the result arrives. The page replaces the browser URL with the stripped
// one. Requests without authorization parameters render the current status.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("code") && !q.Has("error") {
		h.renderStatus(w)
		return
	}

	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	current := *r.URL
	current.Scheme = "http"
	current.Host = r.Host

	session, err := h.sessions.EnsureSession(r.Context(), &current)

	h.mu.Lock()
	h.done = true
	h.failed = err != nil
	h.mu.Unlock()

	if err != nil {
		h.logger.Error("callback failed", "error", err)
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		h.Send(CallbackResult{err: err})
		return
	}

	h.writeSuccess(w, auth.StripAuthParams(r.URL).String())
	h.Send(CallbackResult{Session: session})
}

func (h *CallbackHandler) writeSuccess(w http.ResponseWriter, stripped string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, successPage, strings.ReplaceAll(strconv.Quote(stripped), "<", `\u003c`))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *CallbackHandler) renderStatus(w http.ResponseWriter) {
	h.mu.Lock()
	done, failed := h.done, h.failed
	h.mu.Unlock()

	switch {
	case !done:
		http.Error(w, "Waiting for authorization", http.StatusNotFound)
	case failed:
		http.Error(w, "Authorization failed", http.StatusBadRequest)
	default:
		h.writeSuccess(w, "/callback")
	}
}

// Send sends the result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel. It receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; }
        .container { text-align: center; background: #181818; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.4); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Logged in to Spotify</h1>
        <p>You can close this window and return to playlister.</p>
    </div>
    <script>history.replaceState(null, "", %s);</script>
</body>
</html>
`
