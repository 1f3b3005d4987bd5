package playback

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/shared"
	tu "github.com/desertthunder/playlister/internal/testing"
)

type staticTokens struct {
	token string
	err   error
	calls int
}

func (s *staticTokens) AccessToken(context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

type captured struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

func newPlaybackServer(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var reqs []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		reqs = append(reqs, captured{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query().Get("device_id"),
			auth:   r.Header.Get("Authorization"),
			body:   body,
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func newTestTrigger(srv *httptest.Server, tokens TokenProvider) *Trigger {
	return NewTrigger(TriggerOpts{
		Tokens:     tokens,
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL + "/v1",
		Logger:     log.New(io.Discard),
	})
}

func TestTriggerStart(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends Exact Request", func(t *testing.T) {
		srv, reqs := newPlaybackServer(t, http.StatusNoContent)
		tokens := &staticTokens{token: "fresh"}

		if err := newTestTrigger(srv, tokens).Start(ctx, "dev-1", "spotify:playlist:p1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(*reqs) != 1 {
			t.Fatalf("expected exactly one request, got %d", len(*reqs))
		}
		got := (*reqs)[0]
		if got.method != http.MethodPut || got.path != "/v1/me/player/play" {
			t.Errorf("unexpected request %s %s", got.method, got.path)
		}
		if got.query != "dev-1" {
			t.Errorf("expected device_id=dev-1, got %q", got.query)
		}
		if got.auth != "Bearer fresh" {
			t.Errorf("expected bearer token, got %q", got.auth)
		}
		if got.body["context_uri"] != "spotify:playlist:p1" {
			t.Errorf("unexpected context_uri %v", got.body["context_uri"])
		}
		if pos, ok := got.body["position_ms"]; !ok || pos != float64(0) {
			t.Errorf("expected position_ms 0, got %v", pos)
		}
		if tokens.calls != 1 {
			t.Errorf("expected token resolved once, got %d", tokens.calls)
		}
	})

	tests := []struct {
		name    string
		status  int
		kind    error
		message string
	}{
		{"Forbidden Means Premium Required", http.StatusForbidden, shared.ErrAccountTier, shared.MsgPremiumRequired},
		{"Not Found Is Generic", http.StatusNotFound, shared.ErrPlaybackRequest, "Failed to start playback: Not Found"},
		{"Unauthorized Is Generic", http.StatusUnauthorized, shared.ErrPlaybackRequest, "Failed to start playback: Unauthorized"},
		{"Server Error Is Generic", http.StatusBadGateway, shared.ErrPlaybackRequest, "Failed to start playback: Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newPlaybackServer(t, tt.status)

			err := newTestTrigger(srv, &staticTokens{token: "t"}).Start(ctx, "dev-1", "spotify:playlist:p1")
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if got := shared.UserMessage(err); got != tt.message {
				t.Errorf("expected %q, got %q", tt.message, got)
			}
		})
	}

	t.Run("Token Failure", func(t *testing.T) {
		srv, reqs := newPlaybackServer(t, http.StatusNoContent)

		err := newTestTrigger(srv, &staticTokens{err: shared.ErrNotAuthenticated}).Start(ctx, "dev-1", "spotify:playlist:p1")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated cause, got %v", err)
		}
		if len(*reqs) != 0 {
			t.Error("no request should be sent without a token")
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		trigger := NewTrigger(TriggerOpts{
			Tokens:     &staticTokens{token: "t"},
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
			Logger:     log.New(io.Discard),
		})

		err := trigger.Start(ctx, "dev-1", "spotify:playlist:p1")
		if !errors.Is(err, shared.ErrPlaybackRequest) {
			t.Fatalf("expected playback request error, got %v", err)
		}
		if msg := shared.UserMessage(err); !strings.HasPrefix(msg, "Error starting playback: ") {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("Status Mapping Without A Server", func(t *testing.T) {
		tt := []struct {
			name string
			resp *http.Response
			want string
		}{
			{
				name: "Not Found",
				resp: tu.JSONResponse(http.StatusNotFound, `{"error":{"status":404,"message":"Device not found"}}`),
				want: "Failed to start playback: Not Found",
			},
			{
				name: "Forbidden With Unreadable Body",
				resp: &http.Response{StatusCode: http.StatusForbidden, Body: &tu.FCloser{}},
				want: shared.MsgPremiumRequired,
			},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				trigger := NewTrigger(TriggerOpts{
					Tokens:     &staticTokens{token: "t"},
					HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(tc.resp, nil)},
					Logger:     log.New(io.Discard),
				})

				err := trigger.Start(ctx, "dev-1", "spotify:playlist:p1")
				if msg := shared.UserMessage(err); msg != tc.want {
					t.Errorf("expected %q, got %q", tc.want, msg)
				}
			})
		}
	})
}

func TestPairing(t *testing.T) {
	var p Pairing

	steps := []struct {
		name   string
		device string
		target string
		want   bool
	}{
		{"Device Only", "dev-1", "", false},
		{"Target Only", "", "spotify:playlist:p1", false},
		{"Both Present", "dev-1", "spotify:playlist:p1", true},
		{"Same Pair Again", "dev-1", "spotify:playlist:p1", false},
		{"New Target", "dev-1", "spotify:playlist:p2", true},
		{"New Device", "dev-2", "spotify:playlist:p2", true},
	}

	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			if got := p.Claim(s.device, s.target); got != s.want {
				t.Errorf("expected %v, got %v", s.want, got)
			}
		})
	}

	t.Run("Reset", func(t *testing.T) {
		p.Reset()
		if !p.Claim("dev-2", "spotify:playlist:p2") {
			t.Error("expected claim after reset")
		}
	})
}
