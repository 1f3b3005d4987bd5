package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/playlister/internal/server"
	"github.com/desertthunder/playlister/internal/shared"
	"github.com/urfave/cli/v3"
	"github.com/zmb3/spotify/v2"
)

// AuthLogin performs the PKCE authorization flow and caches the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.bootstrap(cmd); err != nil {
		return err
	}

	if err := r.authorize(ctx); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Session saved to %s\n\n", r.config.Storage.Path)
	r.writePlain("You can now use: playlister tui\n")
	return nil
}

// AuthLogout destroys the cached session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.bootstrap(cmd); err != nil {
		return err
	}
	if err := r.gateway.Logout(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports the cached session and, unless offline, the user profile.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.bootstrap(cmd); err != nil {
		return err
	}

	session, err := r.gateway.EnsureSession(ctx, nil)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("✗ Not logged in\n")
	}
	if err != nil {
		return err
	}

	r.writePlain("✓ Logged in\n")
	r.writePlain("Expires: %s\n", session.Expiry().Format(time.RFC3339))
	r.writePlain("Refreshable: %v\n", session.Refreshable())

	if cmd.Bool("offline") {
		return nil
	}

	client := spotify.New(r.gateway.HTTPClient(ctx), r.spotifyOptions()...)
	user, err := client.CurrentUser(ctx)
	if err != nil {
		r.logger.Warn("profile lookup failed", "error", err)
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("User: %s (%s)\n", user.DisplayName, user.ID)
	if user.Product != "" {
		r.writePlain("Product: %s\n", user.Product)
	}
	return nil
}

// authorize runs the interactive login. In development the redirect is caught
// by a local callback server; otherwise the user pastes the redirected URL.
func (r *Runner) authorize(ctx context.Context) error {
	authURL, err := r.gateway.Login(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("authorization started", "url", authURL)

	if !r.config.IsDevelopment() {
		return r.authorizeManually(ctx, authURL)
	}

	handler := server.NewCallbackHandler(r.gateway, r.logger)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	host, port := r.callbackAddr()
	srv, err := server.NewCallbackServer(host, port, router, r.logger)
	if err != nil {
		return err
	}
	srv.Start()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", r.loginTimeout)

	timeout := time.NewTimer(r.loginTimeout)
	defer timeout.Stop()

	select {
	case result := <-handler.Result():
		return result.Error()
	case err := <-srv.Errors():
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, r.loginTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// authorizeManually completes the flow from a URL pasted on input.
func (r *Runner) authorizeManually(ctx context.Context, authURL string) error {
	r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	r.writePlain("Paste the URL you were redirected to: ")

	scanner := bufio.NewScanner(r.input)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read redirect URL: %w", err)
		}
		return fmt.Errorf("%w: redirect URL", shared.ErrMissingArgument)
	}

	u, err := url.Parse(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("%w: redirect URL: %v", shared.ErrInvalidArgument, err)
	}
	if !u.Query().Has("code") && !u.Query().Has("error") {
		return fmt.Errorf("%w: redirect URL carries no authorization code", shared.ErrInvalidArgument)
	}

	_, err = r.gateway.EnsureSession(ctx, u)
	return err
}

// callbackAddr listens where the redirect URI points, falling back to the server settings.
func (r *Runner) callbackAddr() (string, int) {
	host, port := r.config.Server.Host, r.config.Server.Port

	u, err := url.Parse(r.config.RedirectURI())
	if err != nil {
		return host, port
	}
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			return h, n
		}
	}
	return host, port
}
