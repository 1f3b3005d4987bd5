package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenSource returns an [oauth2.TokenSource] that asks the gateway on every call,
// so consumers never hold a stale token.
func (g *Gateway) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &gatewaySource{ctx: ctx, gateway: g}
}

// HTTPClient returns a client that authorizes each request with a fresh token.
func (g *Gateway) HTTPClient(ctx context.Context) *http.Client {
	var base http.RoundTripper
	if g.httpClient != nil {
		base = g.httpClient.Transport
	}
	return &http.Client{Transport: &oauth2.Transport{Source: g.TokenSource(ctx), Base: base}}
}

type gatewaySource struct {
	ctx     context.Context
	gateway *Gateway
}

func (s *gatewaySource) Token() (*oauth2.Token, error) {
	access, err := s.gateway.AccessToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}
