// Package auth is the token/session gateway.
//
// A [Gateway] owns the user's session: it decides whether a valid session
// exists, starts the PKCE authorization-code flow when it does not, and hands
// out fresh access tokens to everything else.
//
// # Flow
//
//  1. [Gateway.Login] clears cached session keys, stores a PKCE verifier and a
//     state token, and returns the authorization URL with the fixed [Scopes].
//  2. The provider redirects to the callback URL with a code parameter.
//  3. [Gateway.EnsureSession] receives that URL, checks the state, exchanges the
//     code with the stored verifier and persists the token. [StripAuthParams]
//     gives the URL to show afterwards so the code cannot be replayed.
//  4. Later calls to [Gateway.EnsureSession] without a code reuse the cached token.
//
// Tokens are kept as JSON in a [storage.Store] under session keys, so
// [Gateway.Logout] removes them together with any other session fragments.
package auth
