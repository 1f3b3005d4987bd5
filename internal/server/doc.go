// Package server provides the local HTTP listener that receives the
// authorization redirect.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] runs in registration order (first added executes first).
// [BasicRouter] registers method-qualified patterns on an [http.ServeMux].
//
// # Callback Handler
//
// [CallbackHandler] receives the provider's redirect, passes the full callback
// URL to the session gateway and answers with the outcome page. The page swaps
// the browser URL for one without the authorization parameters, so a reload
// never replays the code. The result is published only after the page is
// written. Only the first callback is processed.
//
// # Lifecycle
//
// [CallbackServer] runs the router on the configured host and port for the
// duration of a login and is shut down once a result arrives.
package server
