package httpx

import "net/http"

// Client is the outbound HTTP surface provider adapters depend on. The
// production implementation is fasthttp-backed; tests substitute stubs.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
