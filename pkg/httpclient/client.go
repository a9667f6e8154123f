// Package httpclient builds the outbound client used for change webhooks.
package httpclient

import (
	"net/http"
	"time"
)

// UserAgent is sent on every webhook call
const UserAgent = "sheetsync-notifier/1"

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewWebhookClient returns a client with an overall timeout that reports
// redirects to the caller as a non-2xx response instead of following them.
func NewWebhookClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: userAgentTransport{base: http.DefaultTransport},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", UserAgent)
	return t.base.RoundTrip(req)
}
