package auth

import (
	"net/http"
	"os"
)

// TokenEnvVar holds an optional bearer token sent with every request.
const TokenEnvVar = "RANDL_TOKEN"

// Token returns the bearer token from the environment, or "" if unset.
func Token() string {
	return os.Getenv(TokenEnvVar)
}

// NewHTTPClient returns an *http.Client that sets User-Agent on every request
// and, if RANDL_TOKEN is set, an Authorization bearer header. The client has no
// timeout: downloads may legitimately take a long time.
func NewHTTPClient(userAgent string) *http.Client {
	return &http.Client{
		Transport: &headerTransport{
			userAgent: userAgent,
			token:     Token(),
			base:      http.DefaultTransport,
		},
	}
}

// headerTransport is a custom http.RoundTripper that adds the randl headers.
type headerTransport struct {
	userAgent string
	token     string
	base      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid mutating the original
	r := req.Clone(req.Context())
	if t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}
	if t.token != "" {
		r.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(r)
}
