package restapi

import (
	"io"
	"log/slog"
	"net/http"
)

const maxErrorBody = 1 << 20

// An Interceptor wraps the transport of every request the client sends.
type Interceptor func(next http.RoundTripper) http.RoundTripper

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// PassThrough forwards requests unchanged.
func PassThrough(next http.RoundTripper) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		slog.Debug("api request",
			"op", "restapi.PassThrough", "method", r.Method, "url", r.URL.String(),
		)
		return next.RoundTrip(r)
	})
}

// UnwrapErrorBody turns a non-2xx response into an [*APIError] holding the
// response body.
func UnwrapErrorBody(next http.RoundTripper) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		res, err := next.RoundTrip(r)
		if err != nil {
			return nil, err
		}
		if res.StatusCode >= 200 && res.StatusCode < 300 {
			return res, nil
		}

		defer res.Body.Close()
		body, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		if err != nil {
			return nil, err
		}
		return nil, newAPIError(res.StatusCode, body)
	})
}

func chain(base http.RoundTripper, is ...Interceptor) http.RoundTripper {
	rt := base
	for i := len(is) - 1; i >= 0; i-- {
		rt = is[i](rt)
	}
	return rt
}
