package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/avoronins/inkpost/internal/client/session"
)

// refreshFunc performs one refresh round-trip against the server and returns
// the new access token. It must update the session store before returning.
type refreshFunc func(ctx context.Context) (string, error)

// reauthTransport attaches the current access token to every request and
// transparently recovers from access-token expiry: on a 401 it funnels all
// concurrent callers into a single refresh call, then retries the original
// request exactly once with the new token.
//
// Requests to /auth/... are passed through untouched so the refresh call
// itself (or a failed signin) can never trigger another refresh.
type reauthTransport struct {
	base    http.RoundTripper
	store   *session.Store
	refresh refreshFunc
	group   singleflight.Group
}

func (t *reauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.HasPrefix(req.URL.Path, "/auth/") {
		t.authorize(req, "")
		return t.base.RoundTrip(req)
	}

	// Buffer the body so the single retry can replay it.
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	t.authorize(req, "")

	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// One refresh regardless of how many requests hit the 401 at once.
	// The session store is updated inside the refresh before Do returns,
	// so every waiter reads a committed token.
	token, refreshErr, _ := t.group.Do("refresh", func() (any, error) {
		newToken, err := t.refresh(req.Context())
		if err != nil {
			t.store.Clear()
			return nil, err
		}
		return newToken, nil
	})
	if refreshErr != nil {
		// fail closed: surface the original 401 to the caller
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry := req.Clone(req.Context())
	if body != nil {
		retry.Body = io.NopCloser(bytes.NewReader(body))
	}
	t.authorize(retry, token.(string))

	return t.base.RoundTrip(retry)
}

// authorize sets the bearer header from the explicit token, or from the
// session store when none is given.
func (t *reauthTransport) authorize(req *http.Request, token string) {
	if token == "" {
		token = t.store.Snapshot().AccessToken
	}
	if token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}
